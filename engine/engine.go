// Package engine implements the compile/cache/fallback/load/invoke
// pipeline for running user-supplied code steps in process.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/tliron/commonlog"

	"github.com/stepflow/codestep/compiler"
	"github.com/stepflow/codestep/requestctx"
	"github.com/stepflow/codestep/vm"
)

// CompileFunc turns source text into an executable artifact.
type CompileFunc func(source string) (*vm.Artifact, error)

// SynthesizeFunc constructs the canned fallback artifact.
type SynthesizeFunc func() *vm.Artifact

// Engine is the public entry point: it hashes source, consults the cache,
// compiles (or falls back to direct artifact synthesis), loads the
// artifact into an isolated execution context, and invokes its entry
// point. All work happens synchronously on the calling goroutine.
type Engine struct {
	cache      *Cache
	compile    CompileFunc
	synthesize SynthesizeFunc
	log        commonlog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCompiler substitutes the source compiler. Useful for hosts without
// a compiler: a CompileFunc that always fails routes everything to the
// fallback synthesizer, matching the compiler-unavailable behavior.
func WithCompiler(compile CompileFunc) Option {
	return func(e *Engine) { e.compile = compile }
}

// WithSynthesizer substitutes the fallback artifact builder.
func WithSynthesizer(synthesize SynthesizeFunc) Option {
	return func(e *Engine) { e.synthesize = synthesize }
}

// New creates an engine around an explicitly constructed cache. A nil
// cache gets a fresh unbounded in-memory cache.
func New(cache *Cache, opts ...Option) *Engine {
	if cache == nil {
		cache = NewCache()
	}
	e := &Engine{
		cache:      cache,
		compile:    compiler.Compile,
		synthesize: vm.Synthesize,
		log:        commonlog.GetLogger("codestep.engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the entry point of the given source with the given
// parameter map and returns its result map.
//
// Blank source fails fast with a CompileError before any cache
// interaction. Source rejected by the compiler is recovered via fallback
// synthesis and never surfaces a CompileError. Load and invocation
// failures surface as LoadError and ExecutionError respectively, wrapping
// the original cause; they are never masked by the fallback.
//
// The context carries the ambient request context for diagnostics only;
// there is no cancellation or timeout inside the pipeline. If the invoked
// code runs indefinitely, the calling goroutine blocks indefinitely.
func (e *Engine) Execute(ctx context.Context, source string, params map[string]any) (map[string]any, error) {
	rc := requestctx.From(ctx)
	start := time.Now()

	// Fast path: do not pollute the cache with the hash of blank source.
	if strings.TrimSpace(source) == "" {
		err := &CompileError{Err: compiler.ErrBlankSource}
		e.log.Errorf("[%s] rejected blank source", rc.RequestID)
		return nil, err
	}

	hash := HashSource(source)

	artifact, hit := e.cache.Get(hash)
	if !hit {
		var err error
		artifact, err = e.compile(source)
		if err != nil {
			e.log.Infof("[%s] compile failed for %s, synthesizing fallback: %v", rc.RequestID, hash, err)
			artifact = e.synthesize()
		}
		// First artifact stored for a hash wins; a hash resolved to a
		// fallback artifact stays pinned to it and is not retried
		// against the compiler.
		e.cache.Put(hash, artifact)
		artifact, _ = e.cache.Get(hash)
	}
	e.log.Debugf("[%s] artifact %s (cache hit: %t)", rc.RequestID, hash, hit)

	entry, err := vm.Load(artifact)
	if err != nil {
		e.log.Errorf("[%s] load failed for %s: %v", rc.RequestID, hash, err)
		return nil, &LoadError{Err: err}
	}

	result, err := entry.Invoke(params)
	if err != nil {
		e.log.Errorf("[%s] invocation failed for %s: %v", rc.RequestID, hash, err)
		return nil, &ExecutionError{Err: err}
	}

	e.log.Infof("[%s] executed %s by %s in %s", rc.RequestID, hash, rc.Caller, time.Since(start))
	return result, nil
}
