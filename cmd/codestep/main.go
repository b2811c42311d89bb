// CodeStep CLI - compile and run a code step from the command line
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/stepflow/codestep/config"
	"github.com/stepflow/codestep/engine"
	"github.com/stepflow/codestep/requestctx"
	"github.com/stepflow/codestep/store"
)

func main() {
	params := flag.String("params", "{}", "Input parameters as a JSON object")
	paramsFile := flag.String("params-file", "", "Read input parameters from a JSON file")
	configPath := flag.String("config", "codestep.toml", "Configuration file path")
	verbosity := flag.Int("v", 0, "Log verbosity (-1 silences)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: codestep [options] <source-file>\n\n")
		fmt.Fprintf(os.Stderr, "Compiles and runs the Main.main entry point of a CodeStep source file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  codestep step.cs                          # Run with empty params\n")
		fmt.Fprintf(os.Stderr, "  codestep -params '{\"x\": 42}' step.cs      # Run with params\n")
		fmt.Fprintf(os.Stderr, "  codestep -params-file in.json step.cs     # Params from a file\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	vSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "v" {
			vSet = true
		}
	})

	if err := run(flag.Arg(0), *params, *paramsFile, *configPath, *verbosity, vSet); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(sourcePath, paramsJSON, paramsFile, configPath string, flagVerbosity int, flagSet bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	commonlog.Configure(effectiveVerbosity(cfg, flagVerbosity, flagSet), nil)

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return err
	}

	if paramsFile != "" {
		data, err := os.ReadFile(paramsFile)
		if err != nil {
			return err
		}
		paramsJSON = string(data)
	}
	params, err := engine.ParamsFromJSON([]byte(paramsJSON))
	if err != nil {
		return err
	}

	cache := engine.NewCache()
	if cfg.Cache.PersistPath != "" {
		st, err := store.Open(cfg.Cache.PersistPath)
		if err != nil {
			return err
		}
		defer st.Close()
		cache = engine.NewCacheWithStore(st)
	}

	eng := engine.New(cache)
	ctx := requestctx.With(context.Background(), requestctx.New())

	result, err := eng.Execute(ctx, string(source), params)
	if err != nil {
		return err
	}

	out, err := engine.ResultToJSON(result)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// effectiveVerbosity picks the log verbosity: an explicit -v flag wins,
// otherwise the configuration file speaks.
func effectiveVerbosity(cfg *config.Config, flagVerbosity int, flagSet bool) int {
	if flagSet {
		return flagVerbosity
	}
	return cfg.Log.Verbosity
}
