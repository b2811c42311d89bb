package main

import (
	"testing"

	"github.com/stepflow/codestep/config"
)

func TestEffectiveVerbosity(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Verbosity = 2

	tests := []struct {
		name          string
		flagVerbosity int
		flagSet       bool
		want          int
	}{
		{"config value used when flag absent", 0, false, 2},
		{"explicit flag overrides config", 1, true, 1},
		{"explicit silencing overrides config", -1, true, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := effectiveVerbosity(cfg, tt.flagVerbosity, tt.flagSet); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEffectiveVerbosityDefaults(t *testing.T) {
	if got := effectiveVerbosity(config.Default(), 0, false); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}
