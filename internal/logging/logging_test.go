package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	logger, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Error("debug must be off by default")
	}

	verbose, err := New(true)
	if err != nil {
		t.Fatal(err)
	}
	if !verbose.Core().Enabled(zap.DebugLevel) {
		t.Error("debug must be on in verbose mode")
	}
}
