package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  "warn",
		Pretty: false,
		Output: &buf,
	})

	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")
	logger.Error().Msg("error message")

	output := buf.String()

	if strings.Contains(output, "debug message") {
		t.Error("Expected debug message to NOT be logged at warn level")
	}
	if strings.Contains(output, "info message") {
		t.Error("Expected info message to NOT be logged at warn level")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Expected warn message to be logged at warn level")
	}
	if !strings.Contains(output, "error message") {
		t.Error("Expected error message to be logged at warn level")
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  "loud",
		Pretty: false,
		Output: &buf,
	})

	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")

	output := buf.String()

	if strings.Contains(output, "debug message") {
		t.Error("Expected debug message to NOT be logged at fallback info level")
	}
	if !strings.Contains(output, "info message") {
		t.Error("Expected info message to be logged at fallback info level")
	}
}

func TestNewWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithComponent(Config{
		Level:  "info",
		Pretty: false,
		Output: &buf,
	}, "compiler")

	logger.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"compiler"`) {
		t.Errorf("Expected component field in output, got: %s", buf.String())
	}
}
