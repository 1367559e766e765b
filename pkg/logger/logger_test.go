package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialLogger(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{name: "production", level: "Production"},
		{name: "development default", level: ""},
		{name: "unknown level falls back to development", level: "Verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := InitialLogger(tt.level)
			assert.NotNil(t, logger)
		})
	}
}
