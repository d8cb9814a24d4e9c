package themes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
	}{
		{name: "default", input: "default", wantOK: true},
		{name: "mixed case with spaces", input: "  Catppuccin-Mocha ", wantOK: true},
		{name: "unknown", input: "solarized", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ByName(tt.input)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"catppuccin-mocha", "default"}, Names())
}
