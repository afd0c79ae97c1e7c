package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"6f1c5a52-3b0e-4d7a-9a53-1f0f0b1c2d3e", true},
		{"6F1C5A52-3B0E-4D7A-9A53-1F0F0B1C2D3E", true},
		{"", false},
		{"not-an-id", false},
		{"6f1c5a523b0e4d7a9a531f0f0b1c2d3e", false},
		{"{6f1c5a52-3b0e-4d7a-9a53-1f0f0b1c2d3e}", false},
		{"urn:uuid:6f1c5a52-3b0e-4d7a-9a53-1f0f0b1c2d3e", false},
		{"6f1c5a52-3b0e-4d7a-9a53-1f0f0b1c2d3z", false},
		{"6f1c5a52-3b0e-4d7a-9a53-1f0f0b1c2d3e ", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.value), "Valid(%q)", tt.value)
	}
}
