package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidMintAddress(t *testing.T) {
	tests := []struct {
		mint string
		want bool
	}{
		{"So11111111111111111111111111111111111111112", true},
		{"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", true},
		{"11111111111111111111111111111111", true},
		{"", false},
		{"bad mint", false},
		{"0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", false},
		{strings.Repeat("1", 43), false},
		{"So1111111111111111111111111111111111111111", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidMintAddress(tt.mint), tt.mint)
	}
}
