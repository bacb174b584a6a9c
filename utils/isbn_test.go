package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestISBN(t *testing.T) {
	tests := []struct {
		in    string
		clean string
		valid bool
	}{
		{"978-0-441-01359-3", "9780441013593", true},
		{" 0 441 01359 7 ", "0441013597", true},
		{"080442957x", "080442957X", true},
		{"97804410135X", "97804410135X", false},
		{"isbn:123", "123", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got := SanitizeISBN(tt.in)
		assert.Equal(t, tt.clean, got, tt.in)
		assert.Equal(t, tt.valid, ValidISBN(got), tt.in)
	}
}
