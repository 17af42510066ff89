package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"Wireless Keyboard (US)", "wireless-keyboard-us"},
		{"  padded  ", "padded"},
		{"ALL UPPER CASE", "all-upper-case"},
		{"trailing---dashes--", "trailing-dashes"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "hello-world-a1b2", WithSuffix("hello-world", "a1b2"))
	assert.Equal(t, "a1b2", WithSuffix("", "a1b2"))
}
