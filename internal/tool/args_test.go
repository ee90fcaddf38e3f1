package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		mode    ArgMode
		want    []string
	}{
		{"blank", "  \n\t", ArgModeShell, nil},
		{"trimmed single", "  --flag value \n", ArgModeSingle, []string{"--flag value"}},
		{"shell words", "  --flag value \n", ArgModeShell, []string{"--flag", "value"}},
		{"default is shell", "a b", "", []string{"a", "b"}},
		{"quoted", `set .a "hello world"`, ArgModeShell, []string{"set", ".a", "hello world"}},
		{"single quotes", `del '.x y'`, ArgModeShell, []string{"del", ".x y"}},
		{"escaped space", `a\ b c`, ArgModeShell, []string{"a b", "c"}},
		{"newlines separate words", "a\nb", ArgModeShell, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.content, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgs_UnterminatedQuote(t *testing.T) {
	_, err := ParseArgs(`set "oops`, ArgModeShell)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "split arguments")
}

func TestParseArgs_InvalidMode(t *testing.T) {
	_, err := ParseArgs("x", ArgMode("bogus"))
	require.Error(t, err)
}

func TestParseArgMode(t *testing.T) {
	m, err := ParseArgMode("single")
	require.NoError(t, err)
	assert.Equal(t, ArgModeSingle, m)

	_, err = ParseArgMode("posix")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid args mode")
}
