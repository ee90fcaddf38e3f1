package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"bool", true, "true"},
		{"empty array", []any{}, "[]"},
		{"string slice", []string{"a", "b"}, `["a","b"]`},
		{"empty object", map[string]any{}, "{}"},
		{"string map", map[string]string{"b": "2", "a": "1"}, `{"a":"1","b":"2"}`},
		{"html not escaped", "<a&b>", `"<a&b>"`},
		{"control escaped", "a\nb", `"a\nb"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalSortedKeys(t *testing.T) {
	got, err := Marshal(map[string]any{
		"zebra": 1,
		"alpha": map[string]any{"d": 1, "c": 2},
		"beta":  []any{"x"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"c":2,"d":1},"beta":["x"],"zebra":1}`, string(got))
}

func TestMarshalUTF16KeyOrder(t *testing.T) {
	// U+E000 sorts after U+1F600 in UTF-8 byte order but before it in
	// UTF-16 code units (surrogates start at 0xD800).
	got, err := Marshal(map[string]any{"\uE000": 1, "\U0001F600": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uE000\":1}", string(got))
}

func TestMarshalNFC(t *testing.T) {
	got, err := Marshal("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalLineSeparatorsLiteral(t *testing.T) {
	got, err := Marshal("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(got))

	got, err = Marshal(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(got))
}

func TestMarshalRejects(t *testing.T) {
	_, err := Marshal(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")

	_, err = Marshal(map[string]any{"f": 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats")

	_, err = Marshal(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestDigestStable(t *testing.T) {
	a, err := Digest(DomainManifest, map[string]any{"x": 1, "y": "z"})
	require.NoError(t, err)
	b, err := Digest(DomainManifest, map[string]any{"y": "z", "x": 1})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c, err := Digest(DomainCase, map[string]any{"x": 1, "y": "z"})
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "domain separation")
}
