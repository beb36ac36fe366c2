package humio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	tests := map[string]bool{
		"true":  true,
		"TRUE":  true,
		"1":     true,
		"t":     true,
		"T":     true,
		"y":     true,
		"Yes":   true,
		"false": false,
		"0":     false,
		"no":    false,
		"on":    false,
		"":      false,
		" true": false,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseBool(in), "ParseBool(%q)", in)
	}
}

func TestArgs_Defaults(t *testing.T) {
	args := Args{"present": "", "silenced": "YES"}

	assert.Equal(t, "", args.String("missing"))
	assert.Equal(t, "", args.StringDefault("present", "fallback"))
	assert.Equal(t, "fallback", args.StringDefault("missing", "fallback"))
	assert.True(t, args.Bool("silenced", "false"))
	assert.False(t, args.Bool("missing", "false"))
	assert.True(t, args.Bool("missing", "t"))
}

func TestArgs_Int(t *testing.T) {
	args := Args{"ok": "60000", "neg": "-120", "bad": "ten"}

	n, err := args.Int("ok")
	require.NoError(t, err)
	assert.Equal(t, 60000, n)

	n, err = args.Int("neg")
	require.NoError(t, err)
	assert.Equal(t, -120, n)

	_, err = args.Int("bad")
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "bad", argErr.Key)
	assert.Contains(t, err.Error(), "must be an integer")

	_, err = args.Int("missing")
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "argument missing is required", err.Error())
}

func TestArgs_List(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{"a,,b,", []string{"a", "b"}},
		{",", []string{}},
		{"a, b", []string{"a", " b"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Args{"k": tt.in}.List("k"), "List(%q)", tt.in)
	}
	assert.Equal(t, []string{}, Args{}.List("missing"))
}

func TestArgsFromMap(t *testing.T) {
	got := ArgsFromMap(map[string]any{
		"repository":         "sandbox",
		"notifiers":          []any{"n1", "n2"},
		"silenced":           true,
		"throttleTimeMillis": json.Number("60000"),
		"limit":              float64(5),
		"arguments":          map[string]any{"host": "web"},
		"skip":               nil,
	})

	assert.Equal(t, Args{
		"repository":         "sandbox",
		"notifiers":          "n1,n2",
		"silenced":           "true",
		"throttleTimeMillis": "60000",
		"limit":              "5",
		"arguments":          `{"host":"web"}`,
	}, got)
}
