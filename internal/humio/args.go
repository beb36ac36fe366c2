package humio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Args is the flat argument map supplied with each command.
type Args map[string]string

// truthy lists the accepted spellings of a true flag, compared lowercase.
var truthy = map[string]bool{
	"true": true,
	"1":    true,
	"t":    true,
	"y":    true,
	"yes":  true,
}

// ParseBool reports whether s is one of true, 1, t, y, yes in any case.
// Every other value, including the empty string, is false.
func ParseBool(s string) bool {
	return truthy[strings.ToLower(s)]
}

// String returns the value for key, or "" when absent.
func (a Args) String(key string) string {
	return a[key]
}

// StringDefault returns the value for key, or def when the key is absent.
func (a Args) StringDefault(key, def string) string {
	if v, ok := a[key]; ok {
		return v
	}
	return def
}

// Bool coerces the value for key with ParseBool, using def when absent.
func (a Args) Bool(key, def string) bool {
	return ParseBool(a.StringDefault(key, def))
}

// Int parses the value for key as a base-10 integer.
func (a Args) Int(key string) (int, error) {
	raw, ok := a[key]
	if !ok || raw == "" {
		return 0, &ArgumentError{Key: key, Reason: "is required"}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ArgumentError{Key: key, Value: raw, Reason: "must be an integer", Cause: err}
	}
	return n, nil
}

// List splits the value for key on commas and drops empty elements.
// The result is never nil.
func (a Args) List(key string) []string {
	out := []string{}
	for _, part := range strings.Split(a[key], ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ArgsFromMap flattens structured arguments (tool calls, JSON files) to
// Args. Lists become comma-separated, objects become JSON and nil values
// are dropped.
func ArgsFromMap(raw map[string]any) Args {
	args := make(Args, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			args[k] = t
		case []any:
			parts := make([]string, 0, len(t))
			for _, item := range t {
				parts = append(parts, fmt.Sprint(item))
			}
			args[k] = strings.Join(parts, ",")
		case map[string]any:
			b, _ := json.Marshal(t)
			args[k] = string(b)
		default:
			args[k] = fmt.Sprint(t)
		}
	}
	return args
}
