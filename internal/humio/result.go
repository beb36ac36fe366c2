package humio

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Result is what a command hands back to the platform.
type Result struct {
	// Markdown is the human-readable display.
	Markdown string `json:"markdown"`

	// Outputs is the structured context, keyed by OutputKey strings.
	Outputs map[string]any `json:"outputs,omitempty"`

	// Raw is the decoded response body.
	Raw any `json:"raw,omitempty"`
}

// OutputKey names where a result lands in the platform context. KeyField
// makes the platform merge entries by that field instead of appending.
type OutputKey struct {
	Path     string
	KeyField string
}

func (k OutputKey) String() string {
	if k.KeyField == "" {
		return k.Path
	}
	return fmt.Sprintf("%s(val.%s == obj.%s)", k.Path, k.KeyField, k.KeyField)
}

var (
	queryKey    = OutputKey{Path: "Humio.Query"}
	jobKey      = OutputKey{Path: "Humio.Job"}
	pollKey     = OutputKey{Path: "Humio.Result", KeyField: "job_id"}
	alertKey    = OutputKey{Path: "Humio.Alert", KeyField: "id"}
	notifierKey = OutputKey{Path: "Humio.Notifier", KeyField: "id"}
)

// decodeJSON decodes body keeping numbers as json.Number so ids and
// millisecond timestamps round-trip exactly.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return v, nil
}
