package humio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/tombee/humio-connector/internal/format"
	"github.com/tombee/humio-connector/internal/state"
)

// occurredLayout is the incident timestamp format, always UTC.
const occurredLayout = "2006-01-02T15:04:05Z"

// Incident is a platform incident built from one Humio event.
type Incident struct {
	Name     string  `json:"name"`
	Occurred string  `json:"occurred"`
	Labels   []Label `json:"labels"`
	RawJSON  string  `json:"rawJSON"`
}

// Label carries one event field.
type Label struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// IncidentConfig holds the static fetch settings.
type IncidentConfig struct {
	QueryString           string
	Repository            string
	StartTime             string
	TimeZoneOffsetMinutes int
}

// LastRun is the persisted fetch marker, in Unix seconds.
type LastRun = state.LastRun

// LastRunStore persists the fetch marker between invocations.
type LastRunStore interface {
	GetLastRun(ctx context.Context) (LastRun, error)
	SetLastRun(ctx context.Context, lr LastRun) error
}

// FetchIncidents queries events since the last run and converts each row
// into an Incident. Without a usable marker it starts from cfg.StartTime.
// The marker is advanced to now only after a successful query.
func (i *Integration) FetchIncidents(ctx context.Context, cfg IncidentConfig, store LastRunStore) ([]Incident, error) {
	var start any = cfg.StartTime

	lr, err := store.GetLastRun(ctx)
	switch {
	case err == nil && lr.Time != 0:
		start = lr.Time * 1000
	case err == nil, errors.Is(err, state.ErrNoLastRun):
		i.logger.Debug("no last run marker, using configured start time", "start", cfg.StartTime)
	default:
		i.logger.Warn("failed to read last run marker, using configured start time",
			"start", cfg.StartTime,
			"error", err.Error(),
		)
	}

	body := map[string]any{
		"queryString":           cfg.QueryString,
		"start":                 start,
		"end":                   "now",
		"isLive":                false,
		"timeZoneOffsetMinutes": cfg.TimeZoneOffsetMinutes,
	}

	resp, err := i.send(ctx, http.MethodPost, repoPath(cfg.Repository, "/query"), body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	now := i.now()
	value, err := decodeJSON(resp.Body)
	if err != nil {
		return nil, err
	}
	rows, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected query response: expected array, got %T", value)
	}

	incidents := make([]Incident, 0, len(rows))
	for idx, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("event %d: expected object, got %T", idx, r)
		}
		inc, err := IncidentFromEvent(row)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", idx, err)
		}
		incidents = append(incidents, inc)
	}

	// The marker only moves once the whole window converted.
	if err := store.SetLastRun(ctx, LastRun{Time: now.Unix()}); err != nil {
		return nil, fmt.Errorf("failed to persist last run: %w", err)
	}

	i.metrics.RecordIncidents(ctx, cfg.Repository, len(incidents), now)
	return incidents, nil
}

// IncidentFromEvent converts a Humio event. The event must carry @id and a
// millisecond @timestamp.
func IncidentFromEvent(row map[string]any) (Incident, error) {
	rawID, ok := row["@id"]
	if !ok {
		return Incident{}, fmt.Errorf("missing @id field")
	}

	ts, err := millis(row["@timestamp"])
	if err != nil {
		return Incident{}, err
	}

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	labels := make([]Label, 0, len(keys))
	for _, k := range keys {
		labels = append(labels, Label{Type: k, Value: stringify(row[k])})
	}

	raw, err := json.Marshal(row)
	if err != nil {
		return Incident{}, fmt.Errorf("failed to encode event: %w", err)
	}

	return Incident{
		Name:     "Humio Incident " + stringify(rawID),
		Occurred: time.UnixMilli(ts).UTC().Format(occurredLayout),
		Labels:   labels,
		RawJSON:  string(raw),
	}, nil
}

func millis(v any) (int64, error) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid @timestamp %q: %w", t.String(), err)
		}
		return int64(f), nil
	case float64:
		return int64(t), nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid @timestamp %q: %w", t, err)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("missing @timestamp field")
	default:
		return 0, fmt.Errorf("invalid @timestamp type %T", v)
	}
}

// stringify renders a field value for a label: strings verbatim, numbers
// without exponent, everything else as JSON.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return "null"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func (i *Integration) fetchIncidents(ctx context.Context, _ Args) (*Result, error) {
	if i.store == nil {
		return nil, fmt.Errorf("fetch-incidents requires a last run store")
	}

	incidents, err := i.FetchIncidents(ctx, i.incidents, i.store)
	if err != nil {
		return nil, err
	}

	rows := make([]any, 0, len(incidents))
	for _, inc := range incidents {
		rows = append(rows, map[string]any{
			"name":     inc.Name,
			"occurred": inc.Occurred,
			"labels":   len(inc.Labels),
		})
	}

	return &Result{
		Markdown: format.TableToMarkdown("Humio Incidents", rows, true),
		Raw:      incidents,
	}, nil
}
