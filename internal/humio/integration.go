package humio

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/humio-connector/internal/format"
	connlog "github.com/tombee/humio-connector/internal/log"
)

// Command names accepted by Execute.
const (
	CmdQuery           = "humio-query"
	CmdQueryJob        = "humio-query-job"
	CmdPoll            = "humio-poll"
	CmdDeleteJob       = "humio-delete-job"
	CmdListAlerts      = "humio-list-alerts"
	CmdGetAlertByID    = "humio-get-alert-by-id"
	CmdCreateAlert     = "humio-create-alert"
	CmdDeleteAlert     = "humio-delete-alert"
	CmdListNotifiers   = "humio-list-notifiers"
	CmdGetNotifierByID = "humio-get-notifier-by-id"
	CmdTestModule      = "test-module"
	CmdFetchIncidents  = "fetch-incidents"
)

// ParameterInfo describes one command argument.
type ParameterInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
	Default     string `json:"default,omitempty"`
}

// CommandInfo describes a dispatchable command.
type CommandInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags,omitempty"`
	Parameters  []ParameterInfo `json:"parameters,omitempty"`
}

type handlerFunc func(ctx context.Context, args Args) (*Result, error)

// Integration maps platform commands onto Humio REST calls.
type Integration struct {
	client   *Client
	handlers map[string]handlerFunc
	metrics  *Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	incidents IncidentConfig
	store     LastRunStore
}

// Option configures an Integration.
type Option func(*Integration)

// WithMetrics records command metrics.
func WithMetrics(m *Metrics) Option {
	return func(i *Integration) {
		i.metrics = m
	}
}

// WithLogger sets the integration logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Integration) {
		i.logger = logger
	}
}

// WithClock overrides the wall clock used for last-run markers.
func WithClock(now func() time.Time) Option {
	return func(i *Integration) {
		i.now = now
	}
}

// WithIncidents configures the fetch-incidents command.
func WithIncidents(cfg IncidentConfig, store LastRunStore) Option {
	return func(i *Integration) {
		i.incidents = cfg
		i.store = store
	}
}

// NewIntegration creates an Integration bound to client.
func NewIntegration(client *Client, opts ...Option) *Integration {
	i := &Integration{
		client: client,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}

	i.handlers = map[string]handlerFunc{
		CmdQuery:           i.query,
		CmdQueryJob:        i.queryJob,
		CmdPoll:            i.poll,
		CmdDeleteJob:       i.deleteJob,
		CmdListAlerts:      i.listAlerts,
		CmdGetAlertByID:    i.getAlertByID,
		CmdCreateAlert:     i.createAlert,
		CmdDeleteAlert:     i.deleteAlert,
		CmdListNotifiers:   i.listNotifiers,
		CmdGetNotifierByID: i.getNotifierByID,
		CmdTestModule:      i.testModule,
		CmdFetchIncidents:  i.fetchIncidents,
	}

	return i
}

// Execute runs a named command with the given arguments.
func (i *Integration) Execute(ctx context.Context, command string, args Args) (*Result, error) {
	handler, ok := i.handlers[command]
	if !ok {
		return nil, &UnknownCommandError{Command: command}
	}

	inv := &connlog.Invocation{
		Command:      command,
		InvocationID: uuid.NewString(),
	}
	if repo := args.String("repository"); repo != "" {
		inv.Metadata = map[string]any{connlog.RepositoryKey: repo}
	}
	logger := connlog.WithCommand(i.logger, command, inv.InvocationID)
	connlog.LogInvocationStart(logger, inv)

	ctx, span := i.tracer.Start(ctx, "humio.command "+command,
		trace.WithAttributes(
			attribute.String("humio.command", command),
			attribute.String("humio.invocation_id", inv.InvocationID),
		),
	)
	defer span.End()

	start := time.Now()
	result, err := handler(ctx, args)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	i.metrics.RecordCommand(ctx, command, err == nil, duration)
	connlog.LogInvocationResult(logger, inv, err, duration)

	return result, err
}

// Commands returns the metadata for every command the integration can run.
// fetch-incidents is left out until a last-run store is attached.
func (i *Integration) Commands() []CommandInfo {
	cmds := Catalog()
	if i.store != nil {
		return cmds
	}
	return slices.DeleteFunc(cmds, func(c CommandInfo) bool {
		return c.Name == CmdFetchIncidents
	})
}

// repoPath builds /api/v1/repositories/{repository}{suffix}. Segments are
// interpolated verbatim.
func repoPath(repository, suffix string) string {
	return "/api/v1/repositories/" + repository + suffix
}

func acceptJSON() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// send issues a request with the Accept header every handler uses.
func (i *Integration) send(ctx context.Context, method, path string, body any) (*Response, error) {
	return i.client.HTTPRequest(ctx, method, path, body, acceptJSON())
}

// tableResult decodes a success body into a display table plus outputs
// under key.
func tableResult(resp *Response, title string, key OutputKey) (*Result, error) {
	value, err := decodeJSON(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Result{
		Markdown: format.TableToMarkdown(title, value, true),
		Outputs:  map[string]any{key.String(): value},
		Raw:      value,
	}, nil
}

// deleteResult handles the 204 confirmation shared by delete commands.
func deleteResult(resp *Response) *Result {
	return &Result{Markdown: "Command executed. Status code " + strconv.Itoa(resp.StatusCode)}
}

func apiError(resp *Response) error {
	return &APIError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
}
