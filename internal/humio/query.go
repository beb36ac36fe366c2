package humio

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tombee/humio-connector/internal/format"
)

// queryBody builds the shared body of humio-query and humio-query-job.
func queryBody(args Args) (map[string]any, error) {
	offset, err := args.Int("timeZoneOffsetMinutes")
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"queryString":           args.String("queryString"),
		"start":                 args.String("start"),
		"end":                   args.String("end"),
		"isLive":                args.Bool("isLive", ""),
		"timeZoneOffsetMinutes": offset,
	}
	if arguments := args.String("arguments"); arguments != "" {
		body["arguments"] = arguments
	}
	return body, nil
}

// query runs a synchronous search and returns the events.
func (i *Integration) query(ctx context.Context, args Args) (*Result, error) {
	body, err := queryBody(args)
	if err != nil {
		return nil, err
	}

	resp, err := i.send(ctx, http.MethodPost, repoPath(args.String("repository"), "/query"), body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	value, err := decodeJSON(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Result{
		Markdown: format.TableToMarkdown("Humio Query Results", value, true),
		Outputs:  map[string]any{queryKey.String(): []any{value}},
		Raw:      value,
	}, nil
}

// queryJob starts an asynchronous query job.
func (i *Integration) queryJob(ctx context.Context, args Args) (*Result, error) {
	body, err := queryBody(args)
	if err != nil {
		return nil, err
	}

	resp, err := i.send(ctx, http.MethodPost, repoPath(args.String("repository"), "/queryjobs"), body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	return tableResult(resp, "Humio Query Job", jobKey)
}

// poll fetches the current results of a query job. The output gains a
// job_id field so repeated polls merge into one context entry.
func (i *Integration) poll(ctx context.Context, args Args) (*Result, error) {
	id := args.String("id")
	resp, err := i.send(ctx, http.MethodGet, repoPath(args.String("repository"), "/queryjobs/"+id), nil)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &NotFoundError{Resource: "Query job", ID: id, Body: string(resp.Body)}
	default:
		return nil, apiError(resp)
	}

	value, err := decodeJSON(resp.Body)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected poll response: expected object, got %T", value)
	}
	obj["job_id"] = id

	events, ok := obj["events"]
	if !ok || events == nil {
		events = []any{}
	}

	return &Result{
		Markdown: format.TableToMarkdown("Humio Poll Result", events, true),
		Outputs:  map[string]any{pollKey.String(): obj},
		Raw:      obj,
	}, nil
}

// deleteJob cancels a query job.
func (i *Integration) deleteJob(ctx context.Context, args Args) (*Result, error) {
	id := args.String("id")
	resp, err := i.send(ctx, http.MethodDelete, repoPath(args.String("repository"), "/queryjobs/"+id), nil)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusNoContent:
		return deleteResult(resp), nil
	case http.StatusNotFound:
		return nil, &NotFoundError{Resource: "Query job", ID: id, Body: string(resp.Body)}
	default:
		return nil, apiError(resp)
	}
}
