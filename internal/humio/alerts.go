package humio

import (
	"context"
	"net/http"
)

func (i *Integration) listAlerts(ctx context.Context, args Args) (*Result, error) {
	resp, err := i.send(ctx, http.MethodGet, repoPath(args.String("repository"), "/alerts"), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	return tableResult(resp, "Humio Alerts", alertKey)
}

// getAlertByID treats a 404, or a 200 with an empty body, as not found.
func (i *Integration) getAlertByID(ctx context.Context, args Args) (*Result, error) {
	id := args.String("id")
	resp, err := i.send(ctx, http.MethodGet, repoPath(args.String("repository"), "/alerts/"+id), nil)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Resource: "Alert", ID: id, Body: string(resp.Body)}
	case resp.StatusCode != http.StatusOK:
		return nil, apiError(resp)
	case len(resp.Body) == 0:
		return nil, &NotFoundError{Resource: "Alert", ID: id}
	}
	return tableResult(resp, "Humio Alerts", alertKey)
}

// createAlert defines a live alert. The query window always ends at now.
func (i *Integration) createAlert(ctx context.Context, args Args) (*Result, error) {
	throttle, err := args.Int("throttleTimeMillis")
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"name":               args.String("name"),
		"description":        args.StringDefault("description", ""),
		"throttleTimeMillis": throttle,
		"silenced":           args.Bool("silenced", "false"),
		"notifiers":          args.List("notifiers"),
		"labels":             args.List("labels"),
		"query": map[string]any{
			"queryString": args.String("queryString"),
			"start":       args.String("start"),
			"end":         "now",
			"isLive":      true,
		},
	}

	resp, err := i.send(ctx, http.MethodPost, repoPath(args.String("repository"), "/alerts"), body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}
	return tableResult(resp, "Humio Alerts", alertKey)
}

func (i *Integration) deleteAlert(ctx context.Context, args Args) (*Result, error) {
	resp, err := i.send(ctx, http.MethodDelete, repoPath(args.String("repository"), "/alerts/"+args.String("id")), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusNoContent {
		return nil, apiError(resp)
	}
	return deleteResult(resp), nil
}
