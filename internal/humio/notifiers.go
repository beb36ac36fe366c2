package humio

import (
	"context"
	"net/http"
)

func (i *Integration) listNotifiers(ctx context.Context, args Args) (*Result, error) {
	resp, err := i.send(ctx, http.MethodGet, repoPath(args.String("repository"), "/alertnotifiers"), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	return tableResult(resp, "Humio Notifiers", notifierKey)
}

// getNotifierByID treats a 404, or a 200 with an empty body, as not found.
func (i *Integration) getNotifierByID(ctx context.Context, args Args) (*Result, error) {
	id := args.String("id")
	resp, err := i.send(ctx, http.MethodGet, repoPath(args.String("repository"), "/alertnotifiers/"+id), nil)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Resource: "Notifier", ID: id, Body: string(resp.Body)}
	case resp.StatusCode != http.StatusOK:
		return nil, apiError(resp)
	case len(resp.Body) == 0:
		return nil, &NotFoundError{Resource: "Notifier", ID: id}
	}
	return tableResult(resp, "Humio Notifiers", notifierKey)
}
