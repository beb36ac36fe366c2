package humio

import (
	"errors"
	"fmt"

	connerrors "github.com/tombee/humio-connector/pkg/errors"
)

// APIError is returned when Humio answers with an unexpected status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "Error: response from server was: " + e.Body
}

func (e *APIError) ErrorType() string   { return connerrors.TypeAPI }
func (e *APIError) IsUserVisible() bool { return true }
func (e *APIError) UserMessage() string { return e.Error() }
func (e *APIError) Suggestion() string  { return statusHint(e.StatusCode) }

// NotFoundError is returned for a 404 on a lookup, or for a get-by-id that
// succeeds with an empty body.
type NotFoundError struct {
	Resource string
	ID       string
	// Body is the server response, used as the message when present.
	Body string
}

func (e *NotFoundError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("%s with id %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) ErrorType() string   { return connerrors.TypeNotFound }
func (e *NotFoundError) IsUserVisible() bool { return true }
func (e *NotFoundError) UserMessage() string { return e.Error() }
func (e *NotFoundError) Suggestion() string {
	return "Check the repository name and id"
}

// FetchError is returned when the incident query fails.
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return "Error in fetching incidents. Error from server was: " + e.Body
}

func (e *FetchError) ErrorType() string   { return connerrors.TypeAPI }
func (e *FetchError) IsUserVisible() bool { return true }
func (e *FetchError) UserMessage() string { return e.Error() }
func (e *FetchError) Suggestion() string  { return statusHint(e.StatusCode) }

// ArgumentError reports a command argument that could not be coerced.
type ArgumentError struct {
	Key    string
	Value  string
	Reason string
	Cause  error
}

func (e *ArgumentError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("argument %s %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("argument %s=%q %s", e.Key, e.Value, e.Reason)
}

func (e *ArgumentError) Unwrap() error       { return e.Cause }
func (e *ArgumentError) ErrorType() string   { return connerrors.TypeArgument }
func (e *ArgumentError) IsUserVisible() bool { return true }
func (e *ArgumentError) UserMessage() string { return e.Error() }
func (e *ArgumentError) Suggestion() string {
	return "Run 'humio-connector commands' to see each command's arguments"
}

// UnknownCommandError is returned by Execute for a command not in the table.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Command)
}

func (e *UnknownCommandError) ErrorType() string   { return connerrors.TypeArgument }
func (e *UnknownCommandError) IsUserVisible() bool { return true }
func (e *UnknownCommandError) UserMessage() string { return e.Error() }
func (e *UnknownCommandError) Suggestion() string {
	return "Run 'humio-connector commands' to list supported commands"
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// statusHint returns a suggestion for a Humio status code.
func statusHint(statusCode int) string {
	switch statusCode {
	case 400:
		return "Bad request - check the query string and time range"
	case 401:
		return "Unauthorized - check the API key"
	case 403:
		return "Forbidden - the API key lacks permission on this repository"
	case 404:
		return "Not found - check the repository name"
	case 429:
		return "Rate limit exceeded - lower rate_limit in config"
	case 500, 502, 503:
		return "Humio is unavailable - try again later"
	default:
		return ""
	}
}
