package githubapp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v41/github"

	"github.com/termlink/issuemirror/pkg/models"
)

// NotInstalledError indicates that the GitHub App has no installation on the
// requested repository. It is surfaced to the caller and is not retried
// automatically.
type NotInstalledError struct {
	RepoCoords models.RepoCoordinates
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("github app is not installed on repository: %s", e.RepoCoords.FullName())
}

// AuthorizationError indicates that GitHub rejected the app credentials or
// that the app lacks the permissions for the requested operation.
type AuthorizationError struct {
	Operation string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("access forbidden during %s: check app credentials and permissions", e.Operation)
}

// RemoteError wraps any other non-2xx response from the GitHub API. The
// status and response body are retained for diagnostics.
type RemoteError struct {
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("github api error during %s (status %d): %s", e.Operation, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("github api error during %s (status %d): %v", e.Operation, e.StatusCode, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// ClassifyError maps a go-github error into the error taxonomy: 401 and 403
// are credential rejections, everything else is a RemoteError carrying the
// status and message body.
func ClassifyError(operation string, resp *github.Response, err error) error {
	if err == nil {
		return nil
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthorizationError{Operation: operation}
		default:
			return &RemoteError{
				Operation:  operation,
				StatusCode: ghErr.Response.StatusCode,
				Body:       ghErr.Message,
				Err:        err,
			}
		}
	}
	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	return &RemoteError{Operation: operation, StatusCode: statusCode, Err: err}
}

// classifyInstallationLookup refines ClassifyError for the installation
// lookup endpoint, where a 404 means the app is not installed on the
// repository.
func classifyInstallationLookup(coords models.RepoCoordinates, resp *github.Response, err error) error {
	if err == nil {
		return nil
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return &NotInstalledError{RepoCoords: coords}
	}
	return ClassifyError("installation lookup", resp, err)
}
