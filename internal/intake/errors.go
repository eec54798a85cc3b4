// Package intake validates report uploads and repository URLs and turns them
// into a new current report.
package intake

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	ErrTooLarge            = errors.New("file too large")
	ErrWrongType           = errors.New("not a json file")
	ErrMalformedJSON       = errors.New("malformed json")
	ErrMissingField        = errors.New("missing required field")
	ErrMissingURL          = errors.New("url is required")
	ErrInvalidURL          = errors.New("invalid github repository url")
	ErrRepoNotFound        = errors.New("repository not found")
	ErrAccessDenied        = errors.New("repository access denied")
	ErrUpstream            = errors.New("analysis service failed")
	ErrInvalidUpstreamData = errors.New("invalid analysis data")
	ErrTimeout             = errors.New("analysis timed out")
	ErrUnavailable         = errors.New("analysis service unavailable")
	ErrRateLimited         = errors.New("too many analysis requests")
)

type kindInfo struct {
	sentinel error
	status   int
	message  string
}

// Ordered so that the first match wins for errors carrying several marks.
var kinds = []kindInfo{
	{ErrTooLarge, http.StatusRequestEntityTooLarge, "File size exceeds the limit of 5MB"},
	{ErrWrongType, http.StatusBadRequest, "Only JSON files are allowed"},
	{ErrMalformedJSON, http.StatusBadRequest, "Invalid JSON format. Please check your file."},
	{ErrMissingField, http.StatusBadRequest, "Invalid JSON format: Missing 'projectName' field"},
	{ErrMissingURL, http.StatusBadRequest, "GitHub URL is required"},
	{ErrInvalidURL, http.StatusBadRequest, "Invalid GitHub repository URL format"},
	{ErrRepoNotFound, http.StatusNotFound, "Repository not found or not accessible"},
	{ErrAccessDenied, http.StatusForbidden, "Repository access denied. Please check if the repository is public."},
	{ErrInvalidUpstreamData, http.StatusInternalServerError, "Invalid data received from analysis service"},
	{ErrUpstream, http.StatusInternalServerError, "Failed to analyze repository. Please try again later."},
	{ErrTimeout, http.StatusRequestTimeout, "Request timeout. The repository analysis is taking too long."},
	{ErrUnavailable, http.StatusServiceUnavailable, "Unable to connect to analysis service. Please try again later."},
	{ErrRateLimited, http.StatusTooManyRequests, "Too many analysis requests. Please try again later."},
}

const unexpectedMessage = "An unexpected error occurred. Please try again."

func kindOf(err error) (kindInfo, bool) {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k, true
		}
	}
	return kindInfo{}, false
}

// UserMessage is the text shown to the user for err. A hint attached with
// errors.WithHint wins over the default message of the error kind.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	if k, ok := kindOf(err); ok {
		return k.message
	}
	return unexpectedMessage
}

// HTTPStatus maps err to the response status of the intake endpoints.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if k, ok := kindOf(err); ok {
		return k.status
	}
	return http.StatusInternalServerError
}

// IsUserError reports whether err is one of the intake validation or
// upstream kinds, as opposed to an internal failure.
func IsUserError(err error) bool {
	_, ok := kindOf(err)
	return ok
}
