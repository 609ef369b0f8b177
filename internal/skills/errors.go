package skills

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrFileMissing        = errors.New("file is required")
	ErrInvalidMimeType    = errors.New("only files of type pdf are permitted")
	ErrFileTooLarge       = errors.New("file is too large")
	ErrDocumentCorrupt    = errors.New("document could not be parsed")
	ErrModelUnavailable   = errors.New("model unavailable")
	ErrInvalidModelOutput = errors.New("invalid model output")
	ErrTooManyRequests    = errors.New("too many requests")
)

const (
	ErrorCodeFileMissing        = "FILE_MISSING"
	ErrorCodeInvalidMimeType    = "INVALID_MIME_TYPE"
	ErrorCodeFileTooLarge       = "FILE_TOO_LARGE"
	ErrorCodeDocumentCorrupt    = "DOCUMENT_CORRUPT"
	ErrorCodeModelUnavailable   = "MODEL_UNAVAILABLE"
	ErrorCodeInvalidModelOutput = "INVALID_MODEL_OUTPUT"
	ErrorCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrorCodeCanceled           = "CANCELED"
	ErrorCodeInternal           = "INTERNAL_ERROR"
)

// OutputError explains why a model response was rejected. Index is the
// offending array element, or -1 when the response as a whole is unusable.
// The message never contains response content, so it is safe to return to callers.
type OutputError struct {
	Index  int
	Field  string
	Reason string
}

func (e *OutputError) Error() string {
	switch {
	case e.Index < 0:
		return e.Reason
	case e.Field == "":
		return fmt.Sprintf("element %d: %s", e.Index, e.Reason)
	default:
		return fmt.Sprintf("element %d: %s %s", e.Index, e.Field, e.Reason)
	}
}

func (e *OutputError) Unwrap() error {
	return ErrInvalidModelOutput
}

type category struct {
	code    string
	status  int
	message string
	details string
}

var categories = []struct {
	err error
	cat category
}{
	{ErrFileMissing, category{ErrorCodeFileMissing, http.StatusBadRequest, "File is required", ""}},
	{ErrInvalidMimeType, category{ErrorCodeInvalidMimeType, http.StatusBadRequest, "Only files of type pdf are permitted", ""}},
	{ErrFileTooLarge, category{ErrorCodeFileTooLarge, http.StatusBadRequest, "File exceeds the maximum upload size", ""}},
	{ErrTooManyRequests, category{ErrorCodeTooManyRequests, http.StatusTooManyRequests, "Too many extractions in progress, retry shortly", ""}},
	{ErrDocumentCorrupt, category{ErrorCodeDocumentCorrupt, http.StatusInternalServerError, "Failed to read PDF", "The uploaded file could not be parsed as a PDF document"}},
	{ErrModelUnavailable, category{ErrorCodeModelUnavailable, http.StatusInternalServerError, "Failed to get response from model", "The model provider did not return a usable response"}},
	{ErrInvalidModelOutput, category{ErrorCodeInvalidModelOutput, http.StatusInternalServerError, "Model returned an invalid response", "The model response was not a valid skill list"}},
}

var internalCategory = category{ErrorCodeInternal, http.StatusInternalServerError, "Internal server error", "Unexpected error"}

func classify(err error) category {
	for _, c := range categories {
		if errors.Is(err, c.err) {
			return c.cat
		}
	}
	return internalCategory
}

// Code returns the stable error code for err.
func Code(err error) string {
	if errors.Is(err, context.Canceled) {
		return ErrorCodeCanceled
	}
	return classify(err).code
}

// HTTPStatus returns the response status for err.
func HTTPStatus(err error) int {
	return classify(err).status
}

// PublicMessage returns the caller-facing error message for err.
func PublicMessage(err error) string {
	return classify(err).message
}

// PublicDetails returns caller-safe details for server-side failures and "" for input errors.
func PublicDetails(err error) string {
	cat := classify(err)
	var outErr *OutputError
	if errors.As(err, &outErr) {
		return outErr.Error()
	}
	return cat.details
}
