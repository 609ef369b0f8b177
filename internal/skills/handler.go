package skills

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skillsearch-backend/internal/shared/server/middleware"
	"skillsearch-backend/internal/shared/server/respond"
	"skillsearch-backend/internal/shared/util"
)

const (
	formField         = "pdf"
	fallbackFormField = "file"

	// multipartOverhead allows for boundaries and part headers around the file.
	multipartOverhead = 64 << 10

	// statusClientClosedRequest is recorded when the caller disconnects mid-request.
	statusClientClosedRequest = 499
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches skill routes to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/skills", h.extract)
}

func (h *Handler) maxUploadBytes() int64 {
	if h.Svc != nil && h.Svc.MaxUploadBytes > 0 {
		return h.Svc.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}

func (h *Handler) extract(c *gin.Context) {
	limit := h.maxUploadBytes()
	if c.Request.ContentLength > limit+multipartOverhead {
		h.fail(c, ErrFileTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	fileHeader, err := formFile(c)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			h.fail(c, ErrFileTooLarge)
			return
		}
		h.fail(c, ErrFileMissing)
		return
	}
	if fileHeader.Size > limit {
		h.fail(c, ErrFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(c, ErrFileMissing)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		h.fail(c, ErrFileMissing)
		return
	}

	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		fileName = ""
	}
	doc := UploadedDocument{
		Data:             data,
		DeclaredMimeType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:        fileHeader.Size,
		FileName:         fileName,
	}

	records, err := h.Svc.Run(c.Request.Context(), doc)
	if err != nil {
		if errors.Is(err, context.Canceled) && c.Request.Context().Err() != nil {
			c.Set(middleware.OutcomeKey, ErrorCodeCanceled)
			c.AbortWithStatus(statusClientClosedRequest)
			return
		}
		h.fail(c, err)
		return
	}

	c.Set(middleware.OutcomeKey, "ok")
	c.Set(middleware.RecordCountKey, len(records))
	respond.OK(c, records)
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := Code(err)
	status := HTTPStatus(err)
	c.Set(middleware.OutcomeKey, code)
	if status == http.StatusTooManyRequests {
		c.Header("Retry-After", "1")
	}
	respond.Error(c, status, code, PublicMessage(err), PublicDetails(err))
}

// formFile returns the uploaded file from the "pdf" field, falling back to "file".
func formFile(c *gin.Context) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(formField)
	if err == nil {
		return fh, nil
	}
	if !errors.Is(err, http.ErrMissingFile) {
		return nil, err
	}
	return c.FormFile(fallbackFormField)
}
