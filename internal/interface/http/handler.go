package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/textcraft/internal/domain/textcraft"
	"github.com/yanqian/textcraft/internal/infra/config"
	apperrors "github.com/yanqian/textcraft/pkg/errors"
)

// multipart framing and form fields on top of the file itself
const uploadOverheadBytes = 1 << 20

// Handler wires the HTTP transport to the textcraft service.
type Handler struct {
	svc          textcraft.Service
	maxFileBytes int64
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, svc textcraft.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:          svc,
		maxFileBytes: cfg.Limits.MaxFileBytes,
		logger:       logger.With("component", "http.handler"),
	}
}

// Summarize handles POST /predict.
func (h *Handler) Summarize(c *gin.Context) {
	var req textcraft.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.svc.Summarize(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromServiceError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Paraphrase handles POST /paraphrase.
func (h *Handler) Paraphrase(c *gin.Context) {
	var req textcraft.ParaphraseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.svc.Paraphrase(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromServiceError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Upload handles POST /upload with multipart fields file, operation and length_factor.
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileBytes+uploadOverheadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "file too large", err))
			return
		}
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "file is required", err))
		return
	}

	var factor *float64
	if raw := strings.TrimSpace(c.PostForm("length_factor")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "length_factor must be a number", err))
			return
		}
		factor = &parsed
	}

	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unable to read file", err))
		return
	}
	defer file.Close()

	// one byte past the limit is enough for the service to reject the upload
	data, err := io.ReadAll(io.LimitReader(file, h.maxFileBytes+1))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unable to read file", err))
		return
	}

	resp, err := h.svc.ProcessFile(c.Request.Context(), textcraft.FileRequest{
		Filename:     fileHeader.Filename,
		Data:         data,
		Operation:    c.PostForm("operation"),
		LengthFactor: factor,
	})
	if err != nil {
		abortWithError(c, fromServiceError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History handles GET /history.
func (h *Handler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "limit must be a non-negative integer", err))
			return
		}
		limit = parsed
	}

	runs, err := h.svc.History(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromServiceError(err))
		return
	}
	if runs == nil {
		runs = []textcraft.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Health())
}
