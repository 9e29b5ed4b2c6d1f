package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"bondscreen/internal/analytics"
	apierrors "bondscreen/internal/errors"
	"bondscreen/internal/middleware"
	"bondscreen/internal/services"
	api "bondscreen/pkg/contracts/api/v1"
)

// multipartOverhead leaves room for part headers and boundaries on top of
// the upload size limit.
const multipartOverhead = 64 << 10

// BondHandler handles dataset and screening requests with RFC 7807 errors
type BondHandler struct {
	service        BondServiceInterface
	validator      *middleware.ValidationMiddleware
	queryValidator *middleware.QueryParamValidator
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewBondHandler creates a new bond handler
func NewBondHandler(service BondServiceInterface, validator *middleware.ValidationMiddleware, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *BondHandler {
	return &BondHandler{
		service:        service,
		validator:      validator,
		queryValidator: middleware.NewQueryParamValidator(errorHandler),
		logger:         logger.With(slog.String("component", "bond_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dataset routes, mounted under /api/datasets
func (h *BondHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/sample", h.LoadSample)
	r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).Post("/", h.Upload)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.GetDataset)
		r.Get("/options", h.GetOptions)
		r.Get("/groups", h.GetGroups)
		r.Get("/bonds/{isin}", h.GetBond)

		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeValidator(h.errorHandler, "application/json"))
			r.Use(h.validator.ValidateRequest)
			r.Post("/filter", h.Filter)
			r.Post("/summary", h.Summary)
			r.Post("/export", h.Export)
		})
	})

	return r
}

// DatasetCtx validates the dataset id path parameter
func (h *BondHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := api.DatasetRequest{DatasetID: chi.URLParam(r, "id")}
		if err := h.validator.ValidateStruct(req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoadSample handles POST /api/datasets/sample
func (h *BondHandler) LoadSample(w http.ResponseWriter, r *http.Request) {
	ds, cached, err := h.service.LoadSample(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "sample dataset loaded",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("dataset_id", ds.ID),
		slog.Bool("cached", cached))

	h.renderDataset(w, r, api.NewDatasetResponse(ds, cached))
}

// Upload handles POST /api/datasets with a multipart "file" field
func (h *BondHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.NewTooLargeError(h.maxUploadBytes))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	if err := h.validator.ValidateStruct(api.UploadRequest{FileName: header.Filename, Size: header.Size}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ds, cached, err := h.service.LoadUpload(r.Context(), header.Filename, file)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset uploaded",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("file_name", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("dataset_id", ds.ID),
		slog.Int("rows", ds.Len()),
		slog.Int("warnings", len(ds.Warnings)),
		slog.Bool("cached", cached))

	h.renderDataset(w, r, api.NewDatasetResponse(ds, cached))
}

// GetDataset handles GET /api/datasets/{id}
func (h *BondHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Dataset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(api.NewDatasetResponse(ds, true)))
}

// GetOptions handles GET /api/datasets/{id}/options
func (h *BondHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(opts))
}

// GetGroups handles GET /api/datasets/{id}/groups?by=dimension
func (h *BondHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	by, ok := h.queryValidator.ValidateEnum(w, r, "by", dimensionNames(), string(analytics.ByBondType))
	if !ok {
		return
	}

	resp, err := h.service.Groups(r.Context(), chi.URLParam(r, "id"), by)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, api.SuccessWithCount(resp, len(resp.Groups)))
}

// Filter handles POST /api/datasets/{id}/filter
func (h *BondHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req api.FilterRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Filter(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, api.SuccessWithCount(resp, resp.Matched))
}

// Summary handles POST /api/datasets/{id}/summary
func (h *BondHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req api.SummaryRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Summarize(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(resp))
}

// Export handles POST /api/datasets/{id}/export and streams a CSV attachment
func (h *BondHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if !h.decode(w, r, &req) {
		return
	}

	var buf bytes.Buffer
	result, err := h.service.Export(r.Context(), chi.URLParam(r, "id"), req, &buf)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Export-Rows", strconv.Itoa(result.Rows))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write export",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()))
	}
}

// GetBond handles GET /api/datasets/{id}/bonds/{isin}
func (h *BondHandler) GetBond(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	isin := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "isin")))
	if err := h.validator.ValidateVar("isin", isin, "required,isin"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.BondDetails(r.Context(), id, isin)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, api.SuccessWithCount(resp, len(resp.Bonds)))
}

// decode reads and validates a JSON body into v. An empty body leaves v
// at its zero value. On failure the error response is written and false
// is returned.
func (h *BondHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return false
	}
	if err := h.validator.ValidateStruct(v); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

func (h *BondHandler) renderDataset(w http.ResponseWriter, r *http.Request, resp api.DatasetResponse) {
	if !resp.Cached {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, api.Success(resp))
}

// handleServiceError maps service sentinels to API errors
func (h *BondHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrDatasetNotFound):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
	case errors.Is(err, services.ErrBondNotFound):
		h.errorHandler.HandleError(w, r, apierrors.ErrBondNotFound)
	case errors.Is(err, services.ErrUnsupportedFormat):
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedMedia)
	case errors.Is(err, services.ErrEmptyUpload):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "uploaded file is empty"))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

func dimensionNames() []string {
	names := make([]string, len(analytics.Dimensions))
	for i, d := range analytics.Dimensions {
		names[i] = string(d)
	}
	return names
}
