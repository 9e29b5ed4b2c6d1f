package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bondscreen/internal/analytics"
	"bondscreen/internal/cache"
	"bondscreen/internal/config"
	"bondscreen/internal/dataprocessing"
	apperrors "bondscreen/internal/errors"
	"bondscreen/internal/exporter"
	"bondscreen/internal/filtering"
	"bondscreen/internal/infrastructure"
	api "bondscreen/pkg/contracts/api/v1"
	"bondscreen/pkg/contracts/domain"
)

// Upload formats accepted by LoadUpload
const (
	FormatXLSX = ".xlsx"
	FormatCSV  = ".csv"
)

// BondService loads bond tables and answers screening queries against them.
// Loaded datasets are shared through the cache and never mutated.
type BondService struct {
	cfg      config.DatasetConfig
	preparer *dataprocessing.Preparer
	store    *cache.DatasetCache
	writer   *exporter.BondCSVWriter
	tracer   trace.Tracer
	metrics  *infrastructure.BusinessMetrics
	now      func() time.Time
	logger   *slog.Logger
}

// BondServiceOption customizes a BondService
type BondServiceOption func(*BondService)

// WithClock pins the reference instant used for derived fields.
func WithClock(now func() time.Time) BondServiceOption {
	return func(s *BondService) { s.now = now }
}

// WithTracer sets the tracer used for service spans.
func WithTracer(tracer trace.Tracer) BondServiceOption {
	return func(s *BondService) { s.tracer = tracer }
}

// WithMetrics sets the business metrics recorder.
func WithMetrics(metrics *infrastructure.BusinessMetrics) BondServiceOption {
	return func(s *BondService) { s.metrics = metrics }
}

// NewBondService creates a bond service backed by store.
func NewBondService(cfg config.DatasetConfig, store *cache.DatasetCache, logger *slog.Logger, opts ...BondServiceOption) *BondService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &BondService{
		cfg:    cfg,
		store:  store,
		tracer: otel.Tracer(infrastructure.MeterName),
		now:    time.Now,
		logger: logger.With(slog.String("service", "bond")),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.preparer = dataprocessing.NewPreparer(dataprocessing.PreparerOptions{
		Now:                s.now,
		InflationDeduction: domain.Float(cfg.InflationDeduction),
		PercentPolicy:      cfg.Policy(),
		Logger:             logger,
	})
	s.writer = exporter.NewBondCSVWriter(logger)

	s.logger.Info("BondService initialized",
		slog.String("sheet", cfg.SheetName),
		slog.Int64("max_upload_bytes", cfg.MaxUploadBytes),
		slog.Duration("cache_ttl", cfg.CacheTTL),
		slog.String("percent_policy", string(cfg.Policy())))

	return s
}

// UploadFormat returns the normalized extension of fileName, or
// ErrUnsupportedFormat.
func UploadFormat(fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case FormatXLSX, FormatCSV:
		return ext, nil
	default:
		return "", apperrors.NewUnsupportedError(fmt.Sprintf("unsupported file type %q", ext), ErrUnsupportedFormat).
			WithContext("extension", ext)
	}
}

// LoadSample prepares the built-in bond listing.
func (s *BondService) LoadSample(ctx context.Context) (*domain.Dataset, bool, error) {
	return s.load(ctx, dataprocessing.SampleTable())
}

// LoadUpload parses an uploaded .xlsx or .csv file and prepares it. The
// second return value reports whether an identical table was already loaded.
func (s *BondService) LoadUpload(ctx context.Context, fileName string, r io.Reader) (*domain.Dataset, bool, error) {
	format, err := UploadFormat(fileName)
	if err != nil {
		return nil, false, err
	}

	limit := s.cfg.MaxUploadBytes
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, apperrors.NewParsingError("failed to read upload", err)
	}
	if int64(len(data)) > limit {
		return nil, false, apperrors.NewTooLargeError(limit)
	}
	if len(data) == 0 {
		return nil, false, ErrEmptyUpload
	}

	var table dataprocessing.RawTable
	switch format {
	case FormatXLSX:
		table, err = dataprocessing.ParseWorkbook(bytes.NewReader(data), s.cfg.SheetName)
	case FormatCSV:
		table, err = dataprocessing.ParseCSV(bytes.NewReader(data))
	}
	if err != nil {
		s.logger.WarnContext(ctx, "upload rejected",
			slog.String("file_name", fileName),
			slog.String("error", err.Error()))
		infrastructure.RecordDatasetLoad(ctx, s.metrics, strings.TrimPrefix(format, "."), nil, 0, err)
		return nil, false, translateLoadError(err)
	}

	return s.load(ctx, table)
}

// LoadFile loads a bond table from disk.
func (s *BondService) LoadFile(ctx context.Context, path string) (*domain.Dataset, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, apperrors.NewStorageError("failed to open bond file", err).WithContext("path", path)
	}
	defer f.Close()

	return s.LoadUpload(ctx, filepath.Base(path), f)
}

func (s *BondService) load(ctx context.Context, table dataprocessing.RawTable) (*domain.Dataset, bool, error) {
	ctx, span := s.tracer.Start(ctx, "BondService.load",
		trace.WithAttributes(
			attribute.String("dataset.source", table.Source),
			attribute.Int("dataset.raw_rows", len(table.Rows)),
		))
	defer span.End()

	start := time.Now()
	// the load is shared by every caller waiting on this fingerprint, so one
	// caller's cancellation must not fail the others
	loadCtx := context.WithoutCancel(ctx)
	ds, hit, err := s.store.GetOrLoad(table.Fingerprint(), func() (*domain.Dataset, error) {
		return s.preparer.Prepare(loadCtx, table)
	})
	infrastructure.RecordCacheLookup(ctx, s.metrics, hit)
	if !hit {
		infrastructure.RecordDatasetLoad(ctx, s.metrics, table.Source, ds, time.Since(start), err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, translateLoadError(err)
	}

	span.SetAttributes(
		attribute.String("dataset.id", ds.ID),
		attribute.Int("dataset.rows", ds.Len()),
		attribute.Int("dataset.warnings", len(ds.Warnings)),
		attribute.Bool("dataset.cached", hit),
	)
	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("dataset_id", ds.ID),
		slog.String("source", ds.Source),
		slog.Int("rows", ds.Len()),
		slog.Int("warnings", len(ds.Warnings)),
		slog.Bool("cached", hit),
		slog.Duration("duration", time.Since(start)))

	return ds, hit, nil
}

// translateLoadError maps preparation failures onto the application error
// taxonomy so that schema problems surface their missing columns.
func translateLoadError(err error) error {
	var schemaErr *dataprocessing.SchemaError
	if errors.As(err, &schemaErr) {
		msg := "dataset rejected"
		if schemaErr.Sheet != "" {
			msg = fmt.Sprintf("dataset rejected: sheet %q", schemaErr.Sheet)
		}
		return apperrors.NewSchemaError(msg, schemaErr.Missing, schemaErr)
	}
	return err
}

// Dataset returns a previously loaded dataset.
func (s *BondService) Dataset(ctx context.Context, id string) (*domain.Dataset, error) {
	ds, ok := s.store.Get(id)
	if !ok {
		s.logger.DebugContext(ctx, "dataset lookup missed", slog.String("dataset_id", id))
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return ds, nil
}

// Options lists the control values present in a dataset and the default
// criteria.
func (s *BondService) Options(ctx context.Context, id string) (filtering.Options, error) {
	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return filtering.Options{}, err
	}
	return filtering.BuildOptions(ds), nil
}

// Filter runs the filter pipeline and summarizes the matching rows.
func (s *BondService) Filter(ctx context.Context, id string, req api.FilterRequest) (*api.FilterResponse, error) {
	ds, view, err := s.apply(ctx, id, req.Criteria)
	if err != nil {
		return nil, err
	}

	resp := &api.FilterResponse{
		DatasetID: ds.ID,
		Total:     view.Total,
		Matched:   len(view.Records),
		Summary:   analytics.Summarize(view.Records),
		Warning:   view.Warning,
	}
	if req.WantRecords() {
		resp.Records = view.Records
	}
	return resp, nil
}

// Summarize aggregates the filtered view and groups it by each requested
// dimension.
func (s *BondService) Summarize(ctx context.Context, id string, req api.SummaryRequest) (*api.SummaryResponse, error) {
	dims := make([]analytics.Dimension, 0, len(req.GroupBy))
	for _, name := range req.GroupBy {
		dim, err := analytics.ParseDimension(name)
		if err != nil {
			return nil, apperrors.NewAppValidationError(err.Error())
		}
		dims = append(dims, dim)
	}

	ds, view, err := s.apply(ctx, id, req.Criteria)
	if err != nil {
		return nil, err
	}

	resp := &api.SummaryResponse{
		DatasetID: ds.ID,
		Total:     view.Total,
		Summary:   analytics.Summarize(view.Records),
		Warning:   view.Warning,
	}
	if len(dims) > 0 {
		resp.Groups = make(map[string][]analytics.Group, len(dims))
		for _, dim := range dims {
			groups, err := analytics.GroupBy(view.Records, dim)
			if err != nil {
				return nil, apperrors.NewAppValidationError(err.Error())
			}
			resp.Groups[string(dim)] = groups
		}
	}
	return resp, nil
}

// Groups counts every row of a dataset by one dimension.
func (s *BondService) Groups(ctx context.Context, id, by string) (*api.GroupsResponse, error) {
	dim, err := analytics.ParseDimension(by)
	if err != nil {
		return nil, apperrors.NewAppValidationError(err.Error())
	}

	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}

	groups, err := analytics.GroupBy(ds.Records, dim)
	if err != nil {
		return nil, apperrors.NewAppValidationError(err.Error())
	}
	return &api.GroupsResponse{DatasetID: ds.ID, Dimension: string(dim), Groups: groups}, nil
}

// Export writes the filtered view to w as CSV.
func (s *BondService) Export(ctx context.Context, id string, req api.ExportRequest, w io.Writer) (api.ExportResult, error) {
	if req.Columns != nil {
		if len(req.Columns) == 0 {
			return api.ExportResult{}, apperrors.NewAppValidationError("no export columns selected")
		}
		if err := exporter.ValidateColumns(req.Columns); err != nil {
			return api.ExportResult{}, apperrors.NewAppValidationError(err.Error())
		}
	}

	ds, view, err := s.apply(ctx, id, req.Criteria)
	if err != nil {
		return api.ExportResult{}, err
	}

	bom := s.cfg.ExportBOM
	if req.BOM != nil {
		bom = *req.BOM
	}

	counter := &countingWriter{w: w}
	err = s.writer.Write(counter, view.Records, exporter.WriteOptions{Columns: req.Columns, BOMPrefix: bom})
	infrastructure.RecordExport(ctx, s.metrics, len(view.Records), err)
	if err != nil {
		infrastructure.RecordSystemError(ctx, s.metrics, "exporter", err)
		return api.ExportResult{}, apperrors.NewStorageError("failed to write csv export", err)
	}

	now := s.now()
	result := api.ExportResult{
		FileName:    fmt.Sprintf("bonds_%s_%s.csv", ds.ID, now.Format("20060102")),
		ContentType: exporter.ContentType,
		Rows:        len(view.Records),
		Bytes:       counter.n,
		CreatedAt:   now,
	}

	s.logger.InfoContext(ctx, "export written",
		slog.String("dataset_id", ds.ID),
		slog.Int("rows", result.Rows),
		slog.Int64("bytes", result.Bytes),
		slog.Bool("bom", bom))

	return result, nil
}

// BondDetails returns the display card of every row carrying isin.
func (s *BondService) BondDetails(ctx context.Context, id, isin string) (*api.BondDetailsResponse, error) {
	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}

	isin = strings.ToUpper(strings.TrimSpace(isin))
	resp := &api.BondDetailsResponse{DatasetID: ds.ID, ISIN: isin}
	for _, r := range ds.Records {
		if r.ISIN == isin {
			resp.Bonds = append(resp.Bonds, analytics.Detail(r))
		}
	}
	if len(resp.Bonds) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBondNotFound, isin)
	}
	return resp, nil
}

// CacheStats reports dataset cache counters.
func (s *BondService) CacheStats() cache.Stats {
	return s.store.GetStats()
}

func (s *BondService) apply(ctx context.Context, id string, c filtering.Criteria) (*domain.Dataset, filtering.View, error) {
	if err := c.Check(); err != nil {
		return nil, filtering.View{}, apperrors.NewAppValidationError(err.Error())
	}

	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, filtering.View{}, err
	}

	_, span := s.tracer.Start(ctx, "BondService.filter",
		trace.WithAttributes(attribute.String("dataset.id", ds.ID)))
	view := filtering.Apply(ds, c)
	span.SetAttributes(
		attribute.Int("filter.total", view.Total),
		attribute.Int("filter.matched", len(view.Records)),
	)
	span.End()

	infrastructure.RecordFilterRun(ctx, s.metrics, len(view.Records), view.Warning != nil)
	if view.Warning != nil {
		s.logger.DebugContext(ctx, "filter matched no rows",
			slog.String("dataset_id", ds.ID),
			slog.Int("total", view.Total))
	}

	return ds, view, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
