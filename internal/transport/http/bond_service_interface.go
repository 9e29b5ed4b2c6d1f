package http

import (
	"context"
	"io"

	"bondscreen/internal/filtering"
	api "bondscreen/pkg/contracts/api/v1"
	"bondscreen/pkg/contracts/domain"
)

// BondServiceInterface defines the interface for bond screening operations
type BondServiceInterface interface {
	LoadSample(ctx context.Context) (*domain.Dataset, bool, error)
	LoadUpload(ctx context.Context, fileName string, r io.Reader) (*domain.Dataset, bool, error)
	Dataset(ctx context.Context, id string) (*domain.Dataset, error)
	Options(ctx context.Context, id string) (filtering.Options, error)

	// Screening
	Filter(ctx context.Context, id string, req api.FilterRequest) (*api.FilterResponse, error)
	Summarize(ctx context.Context, id string, req api.SummaryRequest) (*api.SummaryResponse, error)
	Groups(ctx context.Context, id, by string) (*api.GroupsResponse, error)
	Export(ctx context.Context, id string, req api.ExportRequest, w io.Writer) (api.ExportResult, error)
	BondDetails(ctx context.Context, id, isin string) (*api.BondDetailsResponse, error)
}
