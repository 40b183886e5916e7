// Package store persists companies, AUM snapshots, scrape logs and token
// usage. Postgres backs production; SQLite serves local runs and tests.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/model"
)

// LatestAum pairs a company with its most recent snapshot, if any.
type LatestAum struct {
	Company  model.Company      `json:"company"`
	Snapshot *model.AumSnapshot `json:"snapshot,omitempty"`
}

// Store defines the persistence interface for the AUM pipeline.
type Store interface {
	// Companies
	CreateCompany(ctx context.Context, c model.Company) (*model.Company, error)
	GetCompany(ctx context.Context, id string) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]model.Company, error)

	// Snapshots
	SaveSnapshot(ctx context.Context, snap model.AumSnapshot) (*model.AumSnapshot, error)
	ListSnapshots(ctx context.Context, companyID string, limit int) ([]model.AumSnapshot, error)
	LatestSnapshots(ctx context.Context) ([]LatestAum, error)

	// Scrape audit trail
	LogScrape(ctx context.Context, entry model.ScrapeLog) error

	// Token usage
	UpsertUsage(ctx context.Context, day model.UsageDay) error
	GetUsage(ctx context.Context, date time.Time) (*model.UsageDay, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Pool is the subset of pgxpool.Pool the Postgres store needs. pgxmock
// implements it, so store tests run without a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}
