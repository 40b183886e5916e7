package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/model"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/money"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hottest store operations.
var preparedStatements = map[string]string{
	"insert_company":    `INSERT INTO companies (id, name, url_site, url_linkedin, url_instagram, url_x, sector, employees_count, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
	"get_company":       `SELECT id, name, url_site, url_linkedin, url_instagram, url_x, sector, employees_count, created_at FROM companies WHERE id = $1`,
	"insert_snapshot":   `INSERT INTO aum_snapshots (id, company_id, value, currency, unit, raw_text, confidence, tokens_used, extraction_method, source_type, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
	"insert_scrape_log": `INSERT INTO scrape_logs (id, company_id, url, source_type, status, error_message, content_length, is_blocked, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Tests pass a pgxmock pool here.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	url_site        TEXT NOT NULL DEFAULT '',
	url_linkedin    TEXT NOT NULL DEFAULT '',
	url_instagram   TEXT NOT NULL DEFAULT '',
	url_x           TEXT NOT NULL DEFAULT '',
	sector          TEXT NOT NULL DEFAULT '',
	employees_count INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS aum_snapshots (
	id                TEXT PRIMARY KEY,
	company_id        TEXT NOT NULL REFERENCES companies(id),
	value             DOUBLE PRECISION,
	currency          TEXT NOT NULL DEFAULT 'BRL',
	unit              TEXT NOT NULL DEFAULT '',
	raw_text          TEXT NOT NULL,
	confidence        DOUBLE PRECISION NOT NULL DEFAULT 0,
	tokens_used       INTEGER NOT NULL DEFAULT 0,
	extraction_method TEXT NOT NULL,
	source_type       TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scrape_logs (
	id             TEXT PRIMARY KEY,
	company_id     TEXT NOT NULL,
	url            TEXT NOT NULL,
	source_type    TEXT NOT NULL,
	status         TEXT NOT NULL,
	error_message  TEXT NOT NULL DEFAULT '',
	content_length INTEGER NOT NULL DEFAULT 0,
	is_blocked     BOOLEAN NOT NULL DEFAULT false,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS api_usage (
	date         DATE PRIMARY KEY,
	tokens_used  INTEGER NOT NULL DEFAULT 0,
	tokens_limit INTEGER NOT NULL DEFAULT 0,
	api_calls    INTEGER NOT NULL DEFAULT 0,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_snapshots_company_id ON aum_snapshots(company_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON aum_snapshots(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_scrape_logs_company_id ON scrape_logs(company_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateCompany(ctx context.Context, c model.Company) (*model.Company, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO companies (id, name, url_site, url_linkedin, url_instagram, url_x, sector, employees_count, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.SiteURL, c.LinkedInURL, c.InstagramURL, c.XURL, c.Sector, c.EmployeeCount, c.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert company")
	}
	return &c, nil
}

func (s *PostgresStore) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	var c model.Company
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, url_site, url_linkedin, url_instagram, url_x, sector, employees_count, created_at FROM companies WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.SiteURL, &c.LinkedInURL, &c.InstagramURL, &c.XURL, &c.Sector, &c.EmployeeCount, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("company not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %s", id)
	}
	return &c, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, url_site, url_linkedin, url_instagram, url_x, sector, employees_count, created_at FROM companies ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.SiteURL, &c.LinkedInURL, &c.InstagramURL, &c.XURL, &c.Sector, &c.EmployeeCount, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "postgres: list companies rows")
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap model.AumSnapshot) (*model.AumSnapshot, error) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO aum_snapshots (id, company_id, value, currency, unit, raw_text, confidence, tokens_used, extraction_method, source_type, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		snap.ID, snap.CompanyID, snap.Value, string(snap.Currency), snap.Unit, snap.RawText,
		snap.Confidence, snap.TokensUsed, string(snap.Method), snap.SourceType, snap.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert snapshot")
	}
	return &snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, companyID string, limit int) ([]model.AumSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, value, currency, unit, raw_text, confidence, tokens_used, extraction_method, source_type, created_at FROM aum_snapshots WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list snapshots %s", companyID)
	}
	defer rows.Close()

	var snaps []model.AumSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, eris.Wrap(rows.Err(), "postgres: list snapshots rows")
}

func (s *PostgresStore) LatestSnapshots(ctx context.Context) ([]LatestAum, error) {
	rows, err := s.pool.Query(ctx, `
SELECT c.id, c.name, c.url_site, c.url_linkedin, c.url_instagram, c.url_x, c.sector, c.employees_count, c.created_at,
       s.id, s.company_id, s.value, s.currency, s.unit, s.raw_text, s.confidence, s.tokens_used, s.extraction_method, s.source_type, s.created_at
FROM companies c
LEFT JOIN LATERAL (
	SELECT * FROM aum_snapshots WHERE company_id = c.id ORDER BY created_at DESC LIMIT 1
) s ON true
ORDER BY c.name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest snapshots")
	}
	defer rows.Close()

	var out []LatestAum
	for rows.Next() {
		var (
			c                                                                  model.Company
			snapID, snapCompanyID, currency, unit, rawText, method, sourceType *string
			value, confidence                                                  *float64
			tokensUsed                                                         *int
			snapCreatedAt                                                      *time.Time
		)
		if err := rows.Scan(
			&c.ID, &c.Name, &c.SiteURL, &c.LinkedInURL, &c.InstagramURL, &c.XURL, &c.Sector, &c.EmployeeCount, &c.CreatedAt,
			&snapID, &snapCompanyID, &value, &currency, &unit, &rawText, &confidence, &tokensUsed, &method, &sourceType, &snapCreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan latest snapshot")
		}

		la := LatestAum{Company: c}
		if snapID != nil {
			la.Snapshot = &model.AumSnapshot{
				ID:         *snapID,
				CompanyID:  *snapCompanyID,
				Value:      value,
				Currency:   money.Currency(*currency),
				Unit:       *unit,
				RawText:    *rawText,
				Confidence: *confidence,
				TokensUsed: *tokensUsed,
				Method:     model.ExtractionMethod(*method),
				SourceType: *sourceType,
				CreatedAt:  *snapCreatedAt,
			}
		}
		out = append(out, la)
	}
	return out, eris.Wrap(rows.Err(), "postgres: latest snapshots rows")
}

func (s *PostgresStore) LogScrape(ctx context.Context, entry model.ScrapeLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO scrape_logs (id, company_id, url, source_type, status, error_message, content_length, is_blocked, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.CompanyID, entry.URL, entry.SourceType, entry.Status, entry.ErrorMessage, entry.ContentLength, entry.Blocked, entry.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert scrape log")
}

func (s *PostgresStore) UpsertUsage(ctx context.Context, day model.UsageDay) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO api_usage (date, tokens_used, tokens_limit, api_calls, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (date) DO UPDATE SET
	tokens_used = EXCLUDED.tokens_used,
	tokens_limit = EXCLUDED.tokens_limit,
	api_calls = EXCLUDED.api_calls,
	updated_at = EXCLUDED.updated_at`,
		day.Date.UTC().Format("2006-01-02"), day.TokensUsed, day.TokensLimit, day.APICalls, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: upsert usage")
}

func (s *PostgresStore) GetUsage(ctx context.Context, date time.Time) (*model.UsageDay, error) {
	// The column is a DATE; bind the UTC day key rather than a timestamp so
	// the comparison never depends on the session time zone.
	var d model.UsageDay
	err := s.pool.QueryRow(ctx,
		`SELECT date, tokens_used, tokens_limit, api_calls, updated_at FROM api_usage WHERE date = $1::date`,
		date.UTC().Format("2006-01-02"),
	).Scan(&d.Date, &d.TokensUsed, &d.TokensLimit, &d.APICalls, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get usage")
	}
	return &d, nil
}

// scanSnapshot reads one aum_snapshots row.
func scanSnapshot(rows pgx.Rows) (model.AumSnapshot, error) {
	var (
		snap             model.AumSnapshot
		currency, method string
	)
	if err := rows.Scan(
		&snap.ID, &snap.CompanyID, &snap.Value, &currency, &snap.Unit, &snap.RawText,
		&snap.Confidence, &snap.TokensUsed, &method, &snap.SourceType, &snap.CreatedAt,
	); err != nil {
		return model.AumSnapshot{}, eris.Wrap(err, "postgres: scan snapshot")
	}
	snap.Currency = money.Currency(currency)
	snap.Method = model.ExtractionMethod(method)
	return snap, nil
}
