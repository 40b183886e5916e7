package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/model"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/money"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// One connection: SQLite has a single writer anyway, and pooled
	// connections to a :memory: DSN would each see their own database.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	url_site        TEXT NOT NULL DEFAULT '',
	url_linkedin    TEXT NOT NULL DEFAULT '',
	url_instagram   TEXT NOT NULL DEFAULT '',
	url_x           TEXT NOT NULL DEFAULT '',
	sector          TEXT NOT NULL DEFAULT '',
	employees_count INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS aum_snapshots (
	id                TEXT PRIMARY KEY,
	company_id        TEXT NOT NULL REFERENCES companies(id),
	value             REAL,
	currency          TEXT NOT NULL DEFAULT 'BRL',
	unit              TEXT NOT NULL DEFAULT '',
	raw_text          TEXT NOT NULL,
	confidence        REAL NOT NULL DEFAULT 0,
	tokens_used       INTEGER NOT NULL DEFAULT 0,
	extraction_method TEXT NOT NULL,
	source_type       TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS scrape_logs (
	id             TEXT PRIMARY KEY,
	company_id     TEXT NOT NULL,
	url            TEXT NOT NULL,
	source_type    TEXT NOT NULL,
	status         TEXT NOT NULL,
	error_message  TEXT NOT NULL DEFAULT '',
	content_length INTEGER NOT NULL DEFAULT 0,
	is_blocked     INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS api_usage (
	date         TEXT PRIMARY KEY,
	tokens_used  INTEGER NOT NULL DEFAULT 0,
	tokens_limit INTEGER NOT NULL DEFAULT 0,
	api_calls    INTEGER NOT NULL DEFAULT 0,
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_company_id ON aum_snapshots(company_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON aum_snapshots(created_at);
CREATE INDEX IF NOT EXISTS idx_scrape_logs_company_id ON scrape_logs(company_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateCompany(ctx context.Context, c model.Company) (*model.Company, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, url_site, url_linkedin, url_instagram, url_x, sector, employees_count, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.SiteURL, c.LinkedInURL, c.InstagramURL, c.XURL, c.Sector, c.EmployeeCount, c.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert company")
	}
	return &c, nil
}

func (s *SQLiteStore) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	var c model.Company
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, url_site, url_linkedin, url_instagram, url_x, sector, employees_count, created_at FROM companies WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &c.SiteURL, &c.LinkedInURL, &c.InstagramURL, &c.XURL, &c.Sector, &c.EmployeeCount, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Errorf("company not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company %s", id)
	}
	return &c, nil
}

func (s *SQLiteStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url_site, url_linkedin, url_instagram, url_x, sector, employees_count, created_at FROM companies ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.SiteURL, &c.LinkedInURL, &c.InstagramURL, &c.XURL, &c.Sector, &c.EmployeeCount, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "sqlite: list companies rows")
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap model.AumSnapshot) (*model.AumSnapshot, error) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO aum_snapshots (id, company_id, value, currency, unit, raw_text, confidence, tokens_used, extraction_method, source_type, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.CompanyID, snap.Value, string(snap.Currency), snap.Unit, snap.RawText,
		snap.Confidence, snap.TokensUsed, string(snap.Method), snap.SourceType, snap.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert snapshot")
	}
	return &snap, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, companyID string, limit int) ([]model.AumSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, value, currency, unit, raw_text, confidence, tokens_used, extraction_method, source_type, created_at FROM aum_snapshots WHERE company_id = ? ORDER BY created_at DESC, id LIMIT ?`,
		companyID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list snapshots %s", companyID)
	}
	defer rows.Close()

	var snaps []model.AumSnapshot
	for rows.Next() {
		var (
			snap             model.AumSnapshot
			currency, method string
		)
		if err := rows.Scan(
			&snap.ID, &snap.CompanyID, &snap.Value, &currency, &snap.Unit, &snap.RawText,
			&snap.Confidence, &snap.TokensUsed, &method, &snap.SourceType, &snap.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		snap.Currency = money.Currency(currency)
		snap.Method = model.ExtractionMethod(method)
		snaps = append(snaps, snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: list snapshots rows")
}

func (s *SQLiteStore) LatestSnapshots(ctx context.Context) ([]LatestAum, error) {
	companies, err := s.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]LatestAum, 0, len(companies))
	for _, c := range companies {
		snaps, err := s.ListSnapshots(ctx, c.ID, 1)
		if err != nil {
			return nil, err
		}
		la := LatestAum{Company: c}
		if len(snaps) > 0 {
			la.Snapshot = &snaps[0]
		}
		out = append(out, la)
	}
	return out, nil
}

func (s *SQLiteStore) LogScrape(ctx context.Context, entry model.ScrapeLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scrape_logs (id, company_id, url, source_type, status, error_message, content_length, is_blocked, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.CompanyID, entry.URL, entry.SourceType, entry.Status, entry.ErrorMessage, entry.ContentLength, entry.Blocked, entry.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert scrape log")
}

func (s *SQLiteStore) UpsertUsage(ctx context.Context, day model.UsageDay) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO api_usage (date, tokens_used, tokens_limit, api_calls, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (date) DO UPDATE SET
	tokens_used = excluded.tokens_used,
	tokens_limit = excluded.tokens_limit,
	api_calls = excluded.api_calls,
	updated_at = excluded.updated_at`,
		usageDateKey(day.Date), day.TokensUsed, day.TokensLimit, day.APICalls, time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: upsert usage")
}

func (s *SQLiteStore) GetUsage(ctx context.Context, date time.Time) (*model.UsageDay, error) {
	var (
		d       model.UsageDay
		dateStr string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT date, tokens_used, tokens_limit, api_calls, updated_at FROM api_usage WHERE date = ?`,
		usageDateKey(date),
	).Scan(&dateStr, &d.TokensUsed, &d.TokensLimit, &d.APICalls, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get usage")
	}

	d.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: parse usage date")
	}
	return &d, nil
}

func usageDateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
