// Package model defines the domain types shared across the AUM pipeline.
package model

import "time"

// Company is a financial company whose assets under management we track.
type Company struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SiteURL       string    `json:"url_site,omitempty"`
	LinkedInURL   string    `json:"url_linkedin,omitempty"`
	InstagramURL  string    `json:"url_instagram,omitempty"`
	XURL          string    `json:"url_x,omitempty"`
	Sector        string    `json:"sector,omitempty"`
	EmployeeCount int       `json:"employees_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Source is one scrapeable origin for a company.
type Source struct {
	URL  string `json:"url"`
	Type string `json:"type"` // "website", "linkedin", "instagram", "x"
}

// Sources returns the company's non-empty scrape targets in fixed order.
func (c Company) Sources() []Source {
	var out []Source
	for _, s := range []Source{
		{c.SiteURL, "website"},
		{c.LinkedInURL, "linkedin"},
		{c.InstagramURL, "instagram"},
		{c.XURL, "x"},
	} {
		if s.URL != "" {
			out = append(out, s)
		}
	}
	return out
}

// ScrapeLog records the outcome of fetching one source.
type ScrapeLog struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	URL           string    `json:"url"`
	SourceType    string    `json:"source_type"`
	Status        string    `json:"status"` // "success" or "failed"
	ErrorMessage  string    `json:"error_message,omitempty"`
	ContentLength int       `json:"content_length"`
	Blocked       bool      `json:"is_blocked"`
	CreatedAt     time.Time `json:"created_at"`
}

// UsageDay is a persisted snapshot of one day's token consumption.
type UsageDay struct {
	Date        time.Time `json:"date"`
	TokensUsed  int       `json:"tokens_used"`
	TokensLimit int       `json:"tokens_limit"`
	APICalls    int       `json:"api_calls"`
	UpdatedAt   time.Time `json:"updated_at"`
}
