package model

import (
	"fmt"
	"time"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/money"
)

// NotAvailable is the sentinel stored in RawText when no AUM figure was found.
// It matches the answer the LLM is instructed to give for missing data, so
// extraction output and model responses share one vocabulary.
const NotAvailable = "NAO_DISPONIVEL"

// ExtractionMethod identifies which strategy produced an AUM figure.
type ExtractionMethod string

const (
	MethodLLM           ExtractionMethod = "llm"
	MethodRegexFallback ExtractionMethod = "regex_fallback"
	MethodNone          ExtractionMethod = "none"
	MethodError         ExtractionMethod = "error"
)

// AumExtraction is the canonical result of one extraction attempt. Every
// strategy (LLM, regex fallback) populates this same shape.
//
// Invariants: RawText is never empty — it holds the literal source text, the
// NotAvailable sentinel, or an error marker. Value is nil whenever RawText is
// the sentinel or an error marker, and Confidence is 0 whenever Value is nil.
type AumExtraction struct {
	Value      *float64         `json:"value,omitempty"`
	Currency   money.Currency   `json:"currency"`
	Unit       string           `json:"unit,omitempty"`
	RawText    string           `json:"raw_text"`
	Confidence float64          `json:"confidence"`
	TokensUsed int              `json:"tokens_used"`
	Method     ExtractionMethod `json:"extraction_method"`
}

// HasValue reports whether the extraction carries a usable figure.
func (a AumExtraction) HasValue() bool {
	return a.Value != nil
}

// EmptyExtraction returns the canonical "nothing found" result.
func EmptyExtraction() AumExtraction {
	return AumExtraction{
		Currency: money.BRL,
		RawText:  NotAvailable,
		Method:   MethodNone,
	}
}

// ErrorExtraction returns the canonical result for a failed extraction whose
// error could not be recovered into a value. The message is preserved in
// RawText for auditing.
func ErrorExtraction(msg string) AumExtraction {
	return AumExtraction{
		Currency: money.BRL,
		RawText:  fmt.Sprintf("ERRO: %s", msg),
		Method:   MethodError,
	}
}

// AumSnapshot is a persisted extraction result for one company and source.
type AumSnapshot struct {
	ID         string           `json:"id"`
	CompanyID  string           `json:"company_id"`
	Value      *float64         `json:"value,omitempty"`
	Currency   money.Currency   `json:"currency"`
	Unit       string           `json:"unit,omitempty"`
	RawText    string           `json:"raw_text"`
	Confidence float64          `json:"confidence"`
	TokensUsed int              `json:"tokens_used"`
	Method     ExtractionMethod `json:"extraction_method"`
	SourceType string           `json:"source_type,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Snapshot builds an AumSnapshot from an extraction result.
func (a AumExtraction) Snapshot(companyID, sourceType string) AumSnapshot {
	return AumSnapshot{
		CompanyID:  companyID,
		Value:      a.Value,
		Currency:   a.Currency,
		Unit:       a.Unit,
		RawText:    a.RawText,
		Confidence: a.Confidence,
		TokensUsed: a.TokensUsed,
		Method:     a.Method,
		SourceType: sourceType,
	}
}
