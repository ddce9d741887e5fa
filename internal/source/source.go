// Package source defines what the report browser reads and where it reads it from.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type Company struct {
	CorpCode    string `json:"corp_code"`
	CorpName    string `json:"corp_name"`
	CorpEngName string `json:"corp_name_eng,omitempty"`
}

// Report is an analysis record together with the id of the raw report it was made from.
type Report struct {
	ID          uint            `json:"id"`
	RawReportID uint            `json:"raw_report_id"`
	Analysis    json.RawMessage `json:"analysis,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// HasDate reports whether CreatedAt holds a real timestamp.
func (r Report) HasDate() bool {
	return !r.CreatedAt.IsZero()
}

type Source interface {
	Health(ctx context.Context) error
	ListCompanies(ctx context.Context, search string, limit int) ([]Company, error)
	ListReports(ctx context.Context, corpCode string, limit int) ([]Report, error)
	GetRawReport(ctx context.Context, corpCode string, rawReportID uint) ([]byte, error)
	GetFinancials(ctx context.Context, corpCode string) (json.RawMessage, error)
}
