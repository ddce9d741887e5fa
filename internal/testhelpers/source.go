package testhelpers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"dartview/internal/source"
)

// FakeSource is an in-memory source.Source. A non-nil Err is returned by
// every call except Health, which uses HealthErr.
type FakeSource struct {
	Companies  []source.Company
	Reports    map[string][]source.Report
	RawReports map[string][]byte
	Financials map[string]json.RawMessage

	Err       error
	HealthErr error

	mu           sync.Mutex
	rawFetches   int
	lastSearches []string
}

func NewFakeSource() *FakeSource {
	return &FakeSource{
		Reports:    map[string][]source.Report{},
		RawReports: map[string][]byte{},
		Financials: map[string]json.RawMessage{},
	}
}

func (f *FakeSource) AddRawReport(corpCode string, rawReportID uint, raw []byte) {
	f.RawReports[rawKey(corpCode, rawReportID)] = raw
}

// RawFetches counts GetRawReport calls.
func (f *FakeSource) RawFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rawFetches
}

func (f *FakeSource) Searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lastSearches...)
}

func (f *FakeSource) Health(context.Context) error {
	return f.HealthErr
}

func (f *FakeSource) ListCompanies(_ context.Context, search string, limit int) ([]source.Company, error) {
	f.mu.Lock()
	f.lastSearches = append(f.lastSearches, search)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	companies := f.Companies
	if limit > 0 && len(companies) > limit {
		companies = companies[:limit]
	}
	return companies, nil
}

func (f *FakeSource) ListReports(_ context.Context, corpCode string, limit int) ([]source.Report, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	reports, ok := f.Reports[corpCode]
	if !ok {
		return nil, fmt.Errorf("company %s: %w", corpCode, source.ErrNotFound)
	}
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

func (f *FakeSource) GetRawReport(_ context.Context, corpCode string, rawReportID uint) ([]byte, error) {
	f.mu.Lock()
	f.rawFetches++
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	raw, ok := f.RawReports[rawKey(corpCode, rawReportID)]
	if !ok {
		return nil, fmt.Errorf("raw report %s/%d: %w", corpCode, rawReportID, source.ErrNotFound)
	}
	return raw, nil
}

func (f *FakeSource) GetFinancials(_ context.Context, corpCode string) (json.RawMessage, error) {
	return f.Financials[corpCode], nil
}

func rawKey(corpCode string, rawReportID uint) string {
	return fmt.Sprintf("%s/%d", corpCode, rawReportID)
}

var _ source.Source = (*FakeSource)(nil)
