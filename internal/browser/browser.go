// Package browser holds the state of the report screen: which company, year
// and report are selected and what the dropdowns and the details card show.
package browser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"dartview/internal/source"

	"golang.org/x/text/cases"
)

const DateLayout = "2006-01-02"

// Selection is the screen state carried in the query string.
type Selection struct {
	CorpCode string
	Year     string
	ReportID string
	Query    string
}

func ParseSelection(q url.Values) Selection {
	return Selection{
		CorpCode: strings.TrimSpace(q.Get("corp_code")),
		Year:     strings.TrimSpace(q.Get("year")),
		ReportID: strings.TrimSpace(q.Get("report")),
		Query:    strings.TrimSpace(q.Get("q")),
	}
}

// Values is the inverse of ParseSelection; empty fields are left out.
func (s Selection) Values() url.Values {
	q := url.Values{}
	if s.CorpCode != "" {
		q.Set("corp_code", s.CorpCode)
	}
	if s.Year != "" {
		q.Set("year", s.Year)
	}
	if s.ReportID != "" {
		q.Set("report", s.ReportID)
	}
	if s.Query != "" {
		q.Set("q", s.Query)
	}
	return q
}

// FilterCompanies is the combobox filter: a caseless substring match on the
// name, the English name and the corp code.
func FilterCompanies(companies []source.Company, query string, limit int) []source.Company {
	needle := cases.Fold().String(strings.TrimSpace(query))

	out := []source.Company{}
	for _, c := range companies {
		if limit > 0 && len(out) >= limit {
			break
		}

		if needle == "" || matches(needle, c.CorpName, c.CorpEngName, c.CorpCode) {
			out = append(out, c)
		}
	}
	return out
}

func matches(needle string, fields ...string) bool {
	fold := cases.Fold()
	for _, f := range fields {
		if f != "" && strings.Contains(fold.String(f), needle) {
			return true
		}
	}
	return false
}

func FindCompany(companies []source.Company, corpCode string) (source.Company, bool) {
	for _, c := range companies {
		if c.CorpCode == corpCode {
			return c, true
		}
	}
	return source.Company{}, false
}

// ReportYears lists the distinct years of dated reports, newest first.
func ReportYears(reports []source.Report) []string {
	seen := map[string]bool{}
	years := []string{}
	for _, r := range reports {
		if !r.HasDate() {
			continue
		}
		year := strconv.Itoa(r.CreatedAt.Year())
		if !seen[year] {
			seen[year] = true
			years = append(years, year)
		}
	}

	slices.Sort(years)
	slices.Reverse(years)
	return years
}

// FilterByYear keeps the reports created in year. Undated reports only
// survive when no year is selected.
func FilterByYear(reports []source.Report, year string) []source.Report {
	if year == "" {
		return reports
	}

	out := []source.Report{}
	for _, r := range reports {
		if r.HasDate() && strconv.Itoa(r.CreatedAt.Year()) == year {
			out = append(out, r)
		}
	}
	return out
}

func ReportLabel(r source.Report) string {
	label := fmt.Sprintf("Report %d", r.RawReportID)
	if r.HasDate() {
		label += " - " + r.CreatedAt.Format(DateLayout)
	}
	return label
}

func FindReport(reports []source.Report, rawReportID string) (source.Report, bool) {
	for _, r := range reports {
		if strconv.FormatUint(uint64(r.RawReportID), 10) == rawReportID {
			return r, true
		}
	}
	return source.Report{}, false
}

// FormatAnalysis pretty prints an analysis record. Some producers store the
// JSON as a JSON string; those are unwrapped first. It returns false when
// there is nothing to show.
func FormatAnalysis(raw json.RawMessage) (string, bool) {
	data := bytes.TrimSpace(raw)
	switch string(data) {
	case "", "null", "false", "0":
		return "", false
	}

	var s string
	if json.Unmarshal(data, &s) == nil {
		if strings.TrimSpace(s) == "" {
			return "", false
		}
		if !json.Valid([]byte(s)) {
			return s, true
		}
		data = []byte(s)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return string(raw), true
	}
	return out.String(), true
}

// RawURL is where the sandboxed viewer loads the document from.
func RawURL(corpCode string, rawReportID uint, query string) string {
	u := fmt.Sprintf("/companies/%s/reports/%d/raw", url.PathEscape(corpCode), rawReportID)
	if query != "" {
		u += "?" + url.Values{"q": {query}}.Encode()
	}
	return u
}
