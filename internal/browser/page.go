package browser

import (
	"encoding/json"
	"slices"
	"strconv"

	"dartview/internal/source"
)

const (
	SelectCompany   = "Select a company"
	NoCompanies     = "No companies available"
	SelectReport    = "Select a report"
	NoReports       = "No reports available"
	AllYears        = "All Years"
	NoReportDetails = "No report details available"
	NoAnalysis      = "No analysis available"
)

type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Select is one dropdown of the screen.
type Select struct {
	Placeholder string
	Options     []Option
	Disabled    bool
}

type Details struct {
	CorpCode    string
	RawReportID uint
	Label       string
	Date        string
	Analysis    string
	HasAnalysis bool
	Financials  string
	RawURL      string
}

type Page struct {
	Selection   Selection
	CompanyName string
	Companies   Select
	Years       Select
	Reports     Select
	Details     *Details
	// DetailsEmpty is shown instead of Details when a report is selected but unknown.
	DetailsEmpty string
	Error        string
}

type PageInput struct {
	Selection  Selection
	Companies  []source.Company
	Reports    []source.Report
	Financials json.RawMessage
	Error      string
}

func BuildPage(in PageInput) Page {
	sel := in.Selection

	page := Page{
		Error:     in.Error,
		Companies: CompanySelect(in.Companies, sel.CorpCode),
	}

	if c, ok := FindCompany(in.Companies, sel.CorpCode); ok {
		page.CompanyName = c.CorpName
	}

	if sel.CorpCode == "" {
		sel.Year, sel.ReportID = "", ""
	}

	years := ReportYears(in.Reports)
	if sel.Year != "" && !slices.Contains(years, sel.Year) {
		sel.Year = ""
	}

	page.Years = YearSelect(years, sel.Year)
	page.Reports = ReportSelect(sel.CorpCode != "", FilterByYear(in.Reports, sel.Year), sel.ReportID)

	if sel.ReportID != "" {
		if r, ok := FindReport(in.Reports, sel.ReportID); ok {
			page.Details = NewDetails(sel.CorpCode, r, in.Financials, sel.Query)
		} else {
			page.DetailsEmpty = NoReportDetails
		}
	}

	page.Selection = sel
	return page
}

func CompanySelect(companies []source.Company, selected string) Select {
	if len(companies) == 0 {
		return Select{Placeholder: NoCompanies, Disabled: true}
	}

	s := Select{Placeholder: SelectCompany}
	for _, c := range companies {
		s.Options = append(s.Options, Option{
			Value:    c.CorpCode,
			Label:    c.CorpName,
			Selected: c.CorpCode == selected,
		})
	}
	return s
}

func YearSelect(years []string, selected string) Select {
	s := Select{Placeholder: AllYears}
	for _, y := range years {
		s.Options = append(s.Options, Option{Value: y, Label: y, Selected: y == selected})
	}
	return s
}

// ReportSelect lists reports once a company is picked.
func ReportSelect(companySelected bool, reports []source.Report, selected string) Select {
	if !companySelected {
		return Select{Placeholder: SelectReport, Disabled: true}
	}
	if len(reports) == 0 {
		return Select{Placeholder: NoReports, Disabled: true}
	}

	s := Select{Placeholder: SelectReport}
	for _, r := range reports {
		id := strconv.FormatUint(uint64(r.RawReportID), 10)
		s.Options = append(s.Options, Option{
			Value:    id,
			Label:    ReportLabel(r),
			Selected: id == selected,
		})
	}
	return s
}

func NewDetails(corpCode string, r source.Report, financials json.RawMessage, query string) *Details {
	d := &Details{
		CorpCode:    corpCode,
		RawReportID: r.RawReportID,
		Label:       ReportLabel(r),
		RawURL:      RawURL(corpCode, r.RawReportID, query),
	}

	if r.HasDate() {
		d.Date = r.CreatedAt.Format(DateLayout)
	}

	d.Analysis, d.HasAnalysis = FormatAnalysis(r.Analysis)
	d.Financials, _ = FormatAnalysis(financials)
	return d
}
