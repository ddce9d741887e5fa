package rawdoc

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// DART markup uses TU and TE for table cells.
	reDARTCell = regexp.MustCompile(`<(/?)T[UE]([\s>])`)
	reDARTRoot = regexp.MustCompile(`(?i)^(<\?xml[^>]*\?>\s*)?(<!--.*?-->\s*)*<DOCUMENT[\s>]`)
)

// DARTSummary is what inspect shows for a DART document.
type DARTSummary struct {
	DocumentName string `json:"document_name,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`
	CompanyCode  string `json:"company_code,omitempty"`
	Tables       int    `json:"tables"`
	Paragraphs   int    `json:"paragraphs"`
}

// IsDART reports whether text is DART document markup (a DOCUMENT root).
func IsDART(text string) bool {
	return reDARTRoot.MatchString(strings.TrimSpace(text))
}

// NormalizeDART rewrites DART-only cell tags so an HTML parser keeps the tables.
func NormalizeDART(text string) string {
	return reDARTCell.ReplaceAllString(text, "<${1}TD${2}")
}

func SummarizeDART(text string) (*DARTSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(NormalizeDART(text)))
	if err != nil {
		return nil, err
	}

	summary := &DARTSummary{
		DocumentName: strings.TrimSpace(doc.Find("DOCUMENT-NAME").First().Text()),
		Tables:       doc.Find("TABLE").Length(),
	}

	company := doc.Find("COMPANY-NAME").First()
	summary.CompanyName = strings.TrimSpace(company.Text())
	if code, ok := company.Attr("aregcik"); ok {
		summary.CompanyCode = code
	}

	doc.Find("P").Each(func(_ int, p *goquery.Selection) {
		if strings.TrimSpace(p.Text()) != "" {
			summary.Paragraphs++
		}
	})

	return summary, nil
}
