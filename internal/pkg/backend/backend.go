// Package backend talks to the reports REST API.
package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dartview/internal/source"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const apiVersion = "/api/v1"

// The API has gone through a few serializations of the same records.
var (
	corpCodeKeys    = []string{"CorpCode", "corp_code", "corpCode", "id"}
	corpNameKeys    = []string{"CorpName", "corp_name", "corpName", "name"}
	corpEngNameKeys = []string{"CorpEngName", "corp_name_eng", "corp_eng_name", "corpEngName"}
	idKeys          = []string{"ID", "id"}
	rawReportIDKeys = []string{"RawReportID", "raw_report_id", "rawReportId"}
	createdAtKeys   = []string{"CreatedAt", "created_at", "createdAt"}
	analysisKeys    = []string{"Analysis", "analysis"}
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"20060102",
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// StatusError is a non-2xx answer from the API. Body is kept for logging.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("backend"),
	}
}

// UseDefaultClient switches to http.DefaultClient so tests can swap its transport.
func (c *Client) UseDefaultClient() {
	c.client = http.DefaultClient
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Health(ctx context.Context) error {
	body, err := c.get(ctx, "/health", nil)
	if err != nil {
		return err
	}

	if status := gjson.GetBytes(body, "status").String(); status != "UP" {
		return fmt.Errorf("backend status is %q", status)
	}
	return nil
}

func (c *Client) ListCompanies(ctx context.Context, search string, limit int) ([]source.Company, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, apiVersion+"/companies", q)
	if err != nil {
		return nil, err
	}

	companies := []source.Company{}
	for _, item := range listOf(body, "companies") {
		code := first(item, corpCodeKeys...).String()
		if code == "" {
			continue
		}

		name := first(item, corpNameKeys...).String()
		if name == "" {
			name = "Company " + code
		}

		companies = append(companies, source.Company{
			CorpCode:    code,
			CorpName:    name,
			CorpEngName: first(item, corpEngNameKeys...).String(),
		})
	}
	return companies, nil
}

func (c *Client) ListReports(ctx context.Context, corpCode string, limit int) ([]source.Report, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, apiVersion+"/reports/"+url.PathEscape(corpCode), q)
	if err != nil {
		return nil, err
	}

	reports := []source.Report{}
	for _, item := range listOf(body, "reports") {
		report := source.Report{
			ID:          uint(first(item, idKeys...).Uint()),
			RawReportID: uint(first(item, rawReportIDKeys...).Uint()),
			CreatedAt:   parseDate(first(item, createdAtKeys...).String()),
		}

		if analysis := first(item, analysisKeys...); analysis.Exists() {
			report.Analysis = json.RawMessage(analysis.Raw)
		}

		reports = append(reports, report)
	}
	return reports, nil
}

// GetRawReport returns the stored document bytes. The API sends them base64
// encoded; older deployments sent the text itself.
func (c *Client) GetRawReport(ctx context.Context, corpCode string, rawReportID uint) ([]byte, error) {
	path := fmt.Sprintf("%s/reports/%s/%d", apiVersion, url.PathEscape(corpCode), rawReportID)
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	field := gjson.GetBytes(body, "raw_report")
	if !field.Exists() {
		return nil, fmt.Errorf("raw report response has no raw_report field")
	}

	encoded := field.String()
	if decoded, err := base64.StdEncoding.DecodeString(encoded); err == nil {
		return decoded, nil
	}
	return []byte(encoded), nil
}

// GetFinancials never fails the caller; the screen renders without financials.
func (c *Client) GetFinancials(ctx context.Context, corpCode string) (json.RawMessage, error) {
	if corpCode == "" {
		return nil, nil
	}

	body, err := c.get(ctx, apiVersion+"/financials", url.Values{"corp_code": {corpCode}})
	if err != nil {
		c.logger.Warn("failed to load financials", zap.String("corp_code", corpCode), zap.Error(err))
		return nil, nil
	}

	if !gjson.ValidBytes(body) {
		c.logger.Warn("financials response is not json", zap.String("corp_code", corpCode))
		return nil, nil
	}
	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", path, source.ErrNotFound)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("api request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", gjson.GetBytes(body, "error").String()),
		)
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: string(body),
		}
	}

	c.logger.Debug("api request", zap.String("path", path), zap.Int("bytes", len(body)))
	return body, nil
}

// listOf accepts both a bare array and an object wrapping the array under key.
func listOf(body []byte, key string) []gjson.Result {
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return root.Array()
	}
	return root.Get(key).Array()
}

func first(item gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if v := item.Get(key); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

var _ source.Source = (*Client)(nil)
