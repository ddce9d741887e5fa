package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dartview/internal/browser"
	"dartview/internal/config"
	"dartview/internal/source"
	"dartview/internal/tasks"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Enqueuer is the part of asynq.Client the viewer uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type ViewerController struct {
	Source   source.Source
	Renderer *tasks.Renderer
	// Enqueuer is optional; without it nothing is prefetched.
	Enqueuer Enqueuer
	Config   *config.Config
	Logger   *zap.Logger
}

const prefetchUniqueFor = 10 * time.Minute

type suggestionsView struct {
	Companies []source.Company
	Error     string
}

// Index renders the whole screen for the selection in the query string.
func (vc *ViewerController) Index(c *gin.Context) {
	ctx := c.Request.Context()
	sel := browser.ParseSelection(c.Request.URL.Query())

	var (
		companies  []source.Company
		reports    []source.Report
		financials json.RawMessage
		g          errgroup.Group
	)

	g.Go(func() error {
		var err error
		companies, err = vc.Source.ListCompanies(ctx, "", vc.Config.CompanyLimit)
		if err != nil {
			return &loadError{what: "companies", err: err}
		}
		return nil
	})

	if sel.CorpCode != "" {
		g.Go(func() error {
			var err error
			reports, err = vc.Source.ListReports(ctx, sel.CorpCode, vc.Config.ReportLimit)
			if err != nil && !errors.Is(err, source.ErrNotFound) {
				return &loadError{what: "reports", err: err}
			}
			return nil
		})
	}

	if sel.CorpCode != "" && sel.ReportID != "" {
		g.Go(func() error {
			var err error
			financials, err = vc.Source.GetFinancials(ctx, sel.CorpCode)
			if err != nil {
				vc.Logger.Warn("failed to get financials", zap.String("corp_code", sel.CorpCode), zap.Error(err))
			}
			return nil
		})
	}

	var banner string
	if err := g.Wait(); err != nil {
		_ = c.Error(err)
		banner = vc.banner(ctx, err)
	}

	page := browser.BuildPage(browser.PageInput{
		Selection:  sel,
		Companies:  companies,
		Reports:    reports,
		Financials: financials,
		Error:      banner,
	})

	c.HTML(http.StatusOK, "page.tmpl", page)
}

// CompanySuggestions renders the combobox list for q.
func (vc *ViewerController) CompanySuggestions(c *gin.Context) {
	companies, err := vc.suggest(c)
	if err != nil {
		_ = c.Error(err)
		c.HTML(statusFor(err), "suggestions.tmpl", suggestionsView{Error: (&loadError{what: "companies", err: err}).Error()})
		return
	}

	c.HTML(http.StatusOK, "suggestions.tmpl", suggestionsView{Companies: companies})
}

// SearchCompanies is the JSON flavour of CompanySuggestions.
func (vc *ViewerController) SearchCompanies(c *gin.Context) {
	companies, err := vc.suggest(c)
	if err != nil {
		_ = c.Error(err)
		c.JSON(statusFor(err), gin.H{"error": "Failed to load companies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"companies": companies,
	})
}

func (vc *ViewerController) suggest(c *gin.Context) ([]source.Company, error) {
	query := c.Query("q")
	// the API ignores search but honours limit, so fetch the same list the
	// page shows and cut to SuggestLimit after filtering
	companies, err := vc.Source.ListCompanies(c.Request.Context(), query, vc.Config.CompanyLimit)
	if err != nil {
		return nil, err
	}
	return browser.FilterCompanies(companies, query, vc.Config.SuggestLimit), nil
}

// ReportsFragment renders the year and report selects of a company.
func (vc *ViewerController) ReportsFragment(c *gin.Context) {
	corpCode := c.Param("corp_code")

	reports, err := vc.Source.ListReports(c.Request.Context(), corpCode, vc.Config.ReportLimit)
	if err != nil {
		vc.fail(c, err, "Failed to load reports")
		return
	}

	page := browser.BuildPage(browser.PageInput{
		Selection: browser.Selection{
			CorpCode: corpCode,
			Year:     c.Query("year"),
			ReportID: c.Query("report"),
		},
		Reports: reports,
	})

	vc.prefetch(corpCode, browser.FilterByYear(reports, page.Selection.Year))

	c.HTML(http.StatusOK, "reports.tmpl", page)
}

// ReportDetails renders the analysis card and the raw viewer of one report.
func (vc *ViewerController) ReportDetails(c *gin.Context) {
	ctx := c.Request.Context()
	corpCode := c.Param("corp_code")

	reports, err := vc.Source.ListReports(ctx, corpCode, vc.Config.ReportLimit)
	if err != nil {
		vc.fail(c, err, "Failed to load reports")
		return
	}

	financials, err := vc.Source.GetFinancials(ctx, corpCode)
	if err != nil {
		vc.Logger.Warn("failed to get financials", zap.String("corp_code", corpCode), zap.Error(err))
	}

	page := browser.BuildPage(browser.PageInput{
		Selection: browser.Selection{
			CorpCode: corpCode,
			ReportID: c.Param("raw_report_id"),
			Query:    c.Query("q"),
		},
		Reports:    reports,
		Financials: financials,
	})

	status := http.StatusOK
	if page.Details == nil {
		status = http.StatusNotFound
	}
	c.HTML(status, "details.tmpl", page)
}

// RawReport serves the rendered original document for the sandboxed iframe.
func (vc *ViewerController) RawReport(c *gin.Context) {
	corpCode := c.Param("corp_code")
	rawReportID, err := strconv.ParseUint(c.Param("raw_report_id"), 10, 0)
	if err != nil || rawReportID == 0 {
		c.String(http.StatusNotFound, "Raw report not found")
		return
	}

	overlay := c.Query("overlay") != "0"

	page, cached, err := vc.Renderer.RawReport(c.Request.Context(), corpCode, uint(rawReportID), overlay)
	if err != nil {
		vc.fail(c, err, "Failed to load raw report")
		return
	}

	cacheStatus := "MISS"
	if cached {
		cacheStatus = "HIT"
	}

	c.Header("Content-Security-Policy", "sandbox allow-scripts")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Render-Cache", cacheStatus)
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// Health reports the viewer as up and whether its source answers.
func (vc *ViewerController) Health(c *gin.Context) {
	status := "UP"
	if err := vc.Source.Health(c.Request.Context()); err != nil {
		vc.Logger.Warn("source health check failed", zap.Error(err))
		status = "DOWN"
	}

	c.JSON(http.StatusOK, gin.H{"status": "UP", "source": status})
}

func (vc *ViewerController) prefetch(corpCode string, reports []source.Report) {
	if vc.Enqueuer == nil || len(reports) == 0 {
		return
	}

	ids := make([]uint, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.RawReportID)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, id := range ids {
			task, err := tasks.NewRenderRawReportTask(corpCode, id)
			if err != nil {
				vc.Logger.Error("failed to create render task", zap.Error(err))
				return
			}

			_, err = vc.Enqueuer.EnqueueContext(ctx, task, asynq.Unique(prefetchUniqueFor))
			if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
				vc.Logger.Warn("failed to enqueue render task",
					zap.String("corp_code", corpCode),
					zap.Uint("raw_report_id", id),
					zap.Error(err),
				)
			}
		}
	}()
}

func (vc *ViewerController) fail(c *gin.Context, err error, message string) {
	_ = c.Error(err)

	status := statusFor(err)
	if status == http.StatusNotFound {
		c.String(status, "Not found")
		return
	}
	c.String(status, message)
}

// banner is the message shown above the page when loading failed.
func (vc *ViewerController) banner(ctx context.Context, err error) string {
	if vc.Config.ReportSource == config.SourceAPI {
		if herr := vc.Source.Health(ctx); herr != nil {
			return fmt.Sprintf("Failed to connect to API: %v. Make sure the backend server is running on %s", herr, vc.Config.APIBaseURL)
		}
	}
	return err.Error()
}

func statusFor(err error) int {
	if errors.Is(err, source.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

type loadError struct {
	what string
	err  error
}

func (e *loadError) Error() string {
	return fmt.Sprintf("Failed to load %s: %v", e.what, e.err)
}

func (e *loadError) Unwrap() error {
	return e.err
}
