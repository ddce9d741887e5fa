package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dartview/internal/models"

	"gorm.io/gorm"
)

// DBSource reads straight from the reports database.
type DBSource struct {
	DB *gorm.DB
}

func NewDBSource(db *gorm.DB) *DBSource {
	return &DBSource{DB: db}
}

func (s *DBSource) Health(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ListCompanies returns companies that have at least one raw report
func (s *DBSource) ListCompanies(ctx context.Context, search string, limit int) ([]Company, error) {
	withReports := s.DB.Model(&models.RawReport{}).Distinct("corp_code").Select("corp_code")

	query := gorm.G[models.Company](s.DB).Where("category <> ?", "E").Where("corp_code IN (?)", withReports)

	if search != "" {
		// ILIKE is served by the pg_trgm indexes
		searchTerm := "%" + search + "%"
		query = query.Where("corp_name ILIKE ? OR corp_eng_name ILIKE ? OR corp_code ILIKE ?", searchTerm, searchTerm, searchTerm)
	}

	rows, err := query.Order("last_modified_date DESC").Limit(limit).Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get companies: %w", err)
	}

	companies := make([]Company, 0, len(rows))
	for _, row := range rows {
		companies = append(companies, Company{
			CorpCode:    row.CorpCode,
			CorpName:    row.CorpName,
			CorpEngName: row.CorpEngName,
		})
	}
	return companies, nil
}

func (s *DBSource) ListReports(ctx context.Context, corpCode string, limit int) ([]Report, error) {
	_, err := gorm.G[models.Company](s.DB).Where("corp_code = ?", corpCode).First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	var analyses []models.Analysis
	err = s.DB.WithContext(ctx).
		Model(&models.Analysis{}).
		Joins("JOIN raw_reports ON analyses.raw_report_id = raw_reports.id").
		Where("raw_reports.corp_code = ?", corpCode).
		Order("analyses.created_at DESC").
		Limit(limit).
		Find(&analyses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get company reports: %w", err)
	}

	reports := make([]Report, 0, len(analyses))
	for _, a := range analyses {
		reports = append(reports, Report{
			ID:          a.ID,
			RawReportID: a.RawReportID,
			Analysis:    a.Analysis,
			CreatedAt:   a.CreatedAt,
		})
	}
	return reports, nil
}

func (s *DBSource) GetRawReport(ctx context.Context, corpCode string, rawReportID uint) ([]byte, error) {
	rawReport, err := gorm.G[models.RawReport](s.DB).Where("corp_code = ? AND id = ?", corpCode, rawReportID).First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get raw report: %w", err)
	}
	return rawReport.BlobData, nil
}

// GetFinancials has nothing to read: financials are only served by the API.
func (s *DBSource) GetFinancials(ctx context.Context, corpCode string) (json.RawMessage, error) {
	return nil, nil
}
