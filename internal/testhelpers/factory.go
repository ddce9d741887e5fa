package testhelpers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dartview/internal/models"

	g "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func CleanupDB(db *gorm.DB) {
	var dbName string
	if err := db.Raw("SELECT current_database()").Scan(&dbName).Error; err != nil {
		panic(fmt.Sprintf("failed to get current database name: %v", err))
	}

	// refuse to truncate anything but a test database
	if !strings.HasSuffix(dbName, "_test") {
		panic(fmt.Sprintf("database name '%s' does not end with _test, skipping cleanup to prevent data loss", dbName))
	}

	var tables []string

	err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error
	g.Expect(err).NotTo(g.HaveOccurred())

	for _, table := range tables {
		if table == "spatial_ref_sys" || table == "schema_migrations" {
			continue
		}

		query := fmt.Sprintf("TRUNCATE TABLE \"%s\" RESTART IDENTITY CASCADE", table)
		err := db.Exec(query).Error
		g.Expect(err).NotTo(g.HaveOccurred(), "Failed to truncate table: "+table)
	}
}

func CreateCompany(db *gorm.DB, ctx context.Context, company *models.Company) *models.Company {
	if company.CorpEngName == "" {
		company.CorpEngName = company.CorpName + " Eng"
	}

	if company.LastModifiedDate.IsZero() {
		company.LastModifiedDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	result := gorm.WithResult()
	g.Expect(gorm.G[models.Company](db, result).Create(ctx, company)).To(g.Succeed())
	g.Expect(result.RowsAffected).To(g.Equal(int64(1)))
	return company
}

func CreateRawReport(db *gorm.DB, ctx context.Context, rawReport *models.RawReport) *models.RawReport {
	result := gorm.WithResult()
	g.Expect(gorm.G[models.RawReport](db, result).Create(ctx, rawReport)).To(g.Succeed())
	g.Expect(result.RowsAffected).To(g.Equal(int64(1)))
	return rawReport
}

func CreateAnalysis(db *gorm.DB, ctx context.Context, analysis *models.Analysis) *models.Analysis {
	result := gorm.WithResult()
	g.Expect(gorm.G[models.Analysis](db, result).Create(ctx, analysis)).To(g.Succeed())
	g.Expect(result.RowsAffected).To(g.Equal(int64(1)))
	return analysis
}
