package source_test

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"dartview/internal/db"
	"dartview/internal/models"
	"dartview/internal/source"
	"dartview/internal/testhelpers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("DBSource", func() {
	var (
		dbConn *gorm.DB
		src    *source.DBSource
		ctx    context.Context
	)

	BeforeEach(func() {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			Skip("DATABASE_URL is not set")
		}

		var err error
		dbConn, err = db.InitDB(dsn, nil)
		if err != nil {
			Skip("database not available: " + err.Error())
		}

		testhelpers.CleanupDB(dbConn)
		src = source.NewDBSource(dbConn)
		ctx = context.Background()
	})

	Describe("ListCompanies", func() {
		BeforeEach(func() {
			testhelpers.CreateCompany(dbConn, ctx, &models.Company{CorpCode: "10000001", CorpName: "테스트전기", CorpEngName: "Electric Eng", Category: "Y"})
			testhelpers.CreateCompany(dbConn, ctx, &models.Company{CorpCode: "10000002", CorpName: "테스트화학", CorpEngName: "Chemical Eng", Category: "K",
				LastModifiedDate: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)})
			testhelpers.CreateCompany(dbConn, ctx, &models.Company{CorpCode: "10000003", CorpName: "보고서없음", Category: "Y"})
			testhelpers.CreateCompany(dbConn, ctx, &models.Company{CorpCode: "10000004", CorpName: "기타법인", Category: "E"})

			for _, code := range []string{"10000001", "10000002", "10000004"} {
				testhelpers.CreateRawReport(dbConn, ctx, &models.RawReport{ReceiptNumber: "2025" + code, CorpCode: code, BlobData: []byte("doc"), BlobSize: 3})
			}
		})

		It("returns companies with reports, newest first", func() {
			companies, err := src.ListCompanies(ctx, "", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(companies).To(HaveLen(2))
			Expect(companies[0].CorpCode).To(Equal("10000002"))
		})

		It("filters by korean or english name", func() {
			companies, err := src.ListCompanies(ctx, "화", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(companies).To(HaveLen(1))
			Expect(companies[0].CorpName).To(Equal("테스트화학"))

			companies, err = src.ListCompanies(ctx, "elec", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(companies).To(HaveLen(1))
			Expect(companies[0].CorpName).To(Equal("테스트전기"))
		})

		It("filters by corp code", func() {
			companies, err := src.ListCompanies(ctx, "0000002", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(companies).To(HaveLen(1))
			Expect(companies[0].CorpCode).To(Equal("10000002"))

			companies, err = src.ListCompanies(ctx, "10000003", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(companies).To(BeEmpty())
		})
	})

	Describe("ListReports and GetRawReport", func() {
		var rawReport *models.RawReport

		BeforeEach(func() {
			testhelpers.CreateCompany(dbConn, ctx, &models.Company{CorpCode: "10000001", CorpName: "Company A", Category: "Y"})
			rawReport = testhelpers.CreateRawReport(dbConn, ctx, &models.RawReport{ReceiptNumber: "20251123000001", CorpCode: "10000001", BlobData: []byte("<html>doc1</html>"), BlobSize: 17})
			testhelpers.CreateAnalysis(dbConn, ctx, &models.Analysis{RawReportID: rawReport.ID, Analysis: json.RawMessage(`{"summary":"a"}`)})
		})

		It("returns the analyses of the company", func() {
			reports, err := src.ListReports(ctx, "10000001", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].RawReportID).To(Equal(rawReport.ID))
			Expect(reports[0].Analysis).To(MatchJSON(`{"summary":"a"}`))
			Expect(reports[0].HasDate()).To(BeTrue())
		})

		It("returns ErrNotFound for unknown companies", func() {
			_, err := src.ListReports(ctx, "99999999", 10)
			Expect(err).To(MatchError(source.ErrNotFound))
		})

		It("returns the raw blob", func() {
			blob, err := src.GetRawReport(ctx, "10000001", rawReport.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(blob)).To(Equal("<html>doc1</html>"))

			_, err = src.GetRawReport(ctx, "10000002", rawReport.ID)
			Expect(err).To(MatchError(source.ErrNotFound))
		})
	})
})
