package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dartview/internal/cache"
	"dartview/internal/tasks"
	"dartview/internal/testhelpers"

	"github.com/hibiken/asynq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const rawHTML = `<html><head><title>분기보고서</title></head><body><p onclick="x()">매출액</p><script>alert(1)</script></body></html>`

var _ = Describe("Renderer", func() {
	var (
		ctx      context.Context
		src      *testhelpers.FakeSource
		store    *cache.MemoryCache
		renderer *tasks.Renderer
	)

	BeforeEach(func() {
		ctx = context.Background()
		src = testhelpers.NewFakeSource()
		src.AddRawReport("00356361", 10, []byte(rawHTML))
		store = cache.NewMemoryCache(10)
		renderer = &tasks.Renderer{Source: src, Cache: store, TTL: time.Hour}
	})

	It("renders and caches raw reports", func() {
		page, cached, err := renderer.RawReport(ctx, "00356361", 10, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(cached).To(BeFalse())
		Expect(string(page)).To(ContainSubstring("매출액"))
		Expect(string(page)).To(ContainSubstring(`id="dv-search"`))
		Expect(string(page)).NotTo(ContainSubstring("alert(1)"))
		Expect(string(page)).NotTo(ContainSubstring("onclick"))

		again, cached, err := renderer.RawReport(ctx, "00356361", 10, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(cached).To(BeTrue())
		Expect(again).To(Equal(page))
		Expect(src.RawFetches()).To(Equal(1))
	})

	It("caches the plain render separately", func() {
		page, _, err := renderer.RawReport(ctx, "00356361", 10, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(page)).NotTo(ContainSubstring(`id="dv-search"`))

		_, ok, _ := store.Get(ctx, cache.RawReportKey("00356361", 10, false))
		Expect(ok).To(BeTrue())
		_, ok, _ = store.Get(ctx, cache.RawReportKey("00356361", 10, true))
		Expect(ok).To(BeFalse())
	})

	It("works without a cache", func() {
		renderer.Cache = nil
		_, cached, err := renderer.RawReport(ctx, "00356361", 10, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(cached).To(BeFalse())
	})

	It("passes source errors through", func() {
		_, _, err := renderer.RawReport(ctx, "00356361", 99, true)
		Expect(err).To(MatchError(ContainSubstring("not found")))
	})
})

var _ = Describe("HandleRenderRawReportTask", func() {
	var (
		ctx   context.Context
		src   *testhelpers.FakeSource
		store *cache.MemoryCache
		p     *tasks.TaskProcessor
	)

	BeforeEach(func() {
		ctx = context.Background()
		src = testhelpers.NewFakeSource()
		src.AddRawReport("00356361", 10, testhelpers.EUCKR("<html><body>반기보고서</body></html>"))
		store = cache.NewMemoryCache(10)
		p = tasks.NewTaskProcessor(&tasks.Renderer{Source: src, Cache: store, TTL: time.Hour}, nil)
	})

	It("stores both renders in the cache", func() {
		task, err := tasks.NewRenderRawReportTask("00356361", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(task.Type()).To(Equal(tasks.TypeTaskRenderRawReport))

		var payload tasks.RenderRawReportPayload
		Expect(json.Unmarshal(task.Payload(), &payload)).To(Succeed())
		Expect(payload).To(Equal(tasks.RenderRawReportPayload{CorpCode: "00356361", RawReportID: 10}))

		Expect(p.HandleRenderRawReportTask(ctx, task)).To(Succeed())
		Expect(store.Len()).To(Equal(2))

		page, ok, _ := store.Get(ctx, cache.RawReportKey("00356361", 10, true))
		Expect(ok).To(BeTrue())
		Expect(string(page)).To(ContainSubstring("반기보고서"))
	})

	It("does not retry missing reports", func() {
		task, err := tasks.NewRenderRawReportTask("00356361", 11)
		Expect(err).NotTo(HaveOccurred())

		err = p.HandleRenderRawReportTask(ctx, task)
		Expect(errors.Is(err, asynq.SkipRetry)).To(BeTrue())
		Expect(store.Len()).To(Equal(0))
	})

	It("retries source failures", func() {
		src.Err = errors.New("connection refused")
		task, err := tasks.NewRenderRawReportTask("00356361", 10)
		Expect(err).NotTo(HaveOccurred())

		err = p.HandleRenderRawReportTask(ctx, task)
		Expect(err).To(MatchError(ContainSubstring("connection refused")))
		Expect(errors.Is(err, asynq.SkipRetry)).To(BeFalse())
	})

	It("rejects bad payloads", func() {
		err := p.HandleRenderRawReportTask(ctx, asynq.NewTask(tasks.TypeTaskRenderRawReport, []byte("{")))
		Expect(errors.Is(err, asynq.SkipRetry)).To(BeTrue())

		err = p.HandleRenderRawReportTask(ctx, asynq.NewTask(tasks.TypeTaskRenderRawReport, []byte(`{"corp_code":"00356361"}`)))
		Expect(errors.Is(err, asynq.SkipRetry)).To(BeTrue())
	})
})
