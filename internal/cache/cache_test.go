package cache_test

import (
	"context"
	"os"
	"time"

	"dartview/internal/cache"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RawReportKey", func() {
	It("separates overlay and plain renders", func() {
		Expect(cache.RawReportKey("00356361", 10, true)).To(Equal("rawdoc/00356361/10/overlay"))
		Expect(cache.RawReportKey("00356361", 10, false)).To(Equal("rawdoc/00356361/10/plain"))
	})
})

var _ = Describe("MemoryCache", func() {
	var (
		ctx   context.Context
		c     *cache.MemoryCache
		clock time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		clock = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		c = cache.NewMemoryCache(2)
		c.SetClock(func() time.Time { return clock })
	})

	It("returns stored values", func() {
		Expect(c.Set(ctx, "a", []byte("1"), time.Minute)).To(Succeed())

		val, ok, err := c.Get(ctx, "a")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(string(val)).To(Equal("1"))

		_, ok, err = c.Get(ctx, "b")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("expires values", func() {
		Expect(c.Set(ctx, "a", []byte("1"), time.Minute)).To(Succeed())
		Expect(c.Set(ctx, "forever", []byte("2"), 0)).To(Succeed())

		clock = clock.Add(time.Minute)

		_, ok, _ := c.Get(ctx, "a")
		Expect(ok).To(BeFalse())
		_, ok, _ = c.Get(ctx, "forever")
		Expect(ok).To(BeTrue())
		Expect(c.Len()).To(Equal(1))
	})

	It("evicts the oldest entry when full", func() {
		Expect(c.Set(ctx, "a", []byte("1"), 0)).To(Succeed())
		Expect(c.Set(ctx, "b", []byte("2"), 0)).To(Succeed())
		Expect(c.Set(ctx, "c", []byte("3"), 0)).To(Succeed())

		Expect(c.Len()).To(Equal(2))
		_, ok, _ := c.Get(ctx, "a")
		Expect(ok).To(BeFalse())
		_, ok, _ = c.Get(ctx, "c")
		Expect(ok).To(BeTrue())
	})

	It("evicts expired entries before live ones", func() {
		Expect(c.Set(ctx, "a", []byte("1"), 0)).To(Succeed())
		Expect(c.Set(ctx, "b", []byte("2"), time.Second)).To(Succeed())
		clock = clock.Add(time.Second)
		Expect(c.Set(ctx, "c", []byte("3"), 0)).To(Succeed())

		_, ok, _ := c.Get(ctx, "a")
		Expect(ok).To(BeTrue())
		_, ok, _ = c.Get(ctx, "c")
		Expect(ok).To(BeTrue())
	})

	It("overwrites without growing", func() {
		Expect(c.Set(ctx, "a", []byte("1"), 0)).To(Succeed())
		Expect(c.Set(ctx, "a", []byte("2"), 0)).To(Succeed())
		Expect(c.Len()).To(Equal(1))

		val, _, _ := c.Get(ctx, "a")
		Expect(string(val)).To(Equal("2"))
	})
})

var _ = Describe("RedisCache", func() {
	It("round-trips values through redis", func() {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			Skip("REDIS_URL not set")
		}

		c, err := cache.NewRedisCache(redisURL)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(c.Close)

		ctx := context.Background()
		if err := c.Ping(ctx); err != nil {
			Skip("redis not available: " + err.Error())
		}

		Expect(c.Set(ctx, "test/key", []byte("value"), time.Minute)).To(Succeed())
		val, ok, err := c.Get(ctx, "test/key")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(string(val)).To(Equal("value"))

		_, ok, err = c.Get(ctx, "test/missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("rejects bad urls", func() {
		_, err := cache.NewRedisCache("not-a-url")
		Expect(err).To(HaveOccurred())
	})
})
