package tasks

import (
	"context"
	"fmt"
	"time"

	"dartview/internal/cache"
	"dartview/internal/pkg/rawdoc"
	"dartview/internal/source"

	"go.uber.org/zap"
)

// Renderer turns raw reports into viewer pages, going through the render
// cache when one is set.
type Renderer struct {
	Source source.Source
	Cache  cache.Cache
	TTL    time.Duration
	Logger *zap.Logger
}

// RawReport returns the rendered page of a raw report. The second result is
// true when the page came from the cache.
func (r *Renderer) RawReport(ctx context.Context, corpCode string, rawReportID uint, overlay bool) ([]byte, bool, error) {
	key := cache.RawReportKey(corpCode, rawReportID, overlay)

	if r.Cache != nil {
		page, ok, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.logger().Warn("render cache get failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return page, true, nil
		}
	}

	raw, err := r.Source.GetRawReport(ctx, corpCode, rawReportID)
	if err != nil {
		return nil, false, err
	}

	doc, err := rawdoc.Render(raw, rawdoc.RenderOptions{Overlay: overlay})
	if err != nil {
		return nil, false, fmt.Errorf("render raw report %s/%d: %w", corpCode, rawReportID, err)
	}

	r.logger().Debug("rendered raw report",
		zap.String("corp_code", corpCode),
		zap.Uint("raw_report_id", rawReportID),
		zap.Stringer("kind", doc.Kind),
		zap.String("encoding", string(doc.Encoding)),
		zap.Int("size", len(raw)),
	)

	if r.Cache != nil {
		if err := r.Cache.Set(ctx, key, doc.HTML, r.TTL); err != nil {
			r.logger().Warn("render cache set failed", zap.String("key", key), zap.Error(err))
		}
	}

	return doc.HTML, false, nil
}

func (r *Renderer) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
