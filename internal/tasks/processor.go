package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dartview/internal/source"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TaskProcessor holds dependencies for our task handlers
type TaskProcessor struct {
	renderer *Renderer
	logger   *zap.Logger
}

// NewTaskProcessor creates a new TaskProcessor
func NewTaskProcessor(renderer *Renderer, logger *zap.Logger) *TaskProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskProcessor{
		renderer: renderer,
		logger:   logger,
	}
}

// HandleRenderRawReportTask renders both variants of a raw report so the
// viewer finds them in the cache.
func (p *TaskProcessor) HandleRenderRawReportTask(ctx context.Context, t *asynq.Task) error {
	var payload RenderRawReportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	if payload.CorpCode == "" || payload.RawReportID == 0 {
		return fmt.Errorf("incomplete payload %+v: %w", payload, asynq.SkipRetry)
	}

	log := p.logger.With(zap.String("corp_code", payload.CorpCode), zap.Uint("raw_report_id", payload.RawReportID))

	for _, overlay := range []bool{true, false} {
		_, cached, err := p.renderer.RawReport(ctx, payload.CorpCode, payload.RawReportID, overlay)
		if errors.Is(err, source.ErrNotFound) {
			log.Info("raw report not found, skipping")
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		if err != nil {
			log.Error("failed to render raw report", zap.Bool("overlay", overlay), zap.Error(err))
			return err
		}
		if cached {
			log.Debug("raw report already cached", zap.Bool("overlay", overlay))
		}
	}

	log.Info("raw report rendered")
	return nil
}
