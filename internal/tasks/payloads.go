package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeTaskRenderRawReport = "task:render_raw_report"
)

// RenderRawReportPayload names the raw report to render into the cache.
type RenderRawReportPayload struct {
	CorpCode    string `json:"corp_code"`
	RawReportID uint   `json:"raw_report_id"`
}

// NewRenderRawReportTask creates a new task for asynq
func NewRenderRawReportTask(corpCode string, rawReportID uint) (*asynq.Task, error) {
	payload := RenderRawReportPayload{
		CorpCode:    corpCode,
		RawReportID: rawReportID,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeTaskRenderRawReport, payloadBytes), nil
}
