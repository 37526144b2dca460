package recorder

import "StockSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ *model.ResultBundle) error { return nil }
func (n *NoopRecorder) RecordAlertTrigger(_ *AlertEvent) error     { return nil }
func (n *NoopRecorder) Close() error                               { return nil }
