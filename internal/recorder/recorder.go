package recorder

import (
	"time"

	"StockSentinel/internal/model"
)

// AlertEvent records one fired price alert.
type AlertEvent struct {
	Alert model.Alert
	Price float64
	At    time.Time
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordAnalysis(b *model.ResultBundle) error
	RecordAlertTrigger(evt *AlertEvent) error
	Close() error
}
