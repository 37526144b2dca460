// Package alert evaluates price alerts against live quotes.
package alert

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"StockSentinel/internal/metrics"
	"StockSentinel/internal/model"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/store"
)

// ShouldTrigger reports whether price satisfies a pending alert.
func ShouldTrigger(a model.Alert, price float64) bool {
	if a.Triggered || price <= 0 {
		return false
	}
	switch a.Condition {
	case model.ConditionAbove:
		return price >= a.TargetPrice
	case model.ConditionBelow:
		return price <= a.TargetPrice
	}
	return false
}

// Quoter looks up the latest price of one symbol.
type Quoter interface {
	Quote(ctx context.Context, symbol string) (model.Quote, error)
}

// ContactSender delivers a message to an alert's own contact.
type ContactSender interface {
	SendTo(ctx context.Context, target, text string) error
}

// CheckResult summarises one pass over the pending alerts.
type CheckResult struct {
	Checked   int           `json:"checked"`
	Triggered []model.Alert `json:"alerts"`
}

// Checker fires pending alerts whose condition is met.
type Checker struct {
	Quoter   Quoter
	Store    store.Store
	Recorder recorder.Recorder
	Notifier notifier.Notifier // broadcast channel, optional
	Contacts ContactSender     // per-alert contact channel, optional
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Check quotes every pending alert once and fires those whose condition holds.
// A symbol that cannot be quoted is skipped; it does not stop the pass.
func (c *Checker) Check(ctx context.Context) (CheckResult, error) {
	pending, err := c.Store.PendingAlerts(ctx)
	if err != nil {
		return CheckResult{}, err
	}
	res := CheckResult{Checked: len(pending), Triggered: []model.Alert{}}

	prices := make(map[string]float64)
	for _, a := range pending {
		price, ok := prices[a.Symbol]
		if !ok {
			q, err := c.Quoter.Quote(ctx, a.Symbol)
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				log.Warn().Err(err).Str("symbol", a.Symbol).Int64("alert_id", a.ID).Msg("Alert quote failed")
				prices[a.Symbol] = 0
				continue
			}
			price = q.Price
			prices[a.Symbol] = price
		}
		if !ShouldTrigger(a, price) {
			continue
		}

		now := c.now()
		if err := c.Store.MarkTriggered(ctx, a.ID, now); err != nil {
			log.Error().Err(err).Int64("alert_id", a.ID).Msg("Mark alert triggered failed")
			continue
		}
		a.Triggered = true
		a.TriggeredAt = &now
		res.Triggered = append(res.Triggered, a)
		c.Metrics.AlertTriggered()
		log.Info().
			Int64("alert_id", a.ID).
			Str("symbol", a.Symbol).
			Str("condition", string(a.Condition)).
			Float64("target", a.TargetPrice).
			Float64("price", price).
			Msg("Alert triggered")

		if c.Recorder != nil {
			if err := c.Recorder.RecordAlertTrigger(&recorder.AlertEvent{Alert: a, Price: price, At: now}); err != nil {
				log.Error().Err(err).Msg("Record alert trigger failed")
			}
		}
		c.notify(ctx, a, price)
	}
	return res, nil
}

func (c *Checker) notify(ctx context.Context, a model.Alert, price float64) {
	text := notifier.FormatAlertTriggered(a, price)
	if c.Notifier != nil {
		err := c.Notifier.Send(ctx, text)
		c.Metrics.Notification(c.Notifier.Name(), err)
		if err != nil {
			log.Error().Err(err).Int64("alert_id", a.ID).Msg("Alert notification failed")
		}
	}
	if c.Contacts != nil && a.Contact != "" {
		err := c.Contacts.SendTo(ctx, a.Contact, text)
		c.Metrics.Notification("whatsapp", err)
		if err != nil {
			log.Error().Err(err).Int64("alert_id", a.ID).Msg("Alert contact notification failed")
		}
	}
}

func (c *Checker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
