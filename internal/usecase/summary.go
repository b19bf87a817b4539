package usecase

import (
	"github.com/shopspring/decimal"

	"PriceSim/internal/domain/models"
)

// Summary item keys, in report order.
const (
	ItemRequests         = "requests"
	ItemCallTime         = "call_time"
	ItemWaitingTime      = "waiting_time"
	ItemActiveDays       = "active_days"
	ItemRepeatRate       = "repeat_rate"
	ItemApprovalRate     = "approval_rate"
	ItemPenaltyPoints    = "penalty_points"
	ItemAdjustmentFactor = "adjustment_factor"
)

// BuildSummary renders the settings log: one line per signal weight plus the
// adjustment factor. Items without a decrease condition get a blank threshold.
func BuildSummary(t models.Template) []models.SummaryItem {
	w, th := t.Weights, t.Thresholds
	return []models.SummaryItem{
		{Item: ItemRequests, Weight: formatNumber(w.Requests)},
		{Item: ItemCallTime, Weight: formatNumber(w.CallTime), Threshold: formatNumber(th.CallTime)},
		{Item: ItemWaitingTime, Weight: formatNumber(w.WaitingTime), Threshold: formatNumber(th.WaitingTime)},
		{Item: ItemActiveDays, Weight: formatNumber(w.ActiveDays), Threshold: formatNumber(th.ActiveDays)},
		{Item: ItemRepeatRate, Weight: formatNumber(w.RepeatRate)},
		{Item: ItemApprovalRate, Weight: formatNumber(w.ApprovalRate), Threshold: formatNumber(th.ApprovalRate)},
		{Item: ItemPenaltyPoints, Weight: formatNumber(w.PenaltyPoints), Threshold: formatNumber(th.PenaltyPoints)},
		{Item: ItemAdjustmentFactor, Weight: formatNumber(t.AdjustmentFactor)},
	}
}

// formatNumber prints the shortest decimal form ("0.15", "180", "-0.8").
func formatNumber(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// RoundHalfEven rounds like Python's round(): ties go to the even neighbour.
func RoundHalfEven(v float64) int64 {
	return decimal.NewFromFloat(v).RoundBank(0).IntPart()
}
