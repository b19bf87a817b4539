package models

// BatchRow is one subject of a recomputation table.
type BatchRow struct {
	CurrentPrice float64   `json:"current_price"`
	Signals      SignalSet `json:"signals"`
	// Invalid is set when the row could not be parsed; it fails without projecting.
	Invalid string `json:"-"`
}

// RowResult is the recomputation outcome for one row.
type RowResult struct {
	Index     int     `json:"index"`
	NextPrice int64   `json:"next_price"`
	Delta     int64   `json:"delta"`
	Raw       float64 `json:"raw_next_price"`
	Err       string  `json:"error,omitempty"`
}

// OK reports whether the row was recomputed.
func (r RowResult) OK() bool { return r.Err == "" }

// BatchResult aggregates all row results in input order.
type BatchResult struct {
	Rows    []BatchRow    `json:"-"`
	Results []RowResult   `json:"results"`
	Failed  int           `json:"failed"`
	Summary []SummaryItem `json:"summary"`
}

// SummaryItem is one line of the settings log written next to batch output.
// Threshold is empty for items without a decrease condition.
type SummaryItem struct {
	Item      string `json:"item"`
	Weight    string `json:"weight"`
	Threshold string `json:"threshold"`
}

// RecomputeRequestMessage is the Kafka payload asking for a batch recomputation.
type RecomputeRequestMessage struct {
	RequestID string          `json:"request_id" validate:"required"`
	Template  TemplateRequest `json:"template"`
	Rows      []BatchRow      `json:"rows" validate:"required,min=1"`
}

// RecomputeResultMessage is one part of a published recomputation result.
// Large results are split; Offset is the input index of Results[0].
type RecomputeResultMessage struct {
	RequestID string        `json:"request_id"`
	Part      int           `json:"part"`
	Parts     int           `json:"parts"`
	Offset    int           `json:"offset"`
	Failed    int           `json:"failed"`
	Results   []RowResult   `json:"results"`
	Summary   []SummaryItem `json:"summary,omitempty"`
}
