package tabular

// Layout selects the header language of a table.
type Layout int

const (
	LayoutEnglish Layout = iota
	LayoutJapanese
)

// Canonical input column keys.
const (
	ColCurrentPrice  = "current_price"
	ColRequests      = "requests"
	ColCallTime      = "call_time"
	ColWaitingTime   = "waiting_time"
	ColActiveDays    = "active_days"
	ColRepeatRate    = "repeat_rate"
	ColPenaltyPoints = "penalty_points"
	ColApprovalRate  = "approval_rate"
)

// requiredColumns lists every input column a row needs.
var requiredColumns = []string{
	ColCurrentPrice, ColRequests, ColCallTime, ColWaitingTime,
	ColActiveDays, ColRepeatRate, ColPenaltyPoints, ColApprovalRate,
}

var japaneseInput = map[string]string{
	"今週の価格":   ColCurrentPrice,
	"リクエスト数":  ColRequests,
	"通話時間":    ColCallTime,
	"待機時間":    ColWaitingTime,
	"アクティブ日数": ColActiveDays,
	"リピート率":   ColRepeatRate,
	"ペナルティ点数": ColPenaltyPoints,
	"承認率":     ColApprovalRate,
}

var englishAliases = map[string]string{
	"price":       ColCurrentPrice,
	"this_week":   ColCurrentPrice,
	"request":     ColRequests,
	"call_min":    ColCallTime,
	"waiting_min": ColWaitingTime,
	"penalty":     ColPenaltyPoints,
}

type outputHeaders struct {
	NextPrice, Delta, Error string
	Item, Weight, Threshold string
	itemLabels              map[string]string
}

var headersByLayout = map[Layout]outputHeaders{
	LayoutEnglish: {
		NextPrice: "next_price", Delta: "delta", Error: "error",
		Item: "item", Weight: "weight", Threshold: "decrease_threshold",
	},
	LayoutJapanese: {
		NextPrice: "次週価格", Delta: "増減金額", Error: "エラー",
		Item: "項目名", Weight: "重み", Threshold: "減少閾値",
		itemLabels: map[string]string{
			"requests":          "リクエスト数",
			"call_time":         "通話時間",
			"waiting_time":      "待機時間",
			"active_days":       "アクティブ日数",
			"repeat_rate":       "リピート率",
			"approval_rate":     "承認率",
			"penalty_points":    "ペナルティ点数",
			"adjustment_factor": "調整係数",
		},
	},
}

func (h outputHeaders) label(item string) string {
	if l, ok := h.itemLabels[item]; ok {
		return l
	}
	return item
}
