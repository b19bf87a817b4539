// Package tabular reads recomputation tables from CSV and writes the
// augmented result table next to the settings log.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"PriceSim/internal/domain/models"
	"PriceSim/pkg/util"
)

var ErrMissingColumns = errors.New("tabular: missing required columns")

// Table is a parsed input table. Raw cells are kept so every input column is
// echoed back unchanged in the output.
type Table struct {
	Header []string
	Layout Layout
	Raw    [][]string
	Rows   []models.BatchRow
}

// FileName returns the download name for a recomputation made at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("nextweek_prices_%s.csv", t.Format("20060102_150405"))
}

// Read parses a CSV table. Structural problems (no header, missing columns)
// fail the whole read; unparsable cells mark only their row as invalid.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("tabular: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index, layout := resolveColumns(header)
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	t := &Table{Header: header, Layout: layout}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}
		t.Raw = append(t.Raw, rec)
		t.Rows = append(t.Rows, parseRow(rec, index))
	}
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("tabular: no data rows")
	}
	return t, nil
}

func resolveColumns(header []string) (map[string]int, Layout) {
	index := make(map[string]int, len(requiredColumns))
	layout := LayoutEnglish
	for i, h := range header {
		name := strings.TrimSpace(h)
		if key, ok := japaneseInput[name]; ok {
			index[key] = i
			layout = LayoutJapanese
			continue
		}
		key := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
		if alias, ok := englishAliases[key]; ok {
			key = alias
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	return index, layout
}

func parseRow(rec []string, index map[string]int) models.BatchRow {
	var row models.BatchRow
	var bad []string
	get := func(col string) float64 {
		i := index[col]
		if i >= len(rec) {
			bad = append(bad, col)
			return 0
		}
		v, err := util.ParseFloatLoose(rec[i])
		if err != nil {
			bad = append(bad, col)
			return 0
		}
		return v
	}

	row.CurrentPrice = get(ColCurrentPrice)
	row.Signals = models.SignalSet{
		Requests:      get(ColRequests),
		CallTime:      get(ColCallTime),
		WaitingTime:   get(ColWaitingTime),
		ActiveDays:    get(ColActiveDays),
		RepeatRate:    get(ColRepeatRate),
		ApprovalRate:  get(ColApprovalRate),
		PenaltyPoints: get(ColPenaltyPoints),
	}
	if len(bad) > 0 {
		row.Invalid = "unparsable value in " + strings.Join(bad, ", ")
	}
	return row
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Write emits the input columns, the next price and delta columns (plus an
// error column when any row failed), an empty separator column and the
// settings summary side by side. Shorter parts are padded with blanks.
func Write(w io.Writer, t *Table, res *models.BatchResult) error {
	if len(res.Results) != len(t.Raw) {
		return fmt.Errorf("tabular: %d results for %d rows", len(res.Results), len(t.Raw))
	}
	h := headersByLayout[t.Layout]
	withErr := res.Failed > 0

	header := append([]string{}, t.Header...)
	header = append(header, h.NextPrice, h.Delta)
	if withErr {
		header = append(header, h.Error)
	}
	header = append(header, "", h.Item, h.Weight, h.Threshold)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	dataWidth := len(header) - 4
	n := len(t.Raw)
	if len(res.Summary) > n {
		n = len(res.Summary)
	}
	for i := 0; i < n; i++ {
		rec := make([]string, 0, len(header))
		if i < len(t.Raw) {
			rec = append(rec, pad(t.Raw[i], len(t.Header))...)
			rr := res.Results[i]
			if rr.OK() {
				rec = append(rec, strconv.FormatInt(rr.NextPrice, 10), strconv.FormatInt(rr.Delta, 10))
			} else {
				rec = append(rec, "", "")
			}
			if withErr {
				rec = append(rec, rr.Err)
			}
		} else {
			rec = append(rec, make([]string, dataWidth)...)
		}
		rec = append(rec, "")
		if i < len(res.Summary) {
			s := res.Summary[i]
			rec = append(rec, h.label(s.Item), s.Weight, s.Threshold)
		} else {
			rec = append(rec, "", "", "")
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func pad(rec []string, n int) []string {
	out := make([]string, n)
	copy(out, rec)
	return out
}
