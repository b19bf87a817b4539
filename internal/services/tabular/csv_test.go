package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"PriceSim/internal/domain/models"
)

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	if got := FileName(ts); got != "nextweek_prices_20240309_140507.csv" {
		t.Fatalf("unexpected file name %s", got)
	}
}

func TestReadJapaneseHeaders(t *testing.T) {
	in := "\ufeff名前,今週の価格,リクエスト数,通話時間,待機時間,アクティブ日数,リピート率,ペナルティ点数,承認率\n" +
		"A,1000,20,500,1500,4,0.5,0,0.85\n" +
		"\n" +
		"B,1200,x,500,1500,4,0.5,0,0.85\n"
	tbl, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Layout != LayoutJapanese {
		t.Fatalf("expected japanese layout")
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows (blank skipped), got %d", len(tbl.Rows))
	}
	r := tbl.Rows[0]
	if r.CurrentPrice != 1000 || r.Signals.Requests != 20 || r.Signals.ApprovalRate != 0.85 || r.Invalid != "" {
		t.Fatalf("unexpected first row %+v", r)
	}
	if tbl.Rows[1].Invalid == "" || !strings.Contains(tbl.Rows[1].Invalid, ColRequests) {
		t.Fatalf("expected second row to be invalid, got %+v", tbl.Rows[1])
	}
	if tbl.Header[0] != "名前" {
		t.Fatalf("expected BOM to be stripped, got %q", tbl.Header[0])
	}
}

func TestReadEnglishAliases(t *testing.T) {
	in := "Price,Requests,Call Time,Waiting Time,Active Days,Repeat Rate,Penalty Points,Approval Rate\n" +
		"\"1,500\",10,100,200,3,50%,1,0.9\n"
	tbl, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Layout != LayoutEnglish {
		t.Fatalf("expected english layout")
	}
	r := tbl.Rows[0]
	if r.CurrentPrice != 1500 || r.Signals.RepeatRate != 0.5 || r.Signals.CallTime != 100 {
		t.Fatalf("unexpected row %+v", r)
	}
}

func TestReadMissingColumns(t *testing.T) {
	_, err := Read(strings.NewReader("current_price,requests\n1000,20\n"))
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
	if !strings.Contains(err.Error(), ColApprovalRate) {
		t.Fatalf("expected missing column list, got %v", err)
	}
	if _, err := Read(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestWriteLayout(t *testing.T) {
	tbl := &Table{
		Header: []string{"id", "current_price"},
		Layout: LayoutEnglish,
		Raw:    [][]string{{"a", "1000"}, {"b", "0"}},
	}
	res := &models.BatchResult{
		Results: []models.RowResult{
			{Index: 0, NextPrice: 1088, Delta: 88},
			{Index: 1, Err: "invalid parameter starting_price: must be a positive number"},
		},
		Failed: 1,
		Summary: []models.SummaryItem{
			{Item: "requests", Weight: "0.5"},
			{Item: "call_time", Weight: "0.5", Threshold: "1500"},
			{Item: "adjustment_factor", Weight: "0.15"},
		},
	}
	var buf bytes.Buffer
	if err := Write(&buf, tbl, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	want := [][]string{
		{"id", "current_price", "next_price", "delta", "error", "", "item", "weight", "decrease_threshold"},
		{"a", "1000", "1088", "88", "", "", "requests", "0.5", ""},
		{"b", "0", "", "", "invalid parameter starting_price: must be a positive number", "", "call_time", "0.5", "1500"},
		{"", "", "", "", "", "", "adjustment_factor", "0.15", ""},
	}
	if len(recs) != len(want) {
		t.Fatalf("expected %d records, got %d: %v", len(want), len(recs), recs)
	}
	for i := range want {
		if strings.Join(recs[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("record %d:\n got %q\nwant %q", i, recs[i], want[i])
		}
	}
}

func TestWriteJapaneseLabels(t *testing.T) {
	tbl := &Table{Header: []string{"今週の価格"}, Layout: LayoutJapanese, Raw: [][]string{{"1000"}}}
	res := &models.BatchResult{
		Results: []models.RowResult{{NextPrice: 1088, Delta: 88}},
		Summary: []models.SummaryItem{{Item: "adjustment_factor", Weight: "0.15"}},
	}
	var buf bytes.Buffer
	if err := Write(&buf, tbl, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, s := range []string{"次週価格", "増減金額", "項目名", "調整係数"} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in output:\n%s", s, out)
		}
	}
	if strings.Contains(out, "エラー") {
		t.Errorf("error column must be omitted when nothing failed")
	}
}

func TestWriteResultCountMismatch(t *testing.T) {
	tbl := &Table{Header: []string{"x"}, Raw: [][]string{{"1"}, {"2"}}}
	if err := Write(&bytes.Buffer{}, tbl, &models.BatchResult{}); err == nil {
		t.Fatalf("expected mismatch error")
	}
}
