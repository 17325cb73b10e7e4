package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func entryRow(appNo, name string, total string, createdAt time.Time) EntryRow {
	return EntryRow{
		ApplicationNumber: appNo,
		BeneficiaryName:   name,
		ArticleName:       "Rice",
		Quantity:          1,
		CostPerUnit:       dec(total),
		TotalAmount:       dec(total),
		CreatedAt:         createdAt,
	}
}

func TestGroupByApplicationNumber_Buckets(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []EntryRow{
		entryRow("D1", "Chennai", "2000", base),
		entryRow("D1", "Chennai", "5000", base.Add(time.Hour)),
		entryRow("D2", "Madurai", "1500", base.Add(2*time.Hour)),
	}

	records := GroupByApplicationNumber(rows)

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// most recent record first
	if records[0].ApplicationNumber != "D2" {
		t.Errorf("records[0] = %s, want D2 (newest first)", records[0].ApplicationNumber)
	}

	d1 := records[1]
	if len(d1.Lines) != 2 {
		t.Errorf("D1 has %d lines, want 2", len(d1.Lines))
	}
	if !d1.TotalAccrued.Equal(dec("7000")) {
		t.Errorf("D1 total = %s, want 7000", d1.TotalAccrued)
	}
	// record timestamp is the earliest row, so an appended line does not
	// make the record look newer
	if !d1.CreatedAt.Equal(base) {
		t.Errorf("D1 created_at = %v, want %v", d1.CreatedAt, base)
	}
}

func TestGroupByApplicationNumber_DropsOrphans(t *testing.T) {
	rows := []EntryRow{
		entryRow("", "orphan", "999", time.Now()),
		entryRow("D1", "Chennai", "2000", time.Now()),
	}

	records := GroupByApplicationNumber(rows)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (blank application numbers dropped)", len(records))
	}
	if records[0].ApplicationNumber != "D1" {
		t.Errorf("kept record = %s, want D1", records[0].ApplicationNumber)
	}
}

func TestGroupByApplicationNumber_PreservesTotalMass(t *testing.T) {
	base := time.Now()
	rows := []EntryRow{
		entryRow("A", "x", "10.50", base),
		entryRow("A", "x", "0.01", base),
		entryRow("B", "y", "99.99", base),
		entryRow("C", "z", "1000", base),
		entryRow("C", "z", "2000", base),
		entryRow("C", "z", "3000", base),
	}

	inputSum := decimal.Zero
	for _, r := range rows {
		inputSum = inputSum.Add(r.TotalAmount)
	}

	outputSum := decimal.Zero
	for _, rec := range GroupByApplicationNumber(rows) {
		outputSum = outputSum.Add(rec.TotalAccrued)
	}

	if !inputSum.Equal(outputSum) {
		t.Errorf("grouping changed total mass: in %s, out %s", inputSum, outputSum)
	}
}

func TestGroupByApplicationNumber_StableTies(t *testing.T) {
	same := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []EntryRow{
		entryRow("A", "first", "1", same),
		entryRow("B", "second", "2", same),
		entryRow("C", "third", "3", same),
	}

	records := GroupByApplicationNumber(rows)
	want := []string{"A", "B", "C"}
	for i, w := range want {
		if records[i].ApplicationNumber != w {
			t.Errorf("records[%d] = %s, want %s (ties keep input order)", i, records[i].ApplicationNumber, w)
		}
	}
}
