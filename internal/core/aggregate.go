package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// EntryRow is the flat per-article shape shared by district and institution
// entry tables: one row per (beneficiary, article).
type EntryRow struct {
	ID                uint
	ApplicationNumber string
	BeneficiaryName   string
	ArticleID         uint
	ArticleName       string
	Quantity          int
	CostPerUnit       decimal.Decimal
	TotalAmount       decimal.Decimal
	Notes             string
	Status            string
	CreatedAt         time.Time
}

// LineItem is one article line inside a grouped beneficiary record.
type LineItem struct {
	ArticleID   uint            `json:"article_id"`
	ArticleName string          `json:"article_name"`
	Quantity    int             `json:"quantity"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	TotalValue  decimal.Decimal `json:"total_value"`
	Notes       string          `json:"notes"`
}

// BeneficiaryRecord is one logical beneficiary: all entry rows sharing an
// application number, folded into a line-item list with a computed total.
type BeneficiaryRecord struct {
	ApplicationNumber string          `json:"application_number"`
	BeneficiaryName   string          `json:"beneficiary_name"`
	Lines             []LineItem      `json:"lines"`
	TotalAccrued      decimal.Decimal `json:"total_accrued"`
	CreatedAt         time.Time       `json:"created_at"`
}

// GroupByApplicationNumber buckets flat entry rows into beneficiary records.
// Rows with a blank application number are orphaned and dropped, not an
// error. Identity fields come from the bucket's first row (rows in a bucket
// are created atomically by one save and assumed consistent). A record's
// CreatedAt is the earliest among its rows, so a later appended line does not
// make the record look newer. Output is ordered most recent first, stable
// against input order.
func GroupByApplicationNumber(rows []EntryRow) []BeneficiaryRecord {
	buckets := make(map[string]*BeneficiaryRecord)
	order := make([]string, 0)

	for _, row := range rows {
		if row.ApplicationNumber == "" {
			continue
		}
		rec, ok := buckets[row.ApplicationNumber]
		if !ok {
			rec = &BeneficiaryRecord{
				ApplicationNumber: row.ApplicationNumber,
				BeneficiaryName:   row.BeneficiaryName,
				TotalAccrued:      decimal.Zero,
				CreatedAt:         row.CreatedAt,
			}
			buckets[row.ApplicationNumber] = rec
			order = append(order, row.ApplicationNumber)
		}
		rec.Lines = append(rec.Lines, LineItem{
			ArticleID:   row.ArticleID,
			ArticleName: row.ArticleName,
			Quantity:    row.Quantity,
			CostPerUnit: row.CostPerUnit,
			TotalValue:  row.TotalAmount,
			Notes:       row.Notes,
		})
		rec.TotalAccrued = rec.TotalAccrued.Add(row.TotalAmount)
		if row.CreatedAt.Before(rec.CreatedAt) {
			rec.CreatedAt = row.CreatedAt
		}
	}

	out := make([]BeneficiaryRecord, 0, len(order))
	for _, n := range order {
		out = append(out, *buckets[n])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
