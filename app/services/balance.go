package services

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// FundSummary is the class fund state derived on demand: every recorded
// transfer counts as collected, every published expense as spent. There is
// deliberately no stored running total to drift away from the ledger.
type FundSummary struct {
	Collected decimal.Decimal `json:"collected"`
	Spent     decimal.Decimal `json:"spent"`
	Balance   decimal.Decimal `json:"balance"`
}

// Summarize aggregates transfer and published-expense amounts. Pure and
// order-independent.
func Summarize(transfers, publishedExpenses []decimal.Decimal) FundSummary {
	collected := decimal.Zero
	for _, amount := range transfers {
		collected = collected.Add(amount)
	}
	spent := decimal.Zero
	for _, amount := range publishedExpenses {
		spent = spent.Add(amount)
	}
	return FundSummary{
		Collected: collected,
		Spent:     spent,
		Balance:   collected.Sub(spent),
	}
}

// ComputeBalance recomputes the fund summary for one class from the ledger.
func ComputeBalance(db *sql.DB, classID string) (FundSummary, error) {
	transfers, err := amountColumn(db,
		`SELECT amount FROM bank_transfers WHERE class_id = $1`, classID)
	if err != nil {
		return FundSummary{}, err
	}

	expenses, err := amountColumn(db,
		`SELECT amount FROM expenses WHERE class_id = $1 AND is_published = true`, classID)
	if err != nil {
		return FundSummary{}, err
	}

	return Summarize(transfers, expenses), nil
}

func amountColumn(db *sql.DB, query string, args ...interface{}) ([]decimal.Decimal, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	amounts := []decimal.Decimal{}
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return nil, err
		}
		amounts = append(amounts, amount)
	}
	return amounts, rows.Err()
}
