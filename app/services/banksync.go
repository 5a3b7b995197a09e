package services

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gyarab/2025-wt-prj-dembinny/app/database"
	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
)

// StatementRow is one incoming transfer parsed from a bank statement export.
type StatementRow struct {
	Reference      string          `json:"reference"`
	VariableSymbol string          `json:"variable_symbol"`
	Sender         string          `json:"sender"`
	Amount         decimal.Decimal `json:"amount"`
	ReceivedAt     time.Time       `json:"received_at"`
	Note           string          `json:"note"`
}

// ImportSummary reports what a statement import did.
type ImportSummary struct {
	Created     int                     `json:"created"`
	Duplicates  int                     `json:"duplicates"`
	Orphans     int                     `json:"orphans"`
	Allocated   decimal.Decimal         `json:"allocated"`
	Unallocated decimal.Decimal         `json:"unallocated"`
	Results     []*ReconciliationResult `json:"results"`
}

var statementColumns = []string{"reference", "variable_symbol", "sender", "amount", "date", "note"}

// ParseStatement reads a CSV bank statement export. The first row must be
// the header: reference,variable_symbol,sender,amount,date,note. Dates are
// YYYY-MM-DD; amounts must be positive (the class account only receives).
func ParseStatement(r io.Reader) ([]StatementRow, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read statement: %v", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("statement is empty")
	}

	header := records[0]
	if len(header) != len(statementColumns) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(statementColumns), len(header))
	}
	for i, name := range statementColumns {
		if strings.TrimSpace(strings.ToLower(header[i])) != name {
			return nil, fmt.Errorf("unexpected column %d: %q (want %q)", i+1, header[i], name)
		}
	}

	statementRows := make([]StatementRow, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2 // 1-based, after the header

		amount, err := decimal.NewFromString(strings.TrimSpace(record[3]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount %q", line, record[3])
		}
		if !amount.IsPositive() {
			return nil, fmt.Errorf("line %d: amount must be positive, got %s", line, amount)
		}

		receivedAt, err := time.Parse("2006-01-02", strings.TrimSpace(record[4]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, record[4])
		}

		statementRows = append(statementRows, StatementRow{
			Reference:      strings.TrimSpace(record[0]),
			VariableSymbol: strings.TrimSpace(record[1]),
			Sender:         strings.TrimSpace(record[2]),
			Amount:         amount,
			ReceivedAt:     receivedAt,
			Note:           strings.TrimSpace(record[5]),
		})
	}
	return statementRows, nil
}

// filterNewRows drops rows whose statement reference was already imported,
// reporting how many were skipped. Rows without a reference have no dedupe
// key and are always kept; a reference seen twice within the same export is
// dropped too.
func filterNewRows(statementRows []StatementRow, refExists func(string) (bool, error)) ([]StatementRow, int, error) {
	fresh := make([]StatementRow, 0, len(statementRows))
	duplicates := 0
	seen := map[string]bool{}
	for _, row := range statementRows {
		if row.Reference != "" {
			if seen[row.Reference] {
				duplicates++
				continue
			}
			exists, err := refExists(row.Reference)
			if err != nil {
				return nil, 0, err
			}
			if exists {
				log.Printf("Skipping duplicate statement row %s", row.Reference)
				duplicates++
				continue
			}
			seen[row.Reference] = true
		}
		fresh = append(fresh, row)
	}
	return fresh, duplicates, nil
}

// ImportStatement records the statement rows as bank transfers and runs each
// through reconciliation. Rows whose statement reference was already imported
// for this class are skipped so re-importing the same export changes nothing.
func ImportStatement(db *sql.DB, classID string, statementRows []StatementRow) (*ImportSummary, error) {
	summary := &ImportSummary{
		Allocated:   decimal.Zero,
		Unallocated: decimal.Zero,
		Results:     []*ReconciliationResult{},
	}

	fresh, duplicates, err := filterNewRows(statementRows, func(ref string) (bool, error) {
		return database.StatementRefExists(db, classID, ref)
	})
	if err != nil {
		return nil, err
	}
	summary.Duplicates = duplicates

	for _, row := range fresh {
		transfer := &models.BankTransfer{
			ClassID:        classID,
			Amount:         row.Amount,
			SenderName:     row.Sender,
			StatementRef:   row.Reference,
			VariableSymbol: row.VariableSymbol,
			ReceivedAt:     row.ReceivedAt,
			Note:           row.Note,
		}

		if row.VariableSymbol != "" {
			student, err := database.GetStudentByVariableSymbol(db, classID, row.VariableSymbol)
			if err != nil && err != sql.ErrNoRows {
				return nil, err
			}
			if student != nil {
				transfer.StudentID = &student.ID
			}
		}

		if err := database.CreateTransfer(db, transfer); err != nil {
			return nil, err
		}
		summary.Created++

		result, err := Reconcile(db, transfer.ID, ReconcileOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile transfer %s: %v", transfer.ID, err)
		}
		if result.Orphan {
			summary.Orphans++
		}
		summary.Allocated = summary.Allocated.Add(result.AllocatedTotal())
		summary.Unallocated = summary.Unallocated.Add(result.Unallocated)
		summary.Results = append(summary.Results, result)
	}

	return summary, nil
}
