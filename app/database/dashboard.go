package database

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
)

// TreasurerStudentRow summarises one student for the treasurer dashboard:
// what they paid in total and what they still owe across their requests.
type TreasurerStudentRow struct {
	Student      *models.StudentProfile `json:"student"`
	PaidTotal    decimal.Decimal        `json:"paid_total"`
	OwedTotal    decimal.Decimal        `json:"owed_total"`
	SettledCount int                    `json:"settled_count"`
	PartialCount int                    `json:"partial_count"`
	PendingCount int                    `json:"pending_count"`
}

// GetTreasurerStudentRows computes the per-student summary the same way the
// dashboard's per-request view does: settlement is derived from allocation
// rows, never read from stored state.
func GetTreasurerStudentRows(db *sql.DB, classID string) ([]*TreasurerStudentRow, error) {
	students, err := GetClassStudents(db, classID)
	if err != nil {
		return nil, err
	}

	requests, err := GetClassRequests(db, classID, false)
	if err != nil {
		return nil, err
	}

	// student -> request -> allocated amount
	allocated := map[string]map[string]decimal.Decimal{}
	rows, err := db.Query(`
		SELECT bt.student_id, ta.request_id, SUM(ta.amount)
		FROM transfer_allocations ta
		JOIN bank_transfers bt ON bt.id = ta.transfer_id
		WHERE bt.class_id = $1 AND bt.student_id IS NOT NULL
		GROUP BY bt.student_id, ta.request_id`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var studentID, requestID string
		var amount decimal.Decimal
		if err := rows.Scan(&studentID, &requestID, &amount); err != nil {
			return nil, err
		}
		if allocated[studentID] == nil {
			allocated[studentID] = map[string]decimal.Decimal{}
		}
		allocated[studentID][requestID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	paid := map[string]decimal.Decimal{}
	paidRows, err := db.Query(`
		SELECT student_id, SUM(amount)
		FROM bank_transfers
		WHERE class_id = $1 AND student_id IS NOT NULL
		GROUP BY student_id`, classID)
	if err != nil {
		return nil, err
	}
	defer paidRows.Close()
	for paidRows.Next() {
		var studentID string
		var amount decimal.Decimal
		if err := paidRows.Scan(&studentID, &amount); err != nil {
			return nil, err
		}
		paid[studentID] = amount
	}
	if err := paidRows.Err(); err != nil {
		return nil, err
	}

	result := []*TreasurerStudentRow{}
	for _, student := range students {
		row := &TreasurerStudentRow{
			Student:   student,
			PaidTotal: paid[student.ID],
			OwedTotal: decimal.Zero,
		}
		for _, pr := range requests {
			if !pr.AppliesTo(student.ID) {
				continue
			}
			covered := allocated[student.ID][pr.PaymentRequest.ID]
			outstanding := pr.Amount.Sub(covered)
			if outstanding.IsNegative() {
				outstanding = decimal.Zero
			}
			row.OwedTotal = row.OwedTotal.Add(outstanding)
			switch deriveStatus(covered, pr.Amount) {
			case models.SettlementSettled:
				row.SettledCount++
			case models.SettlementPartial:
				row.PartialCount++
			default:
				row.PendingCount++
			}
		}
		result = append(result, row)
	}
	return result, nil
}
