package database

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
)

// TransferWithDetails is a bank transfer with its matched student's name and
// derived allocation figures.
type TransferWithDetails struct {
	models.BankTransfer
	StudentName string          `json:"student_name,omitempty"`
	Allocated   decimal.Decimal `json:"allocated"`
	Unallocated decimal.Decimal `json:"unallocated"`
}

// CreateTransfer records a transfer. Reconciliation runs separately so the
// record exists even when matching fails halfway.
func CreateTransfer(db *sql.DB, t *models.BankTransfer) error {
	query := `INSERT INTO bank_transfers
			  (class_id, student_id, amount, sender_name, statement_ref, variable_symbol, received_at, note, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			  RETURNING id, created_at`
	return db.QueryRow(query,
		t.ClassID, t.StudentID, t.Amount, t.SenderName, t.StatementRef,
		t.VariableSymbol, t.ReceivedAt, t.Note,
	).Scan(&t.ID, &t.CreatedAt)
}

// StatementRefExists reports whether a statement row with this reference was
// already imported for the class. Used for duplicate detection on import.
func StatementRefExists(db *sql.DB, classID, statementRef string) (bool, error) {
	var exists bool
	err := db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM bank_transfers WHERE class_id = $1 AND statement_ref = $2)`,
		classID, statementRef,
	).Scan(&exists)
	return exists, err
}

func scanTransferRows(rows *sql.Rows) ([]*TransferWithDetails, error) {
	transfers := []*TransferWithDetails{}
	for rows.Next() {
		t := &TransferWithDetails{}
		var firstName, lastName sql.NullString
		err := rows.Scan(
			&t.ID, &t.ClassID, &t.StudentID, &t.Amount, &t.SenderName, &t.StatementRef,
			&t.VariableSymbol, &t.ReceivedAt, &t.Note, &t.NeedsReview, &t.ProcessedAt, &t.CreatedAt,
			&t.Allocated,
			&firstName, &lastName,
		)
		if err != nil {
			return nil, err
		}
		if firstName.Valid && lastName.Valid {
			t.StudentName = firstName.String + " " + lastName.String
		}
		t.Unallocated = t.Amount.Sub(t.Allocated)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

const transferSelect = `SELECT bt.id, bt.class_id, bt.student_id, bt.amount, bt.sender_name, bt.statement_ref,
		bt.variable_symbol, bt.received_at, bt.note, bt.needs_review, bt.processed_at, bt.created_at,
		COALESCE((SELECT SUM(amount) FROM transfer_allocations WHERE transfer_id = bt.id), 0),
		u.first_name, u.last_name
		FROM bank_transfers bt
		LEFT JOIN student_profiles sp ON bt.student_id = sp.id
		LEFT JOIN users u ON sp.user_id = u.id`

func GetClassTransfers(db *sql.DB, classID string) ([]*TransferWithDetails, error) {
	rows, err := db.Query(transferSelect+`
		WHERE bt.class_id = $1
		ORDER BY bt.received_at DESC`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransferRows(rows)
}

// GetTransfersNeedingReview lists orphan transfers and transfers left with
// unallocated credit, for the treasurer's review queue.
func GetTransfersNeedingReview(db *sql.DB, classID string) ([]*TransferWithDetails, error) {
	rows, err := db.Query(transferSelect+`
		WHERE bt.class_id = $1 AND bt.needs_review = true
		ORDER BY bt.received_at ASC`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransferRows(rows)
}

// GetStudentTransfers lists a student's own transfers, newest first.
func GetStudentTransfers(db *sql.DB, studentID string, limit int) ([]*TransferWithDetails, error) {
	rows, err := db.Query(transferSelect+`
		WHERE bt.student_id = $1
		ORDER BY bt.received_at DESC
		LIMIT $2`, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransferRows(rows)
}

// GetTransferByID loads one transfer with its allocations and the titles of
// the requests they cover.
func GetTransferByID(db *sql.DB, classID, transferID string) (*TransferWithDetails, error) {
	row := db.QueryRow(transferSelect+`
		WHERE bt.id = $1 AND bt.class_id = $2`, transferID, classID)

	t := &TransferWithDetails{}
	var firstName, lastName sql.NullString
	err := row.Scan(
		&t.ID, &t.ClassID, &t.StudentID, &t.Amount, &t.SenderName, &t.StatementRef,
		&t.VariableSymbol, &t.ReceivedAt, &t.Note, &t.NeedsReview, &t.ProcessedAt, &t.CreatedAt,
		&t.Allocated,
		&firstName, &lastName,
	)
	if err != nil {
		return nil, err
	}
	if firstName.Valid && lastName.Valid {
		t.StudentName = firstName.String + " " + lastName.String
	}
	t.Unallocated = t.Amount.Sub(t.Allocated)

	allocQuery := `SELECT ta.id, ta.transfer_id, ta.request_id, ta.amount, ta.created_at,
				   pr.id, pr.title, pr.amount
				   FROM transfer_allocations ta
				   JOIN payment_requests pr ON ta.request_id = pr.id
				   WHERE ta.transfer_id = $1
				   ORDER BY ta.created_at ASC`
	rows, err := db.Query(allocQuery, transferID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a := &models.TransferAllocation{Request: &models.PaymentRequest{}}
		err := rows.Scan(
			&a.ID, &a.TransferID, &a.RequestID, &a.Amount, &a.CreatedAt,
			&a.Request.ID, &a.Request.Title, &a.Request.Amount,
		)
		if err != nil {
			return nil, err
		}
		t.BankTransfer.Allocations = append(t.BankTransfer.Allocations, a)
	}
	return t, rows.Err()
}
