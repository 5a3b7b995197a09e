package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrTransferNotFound  = errors.New("bank transfer not found")
	ErrRequestNotFound   = errors.New("payment request not found for this student")
	ErrDuplicateTransfer = errors.New("bank transfer already processed")
	ErrAmountMismatch    = errors.New("amount exceeds the request's outstanding balance")
	ErrRequestVoided     = errors.New("payment request is voided")
	ErrNoCredit          = errors.New("amount exceeds the transfer's unallocated credit")
	ErrOrphanTransfer    = errors.New("transfer is not matched to a student")
	ErrAlreadyMatched    = errors.New("transfer is already matched to a student")
	ErrNotProcessed      = errors.New("transfer has not been reconciled yet")
	ErrStudentNotFound   = errors.New("student is not in this class")
)

// ReconcileOptions controls how a single transfer is applied.
type ReconcileOptions struct {
	// TargetRequestID applies the transfer to one request only instead of
	// the oldest-first automatic walk.
	TargetRequestID string
	// AllowOverpayment lets a manually targeted transfer exceed the
	// request's outstanding balance. The excess becomes unallocated credit;
	// allocations never exceed the requested amount.
	AllowOverpayment bool
}

// PlannedAllocation is one request covered (fully or partly) by a transfer.
type PlannedAllocation struct {
	RequestID string          `json:"request_id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
}

// ReconciliationResult reports what a reconciliation run did.
type ReconciliationResult struct {
	TransferID  string              `json:"transfer_id"`
	StudentID   string              `json:"student_id,omitempty"`
	Orphan      bool                `json:"orphan"`
	Allocations []PlannedAllocation `json:"allocations"`
	Unallocated decimal.Decimal     `json:"unallocated"`
}

// AllocatedTotal sums the amounts applied to requests by this run.
func (r *ReconciliationResult) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// outstandingRequest is a request with the balance one student still owes on
// it, loaded inside the reconciliation transaction.
type outstandingRequest struct {
	ID          string
	Title       string
	Outstanding decimal.Decimal
}

// planAllocations walks the student's outstanding requests oldest-first and
// applies the transfer amount across them until exhausted. The remainder is
// unallocated credit. Never allocates more than a request's outstanding
// balance.
func planAllocations(amount decimal.Decimal, outstanding []outstandingRequest) ([]PlannedAllocation, decimal.Decimal) {
	remaining := amount
	plan := []PlannedAllocation{}
	for _, o := range outstanding {
		if !remaining.IsPositive() {
			break
		}
		if !o.Outstanding.IsPositive() {
			continue
		}
		alloc := decimal.Min(remaining, o.Outstanding)
		plan = append(plan, PlannedAllocation{RequestID: o.ID, Title: o.Title, Amount: alloc})
		remaining = remaining.Sub(alloc)
	}
	return plan, remaining
}

// reconcileGate checks a transfer's preconditions before any allocation is
// planned. A processed transfer is never touched again, and a manual target
// cannot be applied to a transfer with no matched student: the caller must
// assign a student first.
func reconcileGate(processed, hasStudent bool, targetRequestID string) error {
	if processed {
		return ErrDuplicateTransfer
	}
	if !hasStudent && targetRequestID != "" {
		return ErrOrphanTransfer
	}
	return nil
}

// allocateManual applies an amount against a single request's outstanding
// balance. Without the overpayment flag an amount above the balance is
// rejected; with it, the excess is returned as credit.
func allocateManual(amount, outstanding decimal.Decimal, allowOverpayment bool) (alloc, credit decimal.Decimal, err error) {
	if amount.GreaterThan(outstanding) && !allowOverpayment {
		return decimal.Zero, decimal.Zero, ErrAmountMismatch
	}
	alloc = decimal.Min(amount, outstanding)
	return alloc, amount.Sub(alloc), nil
}

// Reconcile matches one recorded bank transfer against the sender's
// outstanding payment requests and writes the resulting allocations. The
// whole run happens inside a single transaction; the processed flag is set
// atomically with the allocations so re-processing the same transfer is
// always a rejected no-op.
func Reconcile(db *sql.DB, transferID string, opts ReconcileOptions) (*ReconciliationResult, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		classID     string
		studentID   sql.NullString
		amount      decimal.Decimal
		processedAt sql.NullTime
	)
	err = tx.QueryRow(
		`SELECT class_id, student_id, amount, processed_at FROM bank_transfers WHERE id = $1 FOR UPDATE`,
		transferID,
	).Scan(&classID, &studentID, &amount, &processedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTransferNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := reconcileGate(processedAt.Valid, studentID.Valid, opts.TargetRequestID); err != nil {
		return nil, err
	}

	result := &ReconciliationResult{TransferID: transferID, Allocations: []PlannedAllocation{}}

	// Orphan: no student matched. Record the whole amount as unallocated
	// credit and flag it for manual review.
	if !studentID.Valid {
		_, err = tx.Exec(
			`UPDATE bank_transfers SET needs_review = true, processed_at = NOW() WHERE id = $1`,
			transferID,
		)
		if err != nil {
			return nil, err
		}
		result.Orphan = true
		result.Unallocated = amount
		return result, tx.Commit()
	}
	result.StudentID = studentID.String

	var (
		plan      []PlannedAllocation
		remainder decimal.Decimal
	)
	if opts.TargetRequestID != "" {
		target, err := outstandingForRequest(tx, classID, studentID.String, opts.TargetRequestID)
		if err != nil {
			return nil, err
		}
		alloc, credit, err := allocateManual(amount, target.Outstanding, opts.AllowOverpayment)
		if err != nil {
			return nil, fmt.Errorf("request %q has %s outstanding, transfer is %s: %w",
				target.Title, target.Outstanding, amount, err)
		}
		if alloc.IsPositive() {
			plan = append(plan, PlannedAllocation{RequestID: target.ID, Title: target.Title, Amount: alloc})
		}
		remainder = credit
	} else {
		outstanding, err := outstandingForStudent(tx, classID, studentID.String)
		if err != nil {
			return nil, err
		}
		plan, remainder = planAllocations(amount, outstanding)
	}

	for _, p := range plan {
		if err := insertAllocation(tx, transferID, p.RequestID, p.Amount); err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(
		`UPDATE bank_transfers SET needs_review = $2, processed_at = NOW() WHERE id = $1`,
		transferID, remainder.IsPositive(),
	)
	if err != nil {
		return nil, err
	}

	result.Allocations = append(result.Allocations, plan...)
	result.Unallocated = remainder
	return result, tx.Commit()
}

// AllocateCredit applies part of a processed transfer's remaining credit to
// one request. Used by the treasurer to resolve flagged credits.
func AllocateCredit(db *sql.DB, classID, transferID, requestID string, amount decimal.Decimal) (*ReconciliationResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("allocation amount must be positive")
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		studentID     sql.NullString
		transferTotal decimal.Decimal
		processedAt   sql.NullTime
	)
	err = tx.QueryRow(
		`SELECT student_id, amount, processed_at FROM bank_transfers WHERE id = $1 AND class_id = $2 FOR UPDATE`,
		transferID, classID,
	).Scan(&studentID, &transferTotal, &processedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTransferNotFound
	}
	if err != nil {
		return nil, err
	}
	if !processedAt.Valid {
		return nil, ErrNotProcessed
	}
	if !studentID.Valid {
		return nil, ErrOrphanTransfer
	}

	var allocated decimal.Decimal
	err = tx.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM transfer_allocations WHERE transfer_id = $1`,
		transferID,
	).Scan(&allocated)
	if err != nil {
		return nil, err
	}
	credit := transferTotal.Sub(allocated)
	if amount.GreaterThan(credit) {
		return nil, fmt.Errorf("transfer has %s unallocated, requested %s: %w", credit, amount, ErrNoCredit)
	}

	target, err := outstandingForRequest(tx, classID, studentID.String, requestID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(target.Outstanding) {
		return nil, fmt.Errorf("request %q has %s outstanding, requested %s: %w",
			target.Title, target.Outstanding, amount, ErrAmountMismatch)
	}

	if err := insertAllocation(tx, transferID, requestID, amount); err != nil {
		return nil, err
	}

	_, err = tx.Exec(
		`UPDATE bank_transfers SET needs_review = $2 WHERE id = $1`,
		transferID, credit.Sub(amount).IsPositive(),
	)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		TransferID:  transferID,
		StudentID:   studentID.String,
		Allocations: []PlannedAllocation{{RequestID: target.ID, Title: target.Title, Amount: amount}},
		Unallocated: credit.Sub(amount),
	}
	return result, tx.Commit()
}

// AssignStudent resolves an orphan transfer: links it to a student of the
// class and applies its credit to their outstanding requests oldest-first.
// The student link is the only field of a recorded transfer that may change.
func AssignStudent(db *sql.DB, classID, transferID, studentID string) (*ReconciliationResult, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		currentStudent sql.NullString
		amount         decimal.Decimal
	)
	err = tx.QueryRow(
		`SELECT student_id, amount FROM bank_transfers WHERE id = $1 AND class_id = $2 FOR UPDATE`,
		transferID, classID,
	).Scan(&currentStudent, &amount)
	if err == sql.ErrNoRows {
		return nil, ErrTransferNotFound
	}
	if err != nil {
		return nil, err
	}
	if currentStudent.Valid {
		return nil, ErrAlreadyMatched
	}

	var exists bool
	err = tx.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM student_profiles WHERE id = $1 AND class_id = $2 AND is_active = true)`,
		studentID, classID,
	).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("student %s: %w", studentID, ErrStudentNotFound)
	}

	outstanding, err := outstandingForStudent(tx, classID, studentID)
	if err != nil {
		return nil, err
	}
	plan, remainder := planAllocations(amount, outstanding)

	for _, p := range plan {
		if err := insertAllocation(tx, transferID, p.RequestID, p.Amount); err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(
		`UPDATE bank_transfers
		 SET student_id = $2, needs_review = $3, processed_at = COALESCE(processed_at, NOW())
		 WHERE id = $1`,
		transferID, studentID, remainder.IsPositive(),
	)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		TransferID:  transferID,
		StudentID:   studentID,
		Allocations: plan,
		Unallocated: remainder,
	}
	if result.Allocations == nil {
		result.Allocations = []PlannedAllocation{}
	}
	return result, tx.Commit()
}

func insertAllocation(tx *sql.Tx, transferID, requestID string, amount decimal.Decimal) error {
	_, err := tx.Exec(
		`INSERT INTO transfer_allocations (transfer_id, request_id, amount, created_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (transfer_id, request_id)
		 DO UPDATE SET amount = transfer_allocations.amount + EXCLUDED.amount`,
		transferID, requestID, amount,
	)
	return err
}

// outstandingForStudent loads the requests the student still owes on, oldest
// first, inside the reconciliation transaction.
func outstandingForStudent(tx *sql.Tx, classID, studentID string) ([]outstandingRequest, error) {
	rows, err := tx.Query(`
		SELECT pr.id, pr.title, pr.amount - COALESCE(pa.total, 0)
		FROM payment_requests pr
		LEFT JOIN (
			SELECT ta.request_id, SUM(ta.amount) AS total
			FROM transfer_allocations ta
			JOIN bank_transfers bt ON bt.id = ta.transfer_id
			WHERE bt.student_id = $2
			GROUP BY ta.request_id
		) pa ON pa.request_id = pr.id
		WHERE pr.class_id = $1 AND pr.voided_at IS NULL
		  AND (pr.target_type = 'class' OR pr.target_student_id = $2)
		  AND pr.amount - COALESCE(pa.total, 0) > 0
		ORDER BY pr.created_at ASC`,
		classID, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outstanding := []outstandingRequest{}
	for rows.Next() {
		var o outstandingRequest
		if err := rows.Scan(&o.ID, &o.Title, &o.Outstanding); err != nil {
			return nil, err
		}
		outstanding = append(outstanding, o)
	}
	return outstanding, rows.Err()
}

// outstandingForRequest loads one request with the student's remaining share
// on it. Voided requests are rejected.
func outstandingForRequest(tx *sql.Tx, classID, studentID, requestID string) (*outstandingRequest, error) {
	var (
		o        outstandingRequest
		voidedAt sql.NullTime
	)
	err := tx.QueryRow(`
		SELECT pr.id, pr.title, pr.voided_at,
			   pr.amount - COALESCE((
				   SELECT SUM(ta.amount)
				   FROM transfer_allocations ta
				   JOIN bank_transfers bt ON bt.id = ta.transfer_id
				   WHERE ta.request_id = pr.id AND bt.student_id = $2
			   ), 0)
		FROM payment_requests pr
		WHERE pr.id = $3 AND pr.class_id = $1
		  AND (pr.target_type = 'class' OR pr.target_student_id = $2)`,
		classID, studentID, requestID,
	).Scan(&o.ID, &o.Title, &voidedAt, &o.Outstanding)
	if err == sql.ErrNoRows {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if voidedAt.Valid {
		return nil, ErrRequestVoided
	}
	if o.Outstanding.IsNegative() {
		o.Outstanding = decimal.Zero
	}
	return &o, nil
}
