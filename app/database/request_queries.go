package database

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
)

// RequestWithStatus is a payment request together with its derived settlement
// figures. Status is recomputed from allocation rows on every read.
type RequestWithStatus struct {
	models.PaymentRequest
	TargetStudentName string                  `json:"target_student_name,omitempty"`
	Allocated         decimal.Decimal         `json:"allocated"`
	ExpectedTotal     decimal.Decimal         `json:"expected_total"`
	ExpectedCount     int                     `json:"expected_count"`
	Status            models.SettlementStatus `json:"status"`
}

// StudentRequestStatus is a request as seen by one student: how much of their
// personal share is covered by their own transfers.
type StudentRequestStatus struct {
	models.PaymentRequest
	Allocated   decimal.Decimal         `json:"allocated"`
	Outstanding decimal.Decimal         `json:"outstanding"`
	Status      models.SettlementStatus `json:"status"`
}

func deriveStatus(allocated, expected decimal.Decimal) models.SettlementStatus {
	switch {
	case allocated.LessThanOrEqual(decimal.Zero):
		return models.SettlementPending
	case allocated.LessThan(expected):
		return models.SettlementPartial
	default:
		return models.SettlementSettled
	}
}

func CreateRequest(db *sql.DB, pr *models.PaymentRequest) error {
	query := `INSERT INTO payment_requests
			  (class_id, title, description, amount, due_date, target_type, target_student_id, variable_symbol, created_by, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			  RETURNING id, created_at`
	return db.QueryRow(query,
		pr.ClassID, pr.Title, pr.Description, pr.Amount, pr.DueDate,
		string(pr.TargetType), pr.TargetStudentID, pr.VariableSymbol, pr.CreatedBy,
	).Scan(&pr.ID, &pr.CreatedAt)
}

// VoidRequest marks a request as voided. Requests are never deleted so that
// allocations against them stay explainable.
func VoidRequest(db *sql.DB, classID, requestID string) error {
	res, err := db.Exec(
		`UPDATE payment_requests SET voided_at = NOW()
		 WHERE id = $1 AND class_id = $2 AND voided_at IS NULL`,
		requestID, classID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetClassRequests lists a class's requests with derived settlement status.
// For class-wide requests the expected total is amount × active students.
func GetClassRequests(db *sql.DB, classID string, includeVoided bool) ([]*RequestWithStatus, error) {
	studentCount, err := CountActiveStudents(db, classID)
	if err != nil {
		return nil, err
	}

	query := `SELECT pr.id, pr.class_id, pr.title, pr.description, pr.amount, pr.due_date,
			  pr.target_type, pr.target_student_id, pr.variable_symbol, pr.created_by,
			  pr.created_at, pr.voided_at,
			  COALESCE(a.total, 0),
			  u.first_name, u.last_name
			  FROM payment_requests pr
			  LEFT JOIN (
				  SELECT request_id, SUM(amount) AS total
				  FROM transfer_allocations
				  GROUP BY request_id
			  ) a ON a.request_id = pr.id
			  LEFT JOIN student_profiles sp ON pr.target_student_id = sp.id
			  LEFT JOIN users u ON sp.user_id = u.id
			  WHERE pr.class_id = $1`
	if !includeVoided {
		query += ` AND pr.voided_at IS NULL`
	}
	query += ` ORDER BY pr.created_at DESC`

	rows, err := db.Query(query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []*RequestWithStatus{}
	for rows.Next() {
		r := &RequestWithStatus{}
		var targetType string
		var firstName, lastName sql.NullString
		err := rows.Scan(
			&r.ID, &r.ClassID, &r.Title, &r.Description, &r.Amount, &r.DueDate,
			&targetType, &r.TargetStudentID, &r.VariableSymbol, &r.CreatedBy,
			&r.CreatedAt, &r.VoidedAt,
			&r.Allocated,
			&firstName, &lastName,
		)
		if err != nil {
			return nil, err
		}
		r.TargetType = models.RequestTarget(targetType)
		if firstName.Valid && lastName.Valid {
			r.TargetStudentName = firstName.String + " " + lastName.String
		}

		r.ExpectedCount = 1
		if r.TargetType == models.TargetClass {
			r.ExpectedCount = studentCount
		}
		r.ExpectedTotal = r.Amount.Mul(decimal.NewFromInt(int64(r.ExpectedCount)))
		r.Status = deriveStatus(r.Allocated, r.ExpectedTotal)

		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func GetRequestByID(db *sql.DB, classID, requestID string) (*RequestWithStatus, error) {
	r := &RequestWithStatus{}
	var targetType string
	query := `SELECT pr.id, pr.class_id, pr.title, pr.description, pr.amount, pr.due_date,
			  pr.target_type, pr.target_student_id, pr.variable_symbol, pr.created_by,
			  pr.created_at, pr.voided_at,
			  COALESCE((SELECT SUM(amount) FROM transfer_allocations WHERE request_id = pr.id), 0)
			  FROM payment_requests pr
			  WHERE pr.id = $1 AND pr.class_id = $2`
	err := db.QueryRow(query, requestID, classID).Scan(
		&r.ID, &r.ClassID, &r.Title, &r.Description, &r.Amount, &r.DueDate,
		&targetType, &r.TargetStudentID, &r.VariableSymbol, &r.CreatedBy,
		&r.CreatedAt, &r.VoidedAt,
		&r.Allocated,
	)
	if err != nil {
		return nil, err
	}
	r.TargetType = models.RequestTarget(targetType)

	r.ExpectedCount = 1
	if r.TargetType == models.TargetClass {
		if r.ExpectedCount, err = CountActiveStudents(db, classID); err != nil {
			return nil, err
		}
	}
	r.ExpectedTotal = r.Amount.Mul(decimal.NewFromInt(int64(r.ExpectedCount)))
	r.Status = deriveStatus(r.Allocated, r.ExpectedTotal)
	return r, nil
}

// GetStudentRequests lists the requests one student is expected to pay,
// oldest first, with the share covered by that student's own transfers.
func GetStudentRequests(db *sql.DB, classID, studentID string) ([]*StudentRequestStatus, error) {
	query := `SELECT pr.id, pr.class_id, pr.title, pr.description, pr.amount, pr.due_date,
			  pr.target_type, pr.target_student_id, pr.variable_symbol, pr.created_by,
			  pr.created_at, pr.voided_at,
			  COALESCE(pa.total, 0)
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
			  ORDER BY pr.created_at ASC`

	rows, err := db.Query(query, classID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []*StudentRequestStatus{}
	for rows.Next() {
		r := &StudentRequestStatus{}
		var targetType string
		err := rows.Scan(
			&r.ID, &r.ClassID, &r.Title, &r.Description, &r.Amount, &r.DueDate,
			&targetType, &r.TargetStudentID, &r.VariableSymbol, &r.CreatedBy,
			&r.CreatedAt, &r.VoidedAt,
			&r.Allocated,
		)
		if err != nil {
			return nil, err
		}
		r.TargetType = models.RequestTarget(targetType)
		r.Outstanding = r.Amount.Sub(r.Allocated)
		if r.Outstanding.IsNegative() {
			r.Outstanding = decimal.Zero
		}
		r.Status = deriveStatus(r.Allocated, r.Amount)
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
