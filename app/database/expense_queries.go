package database

import (
	"database/sql"
	"errors"

	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
)

// ErrExpensePublished is returned when a mutation targets an expense that has
// already been published. Published expenses are immutable.
var ErrExpensePublished = errors.New("expense is published and cannot be changed")

func CreateExpense(db *sql.DB, e *models.Expense) error {
	query := `INSERT INTO expenses
			  (class_id, title, description, amount, category, spent_at, recorded_by, is_published, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			  RETURNING id, created_at`
	return db.QueryRow(query,
		e.ClassID, e.Title, e.Description, e.Amount, string(e.Category),
		e.SpentAt, e.RecordedBy, e.IsPublished,
	).Scan(&e.ID, &e.CreatedAt)
}

// UpdateExpense edits an unpublished expense. Editing a published expense
// fails with ErrExpensePublished.
func UpdateExpense(db *sql.DB, e *models.Expense) error {
	res, err := db.Exec(
		`UPDATE expenses SET title = $1, description = $2, amount = $3, category = $4, spent_at = $5
		 WHERE id = $6 AND class_id = $7 AND is_published = false`,
		e.Title, e.Description, e.Amount, string(e.Category), e.SpentAt, e.ID, e.ClassID,
	)
	if err != nil {
		return err
	}
	return requireUnpublishedRow(db, res, e.ClassID, e.ID)
}

// PublishExpense makes an expense visible to students and freezes it.
func PublishExpense(db *sql.DB, classID, expenseID string) error {
	res, err := db.Exec(
		`UPDATE expenses SET is_published = true WHERE id = $1 AND class_id = $2 AND is_published = false`,
		expenseID, classID,
	)
	if err != nil {
		return err
	}
	return requireUnpublishedRow(db, res, classID, expenseID)
}

// DeleteExpense removes an unpublished expense.
func DeleteExpense(db *sql.DB, classID, expenseID string) error {
	res, err := db.Exec(
		`DELETE FROM expenses WHERE id = $1 AND class_id = $2 AND is_published = false`,
		expenseID, classID,
	)
	if err != nil {
		return err
	}
	return requireUnpublishedRow(db, res, classID, expenseID)
}

// requireUnpublishedRow distinguishes "not found" from "found but published"
// after a guarded mutation touched zero rows.
func requireUnpublishedRow(db *sql.DB, res sql.Result, classID, expenseID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	var published bool
	err = db.QueryRow(
		`SELECT is_published FROM expenses WHERE id = $1 AND class_id = $2`,
		expenseID, classID,
	).Scan(&published)
	if err != nil {
		return err
	}
	if published {
		return ErrExpensePublished
	}
	return sql.ErrNoRows
}

func GetExpenseByID(db *sql.DB, classID, expenseID string) (*models.Expense, error) {
	e := &models.Expense{}
	var category string
	query := `SELECT id, class_id, title, description, amount, category, spent_at, recorded_by, is_published, created_at
			  FROM expenses WHERE id = $1 AND class_id = $2`
	err := db.QueryRow(query, expenseID, classID).Scan(
		&e.ID, &e.ClassID, &e.Title, &e.Description, &e.Amount, &category,
		&e.SpentAt, &e.RecordedBy, &e.IsPublished, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Category = models.ExpenseCategory(category)
	return e, nil
}

// GetClassExpenses lists expenses newest-spent first. Students only ever see
// published ones.
func GetClassExpenses(db *sql.DB, classID string, publishedOnly bool, limit int) ([]*models.Expense, error) {
	query := `SELECT id, class_id, title, description, amount, category, spent_at, recorded_by, is_published, created_at
			  FROM expenses WHERE class_id = $1`
	if publishedOnly {
		query += ` AND is_published = true`
	}
	query += ` ORDER BY spent_at DESC, created_at DESC`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		query += ` LIMIT $2`
		rows, err = db.Query(query, classID, limit)
	} else {
		rows, err = db.Query(query, classID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		e := &models.Expense{}
		var category string
		err := rows.Scan(
			&e.ID, &e.ClassID, &e.Title, &e.Description, &e.Amount, &category,
			&e.SpentAt, &e.RecordedBy, &e.IsPublished, &e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		e.Category = models.ExpenseCategory(category)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
