package database

import (
	"database/sql"
	"fmt"

	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
)

// CreateStudent creates the user account and its student profile in one
// transaction so a half-enrolled student can never exist.
func CreateStudent(db *sql.DB, user *models.User, profile *models.StudentProfile) error {
	hashed, err := hashPassword(user.Password)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	queryUser := `INSERT INTO users (email, password, first_name, last_name, is_treasurer, is_active, created_at, updated_at)
				  VALUES ($1, $2, $3, $4, false, true, NOW(), NOW())
				  RETURNING id, created_at, updated_at`
	err = tx.QueryRow(queryUser, user.Email, hashed, user.FirstName, user.LastName).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %v", err)
	}

	queryProfile := `INSERT INTO student_profiles (user_id, class_id, variable_symbol, is_active, enrolled_at)
					 VALUES ($1, $2, $3, true, NOW())
					 RETURNING id, enrolled_at`
	profile.UserID = user.ID
	err = tx.QueryRow(queryProfile, profile.UserID, profile.ClassID, profile.VariableSymbol).Scan(
		&profile.ID, &profile.EnrolledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create student profile: %v", err)
	}

	return tx.Commit()
}

// GetClassStudents returns the active roster of a class ordered for display.
func GetClassStudents(db *sql.DB, classID string) ([]*models.StudentProfile, error) {
	query := `SELECT sp.id, sp.user_id, sp.class_id, sp.variable_symbol, sp.is_active, sp.enrolled_at,
			  u.id, u.email, u.first_name, u.last_name
			  FROM student_profiles sp
			  JOIN users u ON sp.user_id = u.id
			  WHERE sp.class_id = $1 AND sp.is_active = true AND u.is_active = true
			  ORDER BY u.last_name, u.first_name`

	rows, err := db.Query(query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []*models.StudentProfile{}
	for rows.Next() {
		sp := &models.StudentProfile{User: &models.User{}}
		err := rows.Scan(
			&sp.ID, &sp.UserID, &sp.ClassID, &sp.VariableSymbol, &sp.IsActive, &sp.EnrolledAt,
			&sp.User.ID, &sp.User.Email, &sp.User.FirstName, &sp.User.LastName,
		)
		if err != nil {
			return nil, err
		}
		students = append(students, sp)
	}
	return students, rows.Err()
}

func GetStudentByID(db *sql.DB, studentID string) (*models.StudentProfile, error) {
	sp := &models.StudentProfile{User: &models.User{}}
	query := `SELECT sp.id, sp.user_id, sp.class_id, sp.variable_symbol, sp.is_active, sp.enrolled_at,
			  u.id, u.email, u.first_name, u.last_name
			  FROM student_profiles sp
			  JOIN users u ON sp.user_id = u.id
			  WHERE sp.id = $1 AND sp.is_active = true`
	err := db.QueryRow(query, studentID).Scan(
		&sp.ID, &sp.UserID, &sp.ClassID, &sp.VariableSymbol, &sp.IsActive, &sp.EnrolledAt,
		&sp.User.ID, &sp.User.Email, &sp.User.FirstName, &sp.User.LastName,
	)
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// GetStudentByUserID resolves the profile behind a logged-in user account.
func GetStudentByUserID(db *sql.DB, userID string) (*models.StudentProfile, error) {
	sp := &models.StudentProfile{}
	query := `SELECT id, user_id, class_id, variable_symbol, is_active, enrolled_at
			  FROM student_profiles
			  WHERE user_id = $1 AND is_active = true`
	err := db.QueryRow(query, userID).Scan(
		&sp.ID, &sp.UserID, &sp.ClassID, &sp.VariableSymbol, &sp.IsActive, &sp.EnrolledAt,
	)
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// GetStudentByVariableSymbol matches an incoming transfer's variable symbol
// to a student of the class. sql.ErrNoRows means an orphan transfer.
func GetStudentByVariableSymbol(db *sql.DB, classID, variableSymbol string) (*models.StudentProfile, error) {
	sp := &models.StudentProfile{}
	query := `SELECT id, user_id, class_id, variable_symbol, is_active, enrolled_at
			  FROM student_profiles
			  WHERE class_id = $1 AND variable_symbol = $2 AND is_active = true`
	err := db.QueryRow(query, classID, variableSymbol).Scan(
		&sp.ID, &sp.UserID, &sp.ClassID, &sp.VariableSymbol, &sp.IsActive, &sp.EnrolledAt,
	)
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// DeactivateStudent removes a student from the active roster. Their transfers
// and allocations stay in the ledger.
func DeactivateStudent(db *sql.DB, studentID string) error {
	query := `UPDATE student_profiles SET is_active = false WHERE id = $1`
	_, err := db.Exec(query, studentID)
	return err
}

// CountActiveStudents returns the number of students expected to pay a
// class-wide request.
func CountActiveStudents(db *sql.DB, classID string) (int, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM student_profiles WHERE class_id = $1 AND is_active = true`,
		classID,
	).Scan(&count)
	return count, err
}
