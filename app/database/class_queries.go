package database

import (
	"database/sql"

	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
)

func CreateClass(db *sql.DB, class *models.SchoolClass) error {
	query := `INSERT INTO school_classes (name, treasurer_id, is_active, created_at)
			  VALUES ($1, $2, true, NOW())
			  RETURNING id, created_at`
	return db.QueryRow(query, class.Name, class.TreasurerID).Scan(&class.ID, &class.CreatedAt)
}

func GetClassByID(db *sql.DB, classID string) (*models.SchoolClass, error) {
	class := &models.SchoolClass{}
	query := `SELECT id, name, treasurer_id, is_active, created_at
			  FROM school_classes WHERE id = $1 AND is_active = true`
	err := db.QueryRow(query, classID).Scan(
		&class.ID, &class.Name, &class.TreasurerID, &class.IsActive, &class.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return class, nil
}

func GetClassByName(db *sql.DB, name string) (*models.SchoolClass, error) {
	class := &models.SchoolClass{}
	query := `SELECT id, name, treasurer_id, is_active, created_at
			  FROM school_classes WHERE name = $1 AND is_active = true`
	err := db.QueryRow(query, name).Scan(
		&class.ID, &class.Name, &class.TreasurerID, &class.IsActive, &class.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return class, nil
}

// GetTreasurerClass returns the class managed by the given treasurer, or
// sql.ErrNoRows when they have no class assigned yet. Every treasurer action
// must be scoped through this lookup.
func GetTreasurerClass(db *sql.DB, userID string) (*models.SchoolClass, error) {
	class := &models.SchoolClass{}
	query := `SELECT id, name, treasurer_id, is_active, created_at
			  FROM school_classes WHERE treasurer_id = $1 AND is_active = true`
	err := db.QueryRow(query, userID).Scan(
		&class.ID, &class.Name, &class.TreasurerID, &class.IsActive, &class.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return class, nil
}
