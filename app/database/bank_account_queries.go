package database

import (
	"database/sql"

	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
)

// GetClassBankAccount returns the active bank account of a class, or
// sql.ErrNoRows when none has been configured yet.
func GetClassBankAccount(db *sql.DB, classID string) (*models.BankAccount, error) {
	a := &models.BankAccount{}
	query := `SELECT id, class_id, owner_name, account_number, iban, bank_name, note, is_active, updated_at
			  FROM bank_accounts WHERE class_id = $1 AND is_active = true`
	err := db.QueryRow(query, classID).Scan(
		&a.ID, &a.ClassID, &a.OwnerName, &a.AccountNumber, &a.IBAN,
		&a.BankName, &a.Note, &a.IsActive, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpsertBankAccount creates or replaces the class bank account details.
func UpsertBankAccount(db *sql.DB, a *models.BankAccount) error {
	query := `INSERT INTO bank_accounts (class_id, owner_name, account_number, iban, bank_name, note, is_active, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, true, NOW())
			  ON CONFLICT (class_id) DO UPDATE SET
				  owner_name = EXCLUDED.owner_name,
				  account_number = EXCLUDED.account_number,
				  iban = EXCLUDED.iban,
				  bank_name = EXCLUDED.bank_name,
				  note = EXCLUDED.note,
				  is_active = true,
				  updated_at = NOW()
			  RETURNING id, updated_at`
	return db.QueryRow(query,
		a.ClassID, a.OwnerName, a.AccountNumber, a.IBAN, a.BankName, a.Note,
	).Scan(&a.ID, &a.UpdatedAt)
}
