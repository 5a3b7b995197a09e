package database

import (
	"database/sql"
	"log"
)

// RunMigrations creates the schema if it does not exist and applies
// incremental column additions. Everything here is idempotent so the app can
// run it on every start.
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			is_treasurer BOOLEAN NOT NULL DEFAULT false,
			hide_fund_balance BOOLEAN NOT NULL DEFAULT false,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			deleted_at TIMESTAMP WITH TIME ZONE
		)`,
		`CREATE TABLE IF NOT EXISTS school_classes (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			treasurer_id UUID REFERENCES users(id),
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS student_profiles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			class_id UUID NOT NULL REFERENCES school_classes(id),
			variable_symbol VARCHAR(10) UNIQUE NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT true,
			enrolled_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS bank_accounts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			class_id UUID UNIQUE NOT NULL REFERENCES school_classes(id),
			owner_name VARCHAR(200) NOT NULL,
			account_number VARCHAR(50) NOT NULL,
			iban VARCHAR(34) NOT NULL DEFAULT '',
			bank_name VARCHAR(100) NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT true,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS payment_requests (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			class_id UUID NOT NULL REFERENCES school_classes(id),
			title VARCHAR(200) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			amount NUMERIC(10,2) NOT NULL CHECK (amount > 0),
			due_date DATE,
			target_type VARCHAR(10) NOT NULL DEFAULT 'class',
			target_student_id UUID REFERENCES student_profiles(id),
			variable_symbol VARCHAR(10) NOT NULL DEFAULT '',
			created_by UUID REFERENCES users(id),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			voided_at TIMESTAMP WITH TIME ZONE
		)`,
		`CREATE TABLE IF NOT EXISTS bank_transfers (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			class_id UUID NOT NULL REFERENCES school_classes(id),
			student_id UUID REFERENCES student_profiles(id),
			amount NUMERIC(10,2) NOT NULL CHECK (amount > 0),
			sender_name VARCHAR(200) NOT NULL DEFAULT '',
			statement_ref VARCHAR(100) NOT NULL DEFAULT '',
			variable_symbol VARCHAR(10) NOT NULL DEFAULT '',
			received_at TIMESTAMP WITH TIME ZONE NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			needs_review BOOLEAN NOT NULL DEFAULT false,
			processed_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS transfer_allocations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			transfer_id UUID NOT NULL REFERENCES bank_transfers(id),
			request_id UUID NOT NULL REFERENCES payment_requests(id),
			amount NUMERIC(10,2) NOT NULL CHECK (amount > 0),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (transfer_id, request_id)
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			class_id UUID NOT NULL REFERENCES school_classes(id),
			title VARCHAR(200) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			amount NUMERIC(10,2) NOT NULL CHECK (amount > 0),
			category VARCHAR(20) NOT NULL DEFAULT 'other',
			spent_at DATE NOT NULL,
			recorded_by UUID REFERENCES users(id),
			is_published BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
	}

	for _, q := range tables {
		if _, err := db.Exec(q); err != nil {
			log.Printf("Failed to create table: %v", err)
			return err
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_student_profiles_class_id ON student_profiles(class_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_requests_class_id ON payment_requests(class_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_requests_created_at ON payment_requests(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_bank_transfers_class_id ON bank_transfers(class_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bank_transfers_student_id ON bank_transfers(student_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bank_transfers_needs_review ON bank_transfers(needs_review)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bank_transfers_statement_ref
			ON bank_transfers(class_id, statement_ref) WHERE statement_ref <> ''`,
		`CREATE INDEX IF NOT EXISTS idx_transfer_allocations_request_id ON transfer_allocations(request_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_class_id ON expenses(class_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_spent_at ON expenses(spent_at)`,
	}

	for _, q := range indexes {
		if _, err := db.Exec(q); err != nil {
			log.Printf("Failed to create index: %v", err)
			return err
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
