package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS series (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL UNIQUE,
	prefix TEXT NOT NULL DEFAULT '',
	suffix TEXT NOT NULL DEFAULT '',
	padding INTEGER NOT NULL DEFAULT 0,
	format TEXT NOT NULL DEFAULT '',
	start_number INTEGER NOT NULL DEFAULT 1,
	current_number INTEGER NOT NULL DEFAULT 1,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS patients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	patient_code TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	gender TEXT NOT NULL DEFAULT '',
	date_of_birth DATETIME,
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	blood_group TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'active',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS doctors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	specialization TEXT NOT NULL DEFAULT '',
	qualification TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	consultation_fee REAL NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS lab_tests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	test_code TEXT NOT NULL,
	test_name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	subcategory TEXT NOT NULL DEFAULT '',
	price REAL NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS prescriptions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	rx_number TEXT NOT NULL UNIQUE,
	patient_id INTEGER NOT NULL REFERENCES patients(id),
	doctor_id INTEGER NOT NULL REFERENCES doctors(id),
	status TEXT NOT NULL DEFAULT 'active',
	diagnosis TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS prescription_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prescription_id INTEGER NOT NULL REFERENCES prescriptions(id),
	lab_test_id INTEGER REFERENCES lab_tests(id),
	medication TEXT NOT NULL DEFAULT '',
	dosage TEXT NOT NULL DEFAULT '',
	duration TEXT NOT NULL DEFAULT '',
	instructions TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS lab_orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_number TEXT NOT NULL UNIQUE,
	patient_id INTEGER NOT NULL REFERENCES patients(id),
	prescription_id INTEGER REFERENCES prescriptions(id),
	status TEXT NOT NULL DEFAULT 'pending',
	sample_type TEXT NOT NULL DEFAULT '',
	collected_at DATETIME,
	resulted_at DATETIME,
	approved_at DATETIME,
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	bill_number TEXT NOT NULL UNIQUE,
	patient_id INTEGER NOT NULL REFERENCES patients(id),
	prescription_id INTEGER REFERENCES prescriptions(id),
	status TEXT NOT NULL DEFAULT 'pending',
	sub_total REAL NOT NULL DEFAULT 0,
	discount REAL NOT NULL DEFAULT 0,
	total REAL NOT NULL DEFAULT 0,
	payment_method TEXT,
	paid_at DATETIME,
	cancel_reason TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS bill_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	bill_id INTEGER NOT NULL REFERENCES bills(id),
	lab_test_id INTEGER REFERENCES lab_tests(id),
	description TEXT NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL DEFAULT 1,
	unit_price REAL NOT NULL DEFAULT 0,
	amount REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS pharmacy_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	item_code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	generic_name TEXT NOT NULL DEFAULT '',
	item_type TEXT NOT NULL DEFAULT 'medicine',
	unit_price REAL NOT NULL DEFAULT 0,
	stock_quantity INTEGER NOT NULL DEFAULT 0,
	reorder_level INTEGER NOT NULL DEFAULT 0,
	prescription_required INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS appointments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	appointment_number TEXT NOT NULL UNIQUE,
	patient_id INTEGER NOT NULL REFERENCES patients(id),
	doctor_id INTEGER NOT NULL REFERENCES doctors(id),
	scheduled_at DATETIME NOT NULL,
	duration_minutes INTEGER NOT NULL DEFAULT 30,
	appointment_type TEXT NOT NULL DEFAULT 'regular',
	priority TEXT NOT NULL DEFAULT 'normal',
	status TEXT NOT NULL DEFAULT 'scheduled',
	notes TEXT NOT NULL DEFAULT '',
	cancel_reason TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS clinical_notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	patient_id INTEGER NOT NULL REFERENCES patients(id),
	doctor_id INTEGER NOT NULL REFERENCES doctors(id),
	note_date DATETIME NOT NULL,
	subjective TEXT NOT NULL DEFAULT '',
	objective TEXT NOT NULL DEFAULT '',
	assessment TEXT NOT NULL DEFAULT '',
	plan TEXT NOT NULL DEFAULT '',
	diagnosis TEXT NOT NULL DEFAULT '',
	medications TEXT NOT NULL DEFAULT '',
	follow_up TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS clinic (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	name TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	registration_number TEXT NOT NULL DEFAULT '',
	tax_id TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_prescriptions_patient ON prescriptions(patient_id);
CREATE INDEX IF NOT EXISTS idx_lab_orders_patient ON lab_orders(patient_id);
CREATE INDEX IF NOT EXISTS idx_bills_patient ON bills(patient_id);
CREATE INDEX IF NOT EXISTS idx_bills_prescription ON bills(prescription_id);
CREATE INDEX IF NOT EXISTS idx_lab_tests_active ON lab_tests(is_active);
CREATE INDEX IF NOT EXISTS idx_appointments_doctor_slot ON appointments(doctor_id, scheduled_at);
CREATE INDEX IF NOT EXISTS idx_clinical_notes_patient ON clinical_notes(patient_id);
`

// seedSeries matches the original bill_series setup: one row per document
// series, current_number starting at 1 (the next number to hand out).
const seedSeries = `
INSERT OR IGNORE INTO series (code, prefix, suffix, padding, start_number, current_number) VALUES
	('PAT', 'PAT-', '', 6, 1, 1),
	('BILL', 'BILL-', '', 6, 1, 1),
	('LAB', 'LAB-', '', 6, 1, 1),
	('RX', 'RX-', '', 6, 1, 1),
	('PHARM', 'PH-', '', 6, 1, 1),
	('APT', 'APT-', '', 6, 1, 1);
`

const seedClinic = `
INSERT OR IGNORE INTO clinic (id, name) VALUES (1, '');
`

// Migrate creates the schema and seeds the identifier series and clinic row.
// Safe to run on every startup.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range []string{schema, seedSeries, seedClinic} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
