package casedb

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Case statuses. pending_review is entry-only: a resolved case never
// transitions again.
const (
	StatusPendingReview      = "pending_review"
	StatusConfirmedSafe      = "confirmed_safe"
	StatusConfirmedFraud     = "confirmed_fraud"
	StatusVerificationFailed = "verification_failed"
)

// noteDelimiter separates appended agent notes from prior notes.
const noteDelimiter = " | [Agent]: "

var (
	ErrCaseNotFound    = errors.New("case not found")
	ErrAlreadyResolved = errors.New("case already resolved")
	ErrInvalidStatus   = errors.New("invalid case status")
)

// Case is one row of the fraud_cases table.
type Case struct {
	CustomerID       string
	Name             string
	Phone            string
	SecurityQuestion string
	SecurityAnswer   string
	CardLast4        string
	Merchant         string
	Amount           string
	Location         string
	Timestamp        string
	Status           string
	Notes            string
}

// Store provides durable storage for fraud cases, one SQLite table.
type Store struct {
	db *sql.DB
}

// Open creates or opens the case database at path, creates the table if
// absent, and seeds one mock case when the table is empty. SQLite only
// supports one writer at a time, so the pool is pinned to one connection.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("case db dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open case db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect case db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.initTable(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS fraud_cases (
			customer_id       TEXT PRIMARY KEY,
			name              TEXT,
			phone             TEXT,
			security_question TEXT,
			security_answer   TEXT,
			card_last4        TEXT,
			merchant          TEXT,
			amount            TEXT,
			location          TEXT,
			timestamp         TEXT,
			status            TEXT,
			notes             TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("create fraud_cases: %w", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT count(*) FROM fraud_cases`).Scan(&count); err != nil {
		return fmt.Errorf("count fraud_cases: %w", err)
	}
	if count == 0 {
		log.Printf("casedb: seeding empty table with mock case")
		if err := s.Insert(mockCase()); err != nil {
			return err
		}
	}
	return nil
}

func mockCase() Case {
	return Case{
		CustomerID:       "CUST_9988",
		Name:             "John Doe",
		Phone:            "+15550199",
		SecurityQuestion: "What is the name of your first pet?",
		SecurityAnswer:   "Max",
		CardLast4:        "8842",
		Merchant:         "Apple Store",
		Amount:           "$1,299.00",
		Location:         "New York, NY",
		Timestamp:        "Yesterday at 4:30 PM",
		Status:           StatusPendingReview,
		Notes:            "Suspicious login detected.",
	}
}

// Insert adds a case row.
func (s *Store) Insert(c Case) error {
	_, err := s.db.Exec(`
		INSERT INTO fraud_cases VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.CustomerID, c.Name, c.Phone, c.SecurityQuestion, c.SecurityAnswer,
		c.CardLast4, c.Merchant, c.Amount, c.Location, c.Timestamp, c.Status, c.Notes)
	if err != nil {
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

// CaseByPhone finds the case whose stored phone number appears inside the
// caller identity string (SIP caller IDs carry extra prefix/suffix noise).
func (s *Store) CaseByPhone(identity string) (Case, error) {
	rows, err := s.db.Query(`SELECT ` + caseColumns + ` FROM fraud_cases`)
	if err != nil {
		return Case{}, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return Case{}, err
		}
		if c.Phone != "" && strings.Contains(identity, c.Phone) {
			return c, nil
		}
	}
	if err := rows.Err(); err != nil {
		return Case{}, fmt.Errorf("iterate cases: %w", err)
	}
	return Case{}, ErrCaseNotFound
}

// CaseByName finds a case by customer name, case-insensitively.
func (s *Store) CaseByName(name string) (Case, error) {
	row := s.db.QueryRow(`SELECT `+caseColumns+` FROM fraud_cases WHERE lower(name) = ?`,
		strings.ToLower(name))
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Case{}, ErrCaseNotFound
	}
	if err != nil {
		return Case{}, err
	}
	return c, nil
}

// CaseByID returns the case with the given customer id.
func (s *Store) CaseByID(customerID string) (Case, error) {
	row := s.db.QueryRow(`SELECT `+caseColumns+` FROM fraud_cases WHERE customer_id = ?`, customerID)
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Case{}, ErrCaseNotFound
	}
	if err != nil {
		return Case{}, err
	}
	return c, nil
}

// Resolve moves a pending case to a terminal status and appends the note to
// the existing notes string. Transitions are one-way: resolving an already
// resolved case fails with ErrAlreadyResolved, and pending_review is not a
// valid target.
func (s *Store) Resolve(customerID, status, note string) error {
	switch status {
	case StatusConfirmedSafe, StatusConfirmedFraud, StatusVerificationFailed:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	c, err := s.CaseByID(customerID)
	if err != nil {
		return err
	}
	if c.Status != StatusPendingReview {
		metricResolveRejected.Inc()
		return fmt.Errorf("%w: %s is %s", ErrAlreadyResolved, customerID, c.Status)
	}

	newNotes := c.Notes + noteDelimiter + note
	res, err := s.db.Exec(`
		UPDATE fraud_cases SET status = ?, notes = ? WHERE customer_id = ?
	`, status, newNotes, customerID)
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCaseNotFound
	}
	metricResolutions.WithLabelValues(status).Inc()
	return nil
}

const caseColumns = `customer_id, name, phone, security_question, security_answer,
	card_last4, merchant, amount, location, timestamp, status, notes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(r rowScanner) (Case, error) {
	var c Case
	err := r.Scan(&c.CustomerID, &c.Name, &c.Phone, &c.SecurityQuestion, &c.SecurityAnswer,
		&c.CardLast4, &c.Merchant, &c.Amount, &c.Location, &c.Timestamp, &c.Status, &c.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Case{}, err
		}
		return Case{}, fmt.Errorf("scan case: %w", err)
	}
	return c, nil
}
