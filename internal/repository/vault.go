package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/safestudy/safestudy-go/internal/breach"
	"github.com/safestudy/safestudy-go/internal/model"
	"github.com/safestudy/safestudy-go/internal/strength"
)

var ErrEntryNotFound = errors.New("password entry not found")

// VaultRepository stores password entries.
type VaultRepository struct {
	db *sql.DB
}

// NewVaultRepository creates a new VaultRepository.
func NewVaultRepository(db *sql.DB) *VaultRepository {
	return &VaultRepository{db: db}
}

const entryColumns = `id, user_id, service, username, sealed_secret, strength, breached, breach_status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (model.PasswordEntry, error) {
	var (
		e            model.PasswordEntry
		rating       string
		breachStatus string
	)
	err := s.Scan(
		&e.ID, &e.UserID, &e.Service, &e.Username, &e.SealedSecret,
		&rating, &e.Breached, &breachStatus, &e.CreatedAt, &e.UpdatedAt,
	)
	e.Strength = strength.Rating(rating)
	e.BreachStatus = breach.Status(breachStatus)
	return e, err
}

// Insert stores a new entry.
func (r *VaultRepository) Insert(ctx context.Context, e *model.PasswordEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_entries (id, user_id, service, username, sealed_secret, strength, breached, breach_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Service, e.Username, e.SealedSecret,
		string(e.Strength), e.Breached, string(e.BreachStatus),
	)
	return err
}

// GetByID retrieves an entry owned by userID.
func (r *VaultRepository) GetByID(ctx context.Context, userID int64, id string) (*model.PasswordEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM password_entries WHERE user_id = ? AND id = ?`,
		userID, id,
	)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListByUser retrieves all entries for a user, most recently updated first.
func (r *VaultRepository) ListByUser(ctx context.Context, userID int64) ([]model.PasswordEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM password_entries WHERE user_id = ? ORDER BY updated_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.PasswordEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// UpdateAssessment records a fresh strength and breach assessment.
func (r *VaultRepository) UpdateAssessment(ctx context.Context, e *model.PasswordEntry) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE password_entries SET strength = ?, breached = ?, breach_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND id = ?`,
		string(e.Strength), e.Breached, string(e.BreachStatus), e.UserID, e.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete removes an entry owned by userID.
func (r *VaultRepository) Delete(ctx context.Context, userID int64, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM password_entries WHERE user_id = ? AND id = ?`,
		userID, id,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}
