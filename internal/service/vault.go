package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/safestudy/safestudy-go/internal/breach"
	"github.com/safestudy/safestudy-go/internal/crypto"
	"github.com/safestudy/safestudy-go/internal/model"
	"github.com/safestudy/safestudy-go/internal/repository"
	"github.com/safestudy/safestudy-go/internal/strength"
)

var (
	ErrEntryNotFound      = errors.New("password entry not found")
	ErrVerificationFailed = errors.New("account password verification failed")
)

const defaultAuditConcurrency = 4

type passwordVerifier interface {
	VerifyPassword(ctx context.Context, userID int64, candidate string) (bool, error)
}

// VaultService stores credentials together with their strength and breach
// assessment.
type VaultService struct {
	repo        entryStore
	users       passwordVerifier
	sealer      *crypto.Sealer
	checker     BreachChecker
	concurrency int
}

// NewVaultService creates a new VaultService.
func NewVaultService(repo entryStore, users passwordVerifier, sealer *crypto.Sealer, checker BreachChecker) *VaultService {
	return &VaultService{
		repo:        repo,
		users:       users,
		sealer:      sealer,
		checker:     checker,
		concurrency: defaultAuditConcurrency,
	}
}

// AddEntry assesses and stores a credential.
func (s *VaultService) AddEntry(ctx context.Context, userID int64, req model.CreateEntryRequest) (model.EntryResponse, error) {
	req.Service = strings.TrimSpace(req.Service)
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(req); err != nil {
		return model.EntryResponse{}, err
	}

	entry := model.PasswordEntry{
		ID:       uuid.NewString(),
		UserID:   userID,
		Service:  req.Service,
		Username: req.Username,
	}

	sealed, err := s.sealer.Seal([]byte(req.Secret), entryAAD(&entry))
	if err != nil {
		return model.EntryResponse{}, err
	}
	if len(sealed) > model.MaxSealedSecretBytes {
		return model.EntryResponse{}, fmt.Errorf("%w: secret is too long", ErrInvalidInput)
	}
	entry.SealedSecret = sealed

	assess(&entry, req.Secret, s.checker.Check(ctx, req.Secret))

	if err := s.repo.Insert(ctx, &entry); err != nil {
		return model.EntryResponse{}, err
	}

	// Re-read for server-side timestamps.
	stored, err := s.repo.GetByID(ctx, userID, entry.ID)
	if err != nil {
		return model.EntryResponse{}, err
	}
	return toEntryResponse(*stored), nil
}

// ListEntries returns the user's entries, newest first, without secrets.
// A non-empty query keeps only entries whose service or username contains
// it, ignoring case.
func (s *VaultService) ListEntries(ctx context.Context, userID int64, query string) ([]model.EntryResponse, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return entriesToResponse(filterEntries(entries, query)), nil
}

func filterEntries(entries []model.PasswordEntry, query string) []model.PasswordEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries
	}
	out := entries[:0:0]
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Service), query) || strings.Contains(strings.ToLower(e.Username), query) {
			out = append(out, e)
		}
	}
	return out
}

// RevealSecret decrypts a stored secret after checking the account password.
func (s *VaultService) RevealSecret(ctx context.Context, userID int64, entryID string, req model.RevealRequest) (model.RevealResponse, error) {
	if err := validateStruct(req); err != nil {
		return model.RevealResponse{}, err
	}

	ok, err := s.users.VerifyPassword(ctx, userID, req.AccountPassword)
	if err != nil {
		return model.RevealResponse{}, err
	}
	if !ok {
		return model.RevealResponse{}, ErrVerificationFailed
	}

	entry, err := s.getEntry(ctx, userID, entryID)
	if err != nil {
		return model.RevealResponse{}, err
	}

	secret, err := s.sealer.Open(entry.SealedSecret, entryAAD(entry))
	if err != nil {
		return model.RevealResponse{}, err
	}

	slog.InfoContext(ctx, "vault secret revealed", "user_id", userID, "entry_id", entryID)
	return model.RevealResponse{ID: entry.ID, Secret: string(secret)}, nil
}

// DeleteEntry removes a credential.
func (s *VaultService) DeleteEntry(ctx context.Context, userID int64, entryID string) error {
	err := s.repo.Delete(ctx, userID, entryID)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return ErrEntryNotFound
	}
	return err
}

// Audit re-assesses every stored credential and persists the results.
func (s *VaultService) Audit(ctx context.Context, userID int64) ([]model.EntryResponse, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	secrets := make([]string, len(entries))
	for i := range entries {
		plain, err := s.sealer.Open(entries[i].SealedSecret, entryAAD(&entries[i]))
		if err != nil {
			return nil, fmt.Errorf("opening entry %s: %w", entries[i].ID, err)
		}
		secrets[i] = string(plain)
	}

	results := s.checker.CheckMany(ctx, secrets, s.concurrency)
	for i := range entries {
		assess(&entries[i], secrets[i], results[i])
		if err := s.repo.UpdateAssessment(ctx, &entries[i]); err != nil {
			return nil, err
		}
	}

	slog.InfoContext(ctx, "vault audited", "user_id", userID, "entries", len(entries))
	return entriesToResponse(entries), nil
}

// Summary returns the dashboard counters for the user's vault.
func (s *VaultService) Summary(ctx context.Context, userID int64) (model.VaultSummary, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return model.VaultSummary{}, err
	}
	return summarize(entries), nil
}

func (s *VaultService) getEntry(ctx context.Context, userID int64, entryID string) (*model.PasswordEntry, error) {
	entry, err := s.repo.GetByID(ctx, userID, entryID)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return nil, ErrEntryNotFound
	}
	return entry, err
}

// assess records strength and breach status. Breached is only set on a
// confirmed hit; a failed lookup stays undetermined.
func assess(e *model.PasswordEntry, secret string, r breach.Result) {
	e.Strength = strength.Analyze(secret).Rating
	e.Breached = r.Status() == breach.StatusBreached
	e.BreachStatus = r.Status()
}

func entryAAD(e *model.PasswordEntry) []byte {
	return fmt.Appendf(nil, "entry:%s:user:%d", e.ID, e.UserID)
}

func summarize(entries []model.PasswordEntry) model.VaultSummary {
	var sum model.VaultSummary
	sum.Total = len(entries)
	for _, e := range entries {
		switch e.Strength {
		case strength.Weak:
			sum.Weak++
		case strength.Medium:
			sum.Medium++
		case strength.Strong:
			sum.Strong++
		}
		switch e.BreachStatus {
		case breach.StatusBreached:
			sum.Breached++
		case breach.StatusUndetermined:
			sum.Undetermined++
		}
	}
	if sum.Total > 0 {
		sum.SecurityScore = int(math.Round(float64(sum.Strong) / float64(sum.Total) * 100))
	}
	return sum
}

func toEntryResponse(e model.PasswordEntry) model.EntryResponse {
	return model.EntryResponse{
		ID:           e.ID,
		Service:      e.Service,
		Username:     e.Username,
		Strength:     e.Strength,
		Breached:     e.Breached,
		BreachStatus: e.BreachStatus,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// entriesToResponse converts entries to API responses; never nil.
func entriesToResponse(entries []model.PasswordEntry) []model.EntryResponse {
	result := make([]model.EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = toEntryResponse(e)
	}
	return result
}
