package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/safestudy/safestudy-go/internal/breach"
	"github.com/safestudy/safestudy-go/internal/crypto"
	"github.com/safestudy/safestudy-go/internal/model"
	"github.com/safestudy/safestudy-go/internal/repository"
)

var fastHashParams = crypto.HashParams{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeEntryStore struct {
	mu      sync.Mutex
	clock   time.Time
	entries map[string]model.PasswordEntry
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		entries: map[string]model.PasswordEntry{},
	}
}

func (f *fakeEntryStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeEntryStore) Insert(_ context.Context, e *model.PasswordEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	cp.CreatedAt = f.tick()
	cp.UpdatedAt = cp.CreatedAt
	f.entries[e.ID] = cp
	return nil
}

func (f *fakeEntryStore) GetByID(_ context.Context, userID int64, id string) (*model.PasswordEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok || e.UserID != userID {
		return nil, repository.ErrEntryNotFound
	}
	return &e, nil
}

func (f *fakeEntryStore) ListByUser(_ context.Context, userID int64) ([]model.PasswordEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PasswordEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeEntryStore) UpdateAssessment(_ context.Context, e *model.PasswordEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.entries[e.ID]
	if !ok || cur.UserID != e.UserID {
		return repository.ErrEntryNotFound
	}
	cur.Strength = e.Strength
	cur.Breached = e.Breached
	cur.BreachStatus = e.BreachStatus
	cur.UpdatedAt = f.tick()
	f.entries[e.ID] = cur
	return nil
}

func (f *fakeEntryStore) Delete(_ context.Context, userID int64, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok || e.UserID != userID {
		return repository.ErrEntryNotFound
	}
	delete(f.entries, id)
	return nil
}

// fakeChecker answers from a fixed table; unknown passwords are not breached.
type fakeChecker struct {
	mu      sync.Mutex
	results map[string]breach.Result
	calls   int
}

func newFakeChecker(results map[string]breach.Result) *fakeChecker {
	if results == nil {
		results = map[string]breach.Result{}
	}
	return &fakeChecker{results: results}
}

func (f *fakeChecker) set(password string, r breach.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[password] = r
}

func (f *fakeChecker) Check(_ context.Context, password string) breach.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.results[password]
}

func (f *fakeChecker) CheckMany(ctx context.Context, passwords []string, _ int) []breach.Result {
	out := make([]breach.Result, len(passwords))
	for i, p := range passwords {
		out[i] = f.Check(ctx, p)
	}
	return out
}
