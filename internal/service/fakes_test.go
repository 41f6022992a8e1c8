package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/model"
	"github.com/spendlog/spendlog/internal/repository"
)

// memStore is an in-memory expense and user store that applies scopes
// and ordering the way the Postgres repository does.
type memStore struct {
	mu       sync.Mutex
	expenses map[string]*model.Expense
	users    map[string]*model.User
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		expenses: make(map[string]*model.Expense),
		users:    make(map[string]*model.User),
	}
}

func (s *memStore) CreateExpense(_ context.Context, e *model.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	cp := *e
	s.expenses[e.ID] = &cp
	return nil
}

func (s *memStore) GetExpense(_ context.Context, scope model.Scope, id string) (*model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || !scope.Allows(e.UserID) {
		return nil, repository.ErrExpenseNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) scoped(scope model.Scope) []*model.Expense {
	var out []*model.Expense
	for _, e := range s.expenses {
		if scope.Allows(e.UserID) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out
}

func (s *memStore) ListExpenses(_ context.Context, scope model.Scope, limit, offset int) ([]*model.Expense, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, 0, s.err
	}
	all := s.scoped(scope)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], total, nil
}

func (s *memStore) RecentExpenses(_ context.Context, scope model.Scope) ([]*model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.scoped(scope)
	if len(all) > repository.RecentLimit {
		all = all[:repository.RecentLimit]
	}
	return all, nil
}

func (s *memStore) ExportExpenses(_ context.Context, scope model.Scope) ([]*model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.scoped(scope), nil
}

func (s *memStore) UpdateExpense(_ context.Context, scope model.Scope, e *model.Expense) (*model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.expenses[e.ID]
	if !ok || !scope.Allows(cur.UserID) {
		return nil, repository.ErrExpenseNotFound
	}
	cur.Amount = e.Amount
	cur.Category = e.Category
	cur.Description = e.Description
	cur.UpdatedAt = e.UpdatedAt
	cp := *cur
	return &cp, nil
}

func (s *memStore) DeleteExpense(_ context.Context, scope model.Scope, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || !scope.Allows(e.UserID) {
		return repository.ErrExpenseNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *memStore) SumByCategory(_ context.Context, scope model.Scope, month *model.Month) (map[model.Category]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	totals := make(map[model.Category]decimal.Decimal)
	for _, e := range s.scoped(scope) {
		if month != nil && (e.Date.Before(month.Start()) || !e.Date.Before(month.End())) {
			continue
		}
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals, nil
}

func (s *memStore) CreateUserWithProfile(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return repository.ErrUsernameTaken
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) ListUsers(_ context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

// seed stores an expense directly, bypassing validation.
func (s *memStore) seed(id, userID, amount string, category model.Category, date time.Time) *model.Expense {
	e := &model.Expense{
		ID:        id,
		UserID:    userID,
		Amount:    decimal.RequireFromString(amount),
		Category:  category,
		Date:      date,
		CreatedAt: date,
		UpdatedAt: date,
	}
	_ = s.CreateExpense(context.Background(), e)
	return e
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.April, 15, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingHook struct {
	name  string
	err   error
	calls []*model.Expense
}

func (h *recordingHook) Name() string { return h.name }

func (h *recordingHook) AfterCreate(_ context.Context, e *model.Expense) error {
	h.calls = append(h.calls, e)
	return h.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	err    error
	alerts []*model.ExpenseAlert
}

func (n *recordingNotifier) Notify(_ context.Context, a *model.ExpenseAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
	return n.err
}

type memBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{revoked: make(map[string]time.Duration)}
}

func (b *memBlacklist) ClaimToken(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return false, b.err
	}
	if _, ok := b.revoked[jti]; ok || ttl <= 0 {
		return false, nil
	}
	b.revoked[jti] = ttl
	return true, nil
}

var errBoom = errors.New("boom")

func alice() *model.Principal { return &model.Principal{UserID: "alice", Username: "alice"} }
func bob() *model.Principal { return &model.Principal{UserID: "bob", Username: "bob"} }
func staff() *model.Principal {
	return &model.Principal{UserID: "admin", Username: "admin", IsStaff: true}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

func day(d int) time.Time { return time.Date(2024, time.April, d, 0, 0, 0, 0, time.UTC) }
