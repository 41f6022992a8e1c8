// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/access"
	"github.com/spendlog/spendlog/internal/metrics"
	"github.com/spendlog/spendlog/internal/model"
	"github.com/spendlog/spendlog/internal/repository"
)

// Service errors.
var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero with at most 2 decimal places and 8 integer digits")
	ErrInvalidCategory    = errors.New("category must be one of Food, Travel, Rent, Shopping, Utilities, Entertainment")
	ErrDescriptionTooLong = errors.New("description must be at most 1000 characters")
	ErrAmountRequired     = errors.New("amount is required")
	ErrCategoryRequired   = errors.New("category is required")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrPageNotFound       = errors.New("invalid page")
	ErrUnauthenticated    = errors.New("authentication required")
)

const (
	maxDescriptionLength = 1000
	maxIntegerDigits     = 8
	amountDecimalPlaces  = 2
	// minAmountExponent bounds the scale accepted before any rounding.
	minAmountExponent = -(amountDecimalPlaces + 16)

	// DefaultPageSize is used when the caller sends no valid page_size.
	DefaultPageSize = 10
	// MaxPageSize caps page_size.
	MaxPageSize = 100
)

var maxAmount = decimal.New(1, maxIntegerDigits) // 10^8, exclusive

// ExpenseStore is the record store used by ExpenseService.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e *model.Expense) error
	GetExpense(ctx context.Context, scope model.Scope, id string) (*model.Expense, error)
	ListExpenses(ctx context.Context, scope model.Scope, limit, offset int) ([]*model.Expense, int64, error)
	RecentExpenses(ctx context.Context, scope model.Scope) ([]*model.Expense, error)
	UpdateExpense(ctx context.Context, scope model.Scope, e *model.Expense) (*model.Expense, error)
	DeleteExpense(ctx context.Context, scope model.Scope, id string) error
}

// ExpenseService handles expense record business logic.
type ExpenseService struct {
	store   ExpenseStore
	hooks   []ExpenseHook
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewExpenseService creates a new ExpenseService.
// Hooks run in the given order after every successful create.
func NewExpenseService(store ExpenseStore, recorder metrics.Recorder, logger *slog.Logger, hooks ...ExpenseHook) *ExpenseService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpenseService{
		store:   store,
		hooks:   hooks,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateExpenseInput defines input for creating an expense.
type CreateExpenseInput struct {
	Amount      *decimal.Decimal
	Category    string
	Description *string
}

// CreateExpense records a new expense owned by the caller and dated today (UTC).
func (s *ExpenseService) CreateExpense(ctx context.Context, p *model.Principal, input CreateExpenseInput) (*model.Expense, error) {
	if p == nil || p.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if input.Amount == nil {
		return nil, ErrAmountRequired
	}
	if input.Category == "" {
		return nil, ErrCategoryRequired
	}

	amount, err := validateAmount(*input.Amount)
	if err != nil {
		return nil, err
	}
	category, err := validateCategory(input.Category)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	e := &model.Expense{
		ID:          ulid.Make().String(),
		UserID:      p.UserID,
		Amount:      amount,
		Category:    category,
		Description: input.Description,
		Date:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	s.metrics.IncExpenseCreated()

	s.runHooks(ctx, e)
	return e, nil
}

// runHooks calls every hook in order. Failures are logged and counted only.
func (s *ExpenseService) runHooks(ctx context.Context, e *model.Expense) {
	for _, h := range s.hooks {
		if err := h.AfterCreate(ctx, e); err != nil {
			s.metrics.IncHookFailed()
			s.logger.Error("post-create hook failed",
				slog.String("hook", h.Name()),
				slog.String("expense_id", e.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// ListExpensesInput defines pagination for listing.
// Zero or negative values fall back to defaults.
type ListExpensesInput struct {
	Page     int
	PageSize int
}

// ListExpensesOutput is one page of expenses.
type ListExpensesOutput struct {
	Expenses []*model.Expense
	Total    int64
	Page     int
	PageSize int
}

// HasNext reports whether a later page exists.
func (o *ListExpensesOutput) HasNext() bool {
	return int64(o.Page)*int64(o.PageSize) < o.Total
}

// HasPrevious reports whether an earlier page exists.
func (o *ListExpensesOutput) HasPrevious() bool {
	return o.Page > 1
}

// ListExpenses returns a page of expenses visible to the caller.
// Staff see every user's records.
func (s *ExpenseService) ListExpenses(ctx context.Context, p *model.Principal, input ListExpensesInput) (*ListExpensesOutput, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	size := input.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	if page-1 > math.MaxInt32/size {
		return nil, ErrPageNotFound
	}
	offset := (page - 1) * size
	expenses, total, err := s.store.ListExpenses(ctx, access.ScopeFor(p, access.ActionList), size, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	if page > 1 && int64(offset) >= total {
		return nil, ErrPageNotFound
	}

	return &ListExpensesOutput{
		Expenses: expenses,
		Total:    total,
		Page:     page,
		PageSize: size,
	}, nil
}

// RecentExpenses returns the caller's five newest expenses.
func (s *ExpenseService) RecentExpenses(ctx context.Context, p *model.Principal) ([]*model.Expense, error) {
	expenses, err := s.store.RecentExpenses(ctx, access.ScopeFor(p, access.ActionRecent))
	if err != nil {
		return nil, fmt.Errorf("failed to get recent expenses: %w", err)
	}
	return expenses, nil
}

// UpdateExpenseInput defines input for updating an expense.
// With Partial unset (PUT), Amount and Category are required.
type UpdateExpenseInput struct {
	ID          string
	Amount      *decimal.Decimal
	Category    *string
	Description *string
	// DescriptionSet distinguishes an explicit null from an absent field.
	DescriptionSet bool
	Partial        bool
}

// UpdateExpense changes amount, category or description of the caller's own record.
// Owner and entry date never change.
func (s *ExpenseService) UpdateExpense(ctx context.Context, p *model.Principal, input UpdateExpenseInput) (*model.Expense, error) {
	if !input.Partial {
		if input.Amount == nil {
			return nil, ErrAmountRequired
		}
		if input.Category == nil {
			return nil, ErrCategoryRequired
		}
	}

	scope := access.ScopeFor(p, access.ActionUpdate)

	current, err := s.store.GetExpense(ctx, scope, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if input.Amount != nil {
		amount, err := validateAmount(*input.Amount)
		if err != nil {
			return nil, err
		}
		current.Amount = amount
	}
	if input.Category != nil {
		category, err := validateCategory(*input.Category)
		if err != nil {
			return nil, err
		}
		current.Category = category
	}
	if input.DescriptionSet {
		if err := validateDescription(input.Description); err != nil {
			return nil, err
		}
		current.Description = input.Description
	}
	current.UpdatedAt = s.now().UTC()

	updated, err := s.store.UpdateExpense(ctx, scope, current)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	s.metrics.IncExpenseUpdated()

	return updated, nil
}

// DeleteExpense removes a record owned by the caller, or any record for staff.
// Cached reports are left alone and may show the deleted amount until they expire.
func (s *ExpenseService) DeleteExpense(ctx context.Context, p *model.Principal, id string) error {
	if err := s.store.DeleteExpense(ctx, access.ScopeFor(p, access.ActionDelete), id); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	s.metrics.IncExpenseDeleted()
	return nil
}

// validateAmount checks the NUMERIC(10,2) bounds and returns the amount at scale 2.
// Exponents are range-checked first: rescaling 1e-99999999 would build a
// 10^99999999 coefficient.
func validateAmount(d decimal.Decimal) (decimal.Decimal, error) {
	if !d.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if d.Exponent() < minAmountExponent || int(d.Exponent())+d.NumDigits() > maxIntegerDigits+1 {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if !d.Equal(d.Round(amountDecimalPlaces)) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d.Round(amountDecimalPlaces), nil
}

func validateCategory(s string) (model.Category, error) {
	c := model.Category(s)
	if !c.IsValid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func validateDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
