package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/metrics"
	"github.com/spendlog/spendlog/internal/model"
)

// ExpenseHook runs after an expense is stored.
// An error is logged by the caller and never undoes the create.
type ExpenseHook interface {
	Name() string
	AfterCreate(ctx context.Context, e *model.Expense) error
}

// Notifier delivers expense alerts.
type Notifier interface {
	Notify(ctx context.Context, alert *model.ExpenseAlert) error
}

// UserLookup resolves the owner of an expense.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// LargeExpenseThreshold is the amount above which an alert is sent.
var LargeExpenseThreshold = decimal.RequireFromString("500.00")

// LargeExpenseAlert notifies when a single expense exceeds LargeExpenseThreshold.
type LargeExpenseAlert struct {
	users     UserLookup
	notifiers []Notifier
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewLargeExpenseAlert creates the hook. Every notifier is tried even if an earlier one fails.
func NewLargeExpenseAlert(users UserLookup, recorder metrics.Recorder, logger *slog.Logger, notifiers ...Notifier) *LargeExpenseAlert {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LargeExpenseAlert{
		users:     users,
		notifiers: notifiers,
		metrics:   recorder,
		logger:    logger,
	}
}

// Name identifies the hook in logs.
func (h *LargeExpenseAlert) Name() string { return "large_expense_alert" }

// AfterCreate sends an alert when e.Amount is strictly above the threshold.
func (h *LargeExpenseAlert) AfterCreate(ctx context.Context, e *model.Expense) error {
	if !e.Amount.GreaterThan(LargeExpenseThreshold) {
		return nil
	}

	owner, err := h.users.GetUserByID(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("look up expense owner: %w", err)
	}

	alert := &model.ExpenseAlert{
		ExpenseID: e.ID,
		UserID:    owner.ID,
		Username:  owner.Username,
		Email:     owner.Email,
		Amount:    e.Amount,
		Category:  e.Category,
		Threshold: LargeExpenseThreshold,
		CreatedAt: e.CreatedAt,
	}

	var errs []error
	for _, n := range h.notifiers {
		if err := n.Notify(ctx, alert); err != nil {
			h.metrics.IncAlertSent("failed")
			errs = append(errs, err)
			continue
		}
		h.metrics.IncAlertSent("success")
	}
	return errors.Join(errs...)
}
