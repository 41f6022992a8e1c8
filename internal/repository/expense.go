package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/internal/model"
)

// Common errors for expense repository operations.
var (
	ErrExpenseNotFound = errors.New("expense not found")
)

// RecentLimit is the number of rows returned by RecentExpenses.
const RecentLimit = 5

const expenseColumns = `id, user_id, amount, category, description, date, created_at, updated_at`

// newest first; id breaks ties between rows created in the same instant
const expenseOrder = ` ORDER BY date DESC, created_at DESC, id DESC`

// scopeFilter renders scope as a SQL predicate on user_id.
// next is the placeholder index to use if an argument is needed.
func scopeFilter(scope model.Scope, next int) (string, []any) {
	switch {
	case scope.Unrestricted:
		return "TRUE", nil
	case scope.OwnerID != "":
		return fmt.Sprintf("user_id = $%d", next), []any{scope.OwnerID}
	default:
		return "FALSE", nil
	}
}

// CreateExpense inserts a new expense.
func (r *Repository) CreateExpense(ctx context.Context, e *model.Expense) error {
	query := `
		INSERT INTO expenses (id, user_id, amount, category, description, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		e.ID,
		e.UserID,
		e.Amount,
		string(e.Category),
		e.Description,
		e.Date,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetExpense retrieves one expense inside scope.
// Rows outside the scope are reported as ErrExpenseNotFound.
func (r *Repository) GetExpense(ctx context.Context, scope model.Scope, id string) (*model.Expense, error) {
	filter, args := scopeFilter(scope, 2)
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND ` + filter

	e, err := scanExpense(r.pool.QueryRow(ctx, query, append([]any{id}, args...)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns one page of expenses inside scope, newest first,
// together with the total number of matching rows.
func (r *Repository) ListExpenses(ctx context.Context, scope model.Scope, limit, offset int) ([]*model.Expense, int64, error) {
	filter, args := scopeFilter(scope, 1)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM expenses WHERE `+filter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	next := len(args) + 1
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + filter + expenseOrder +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", next, next+1)

	expenses, err := r.queryExpenses(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// RecentExpenses returns the newest RecentLimit expenses inside scope.
func (r *Repository) RecentExpenses(ctx context.Context, scope model.Scope) ([]*model.Expense, error) {
	filter, args := scopeFilter(scope, 1)
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + filter + expenseOrder +
		fmt.Sprintf(" LIMIT %d", RecentLimit)

	return r.queryExpenses(ctx, query, args...)
}

// ExportExpenses returns every expense inside scope, newest first.
func (r *Repository) ExportExpenses(ctx context.Context, scope model.Scope) ([]*model.Expense, error) {
	filter, args := scopeFilter(scope, 1)
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + filter + expenseOrder

	return r.queryExpenses(ctx, query, args...)
}

// UpdateExpense writes the mutable fields of e.
// Owner and entry date are never touched.
func (r *Repository) UpdateExpense(ctx context.Context, scope model.Scope, e *model.Expense) (*model.Expense, error) {
	filter, args := scopeFilter(scope, 6)
	query := `
		UPDATE expenses
		SET amount = $2, category = $3, description = $4, updated_at = $5
		WHERE id = $1 AND ` + filter + `
		RETURNING ` + expenseColumns

	params := append([]any{e.ID, e.Amount, string(e.Category), e.Description, e.UpdatedAt}, args...)

	updated, err := scanExpense(r.pool.QueryRow(ctx, query, params...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return updated, nil
}

// DeleteExpense removes an expense inside scope.
func (r *Repository) DeleteExpense(ctx context.Context, scope model.Scope, id string) error {
	filter, args := scopeFilter(scope, 2)

	result, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND `+filter, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// SumByCategory totals amounts per category inside scope.
// A nil month covers all time. Categories without rows are absent.
func (r *Repository) SumByCategory(ctx context.Context, scope model.Scope, month *model.Month) (map[model.Category]decimal.Decimal, error) {
	filter, args := scopeFilter(scope, 1)
	query := `SELECT category, SUM(amount) FROM expenses WHERE ` + filter

	if month != nil {
		next := len(args) + 1
		query += fmt.Sprintf(" AND date >= $%d AND date < $%d", next, next+1)
		args = append(args, month.Start(), month.End())
	}
	query += ` GROUP BY category`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}
	defer rows.Close()

	totals := make(map[model.Category]decimal.Decimal)
	for rows.Next() {
		var (
			category string
			sum      decimal.Decimal
		)
		if err := rows.Scan(&category, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals[model.Category(category)] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}
	return totals, nil
}

func (r *Repository) queryExpenses(ctx context.Context, query string, args ...any) ([]*model.Expense, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]*model.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

func scanExpense(row pgx.Row) (*model.Expense, error) {
	var (
		e        model.Expense
		category string
	)
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Amount,
		&category,
		&e.Description,
		&e.Date,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	e.Category = model.Category(category)
	return &e, err
}
