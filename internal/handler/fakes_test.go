package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/auth"
	"github.com/spendlog/spendlog/internal/export"
	"github.com/spendlog/spendlog/internal/model"
	"github.com/spendlog/spendlog/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testTime = time.Date(2024, time.April, 15, 9, 30, 0, 0, time.UTC)

func alice() *model.Principal { return &model.Principal{UserID: "u-alice", Username: "alice"} }

func sampleExpense(id, amount string, category model.Category) *model.Expense {
	desc := "lunch"
	return &model.Expense{
		ID:          id,
		UserID:      "u-alice",
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: &desc,
		Date:        time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
}

// newRequest builds a request carrying p, with optional chi URL params as key/value pairs.
func newRequest(method, target, body string, p *model.Principal, params ...string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	ctx := req.Context()
	if p != nil {
		ctx = auth.ContextWithPrincipal(ctx, p)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for i := 0; i+1 < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

type fakeExpenseService struct {
	err error

	created  *service.CreateExpenseInput
	listed   *service.ListExpensesInput
	updated  *service.UpdateExpenseInput
	deleted  string
	listOut  *service.ListExpensesOutput
	recent   []*model.Expense
	returned *model.Expense
}

func (f *fakeExpenseService) CreateExpense(_ context.Context, _ *model.Principal, input service.CreateExpenseInput) (*model.Expense, error) {
	f.created = &input
	if f.err != nil {
		return nil, f.err
	}
	return f.returned, nil
}

func (f *fakeExpenseService) ListExpenses(_ context.Context, _ *model.Principal, input service.ListExpensesInput) (*service.ListExpensesOutput, error) {
	f.listed = &input
	if f.err != nil {
		return nil, f.err
	}
	return f.listOut, nil
}

func (f *fakeExpenseService) RecentExpenses(context.Context, *model.Principal) ([]*model.Expense, error) {
	return f.recent, f.err
}

func (f *fakeExpenseService) UpdateExpense(_ context.Context, _ *model.Principal, input service.UpdateExpenseInput) (*model.Expense, error) {
	f.updated = &input
	if f.err != nil {
		return nil, f.err
	}
	return f.returned, nil
}

func (f *fakeExpenseService) DeleteExpense(_ context.Context, _ *model.Principal, id string) error {
	f.deleted = id
	return f.err
}

type fakeAccountService struct {
	err        error
	registered *service.RegisterInput
	pair       auth.TokenPair
	users      []*model.User
}

func (f *fakeAccountService) Register(_ context.Context, input service.RegisterInput) (*model.User, error) {
	f.registered = &input
	if f.err != nil {
		return nil, f.err
	}
	return &model.User{ID: "u-new", Username: input.Username, Email: input.Email}, nil
}

func (f *fakeAccountService) Login(context.Context, string, string) (auth.TokenPair, error) {
	return f.pair, f.err
}

func (f *fakeAccountService) Refresh(context.Context, string) (auth.TokenPair, error) {
	return f.pair, f.err
}

func (f *fakeAccountService) ListUsers(context.Context) ([]*model.User, error) {
	return f.users, f.err
}

type fakeReporter struct {
	month  string
	report *model.Report
	err    error
}

func (f *fakeReporter) MonthlyReport(_ context.Context, _ *model.Principal, month string) (*model.Report, error) {
	f.month = month
	return f.report, f.err
}

type fakeExporter struct {
	format export.Format
	file   *export.File
	err    error
}

func (f *fakeExporter) Export(_ context.Context, _ *model.Principal, format export.Format) (*export.File, error) {
	f.format = format
	return f.file, f.err
}
