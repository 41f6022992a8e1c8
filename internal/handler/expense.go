package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spendlog/spendlog/internal/handler/dto"
	"github.com/spendlog/spendlog/internal/model"
	"github.com/spendlog/spendlog/internal/service"
)

// ExpenseService is the record store API used by ExpenseHandler.
type ExpenseService interface {
	CreateExpense(ctx context.Context, p *model.Principal, input service.CreateExpenseInput) (*model.Expense, error)
	ListExpenses(ctx context.Context, p *model.Principal, input service.ListExpensesInput) (*service.ListExpensesOutput, error)
	RecentExpenses(ctx context.Context, p *model.Principal) ([]*model.Expense, error)
	UpdateExpense(ctx context.Context, p *model.Principal, input service.UpdateExpenseInput) (*model.Expense, error)
	DeleteExpense(ctx context.Context, p *model.Principal, id string) error
}

// ExpenseHandler handles HTTP requests for expense records.
type ExpenseHandler struct {
	svc    ExpenseService
	logger *slog.Logger
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(svc ExpenseService, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/expenses/create.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req dto.ExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	input := service.CreateExpenseInput{
		Amount:      req.Amount,
		Description: req.Description.Value,
	}
	if req.Category != nil {
		input.Category = *req.Category
	}

	expense, err := h.svc.CreateExpense(r.Context(), p, input)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("expense_created",
		"expense_id", expense.ID,
		"user_id", p.UserID,
		"category", string(expense.Category),
	)

	writeJSON(w, http.StatusCreated, dto.ToExpenseResponse(expense))
}

// List handles GET /api/expenses/list?page=N&page_size=M.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	input := service.ListExpensesInput{
		Page:     1,
		PageSize: service.DefaultPageSize,
	}
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeError(w, http.StatusNotFound, "PAGE_NOT_FOUND", "Invalid page.")
			return
		}
		input.Page = page
	}
	if raw := query.Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			input.PageSize = size
		}
	}

	result, err := h.svc.ListExpenses(r.Context(), p, input)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	response := dto.ExpensePage{
		Count:   result.Total,
		Results: dto.ToExpenseResponses(result.Expenses),
	}
	if result.HasNext() {
		next := pageURL(r, result.Page+1)
		response.Next = &next
	}
	if result.HasPrevious() {
		prev := pageURL(r, result.Page-1)
		response.Previous = &prev
	}

	writeJSON(w, http.StatusOK, response)
}

// Recent handles GET /api/expenses/recent.
func (h *ExpenseHandler) Recent(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	expenses, err := h.svc.RecentExpenses(r.Context(), p)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToExpenseResponses(expenses))
}

// Update handles PUT and PATCH /api/expenses/{id}/update.
// PUT requires amount and category; PATCH applies only the fields sent.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req dto.ExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	expense, err := h.svc.UpdateExpense(r.Context(), p, service.UpdateExpenseInput{
		ID:             chi.URLParam(r, "id"),
		Amount:         req.Amount,
		Category:       req.Category,
		Description:    req.Description.Value,
		DescriptionSet: req.Description.Set,
		Partial:        r.Method == http.MethodPatch,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("expense_updated", "expense_id", expense.ID, "user_id", p.UserID)

	writeJSON(w, http.StatusOK, dto.ToExpenseResponse(expense))
}

// Delete handles DELETE /api/expenses/{id}/delete.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteExpense(r.Context(), p, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("expense_deleted",
		"expense_id", id,
		"user_id", p.UserID,
		"is_staff", p.IsStaff,
	)

	w.WriteHeader(http.StatusNoContent)
}

// pageURL returns the absolute URL of the request with its page parameter
// set to page. Page 1 is expressed by dropping the parameter.
func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}

	query := r.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
