package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/model"
)

func TestExpenseRequest_Description(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue *string
	}{
		{"absent", `{"amount": 1}`, false, nil},
		{"null", `{"description": null}`, true, nil},
		{"empty", `{"description": ""}`, true, ptr("")},
		{"value", `{"description": "taxi"}`, true, ptr("taxi")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var req ExpenseRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if req.Description.Set != tt.wantSet {
				t.Errorf("Set = %v, want %v", req.Description.Set, tt.wantSet)
			}
			got := req.Description.Value
			if (got == nil) != (tt.wantValue == nil) || (got != nil && *got != *tt.wantValue) {
				t.Errorf("Value = %v, want %v", got, tt.wantValue)
			}
		})
	}
}

func TestExpenseRequest_RejectsNonStringDescription(t *testing.T) {
	t.Parallel()

	var req ExpenseRequest
	if err := json.Unmarshal([]byte(`{"description": 5}`), &req); err == nil {
		t.Error("expected error for numeric description")
	}
}

func TestToExpenseResponse(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)
	e := &model.Expense{
		ID:        "e1",
		UserID:    "u1",
		Amount:    decimal.RequireFromString("7.5"),
		Category:  model.CategoryTravel,
		Date:      time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC),
		CreatedAt: created,
		UpdatedAt: created,
	}

	data, err := json.Marshal(ToExpenseResponse(e))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if raw["amount"] != "7.50" || raw["date"] != "2024-04-02" || raw["category"] != "Travel" {
		t.Errorf("unexpected fields: %v", raw)
	}
	if v, ok := raw["description"]; !ok || v != nil {
		t.Errorf("description should be present and null, got %v", v)
	}
	if _, ok := raw["user_id"]; ok {
		t.Error("owner must not be serialized")
	}
}

func ptr(s string) *string { return &s }
