package model

import (
	"testing"
	"time"
)

func TestCategory_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		category Category
		want     bool
	}{
		{"food", CategoryFood, true},
		{"travel", CategoryTravel, true},
		{"rent", CategoryRent, true},
		{"shopping", CategoryShopping, true},
		{"utilities", CategoryUtilities, true},
		{"entertainment", CategoryEntertainment, true},
		{"lowercase is not exact", Category("food"), false},
		{"trailing space", Category("Food "), false},
		{"empty", Category(""), false},
		{"unknown", Category("Groceries"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.category.IsValid(); got != tt.want {
				t.Errorf("Category(%q).IsValid() = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestExpense_DescriptionText(t *testing.T) {
	t.Parallel()

	e := &Expense{}
	if e.DescriptionText() != "" {
		t.Errorf("nil description should render empty, got %q", e.DescriptionText())
	}

	lunch := "Lunch"
	e.Description = &lunch
	if e.DescriptionText() != "Lunch" {
		t.Errorf("DescriptionText() = %q, want Lunch", e.DescriptionText())
	}
}

func TestExpense_DateString(t *testing.T) {
	t.Parallel()

	e := &Expense{Date: time.Date(2024, time.April, 3, 15, 4, 5, 0, time.UTC)}
	if got := e.DateString(); got != "2024-04-03" {
		t.Errorf("DateString() = %s, want 2024-04-03", got)
	}
}

func TestParseMonth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Month
		wantErr bool
	}{
		{"2024-04", Month{Year: 2024, Month: time.April}, false},
		{"1999-12", Month{Year: 1999, Month: time.December}, false},
		{"2024-13", Month{}, true},
		{"2024-4", Month{}, true},
		{"2024/04", Month{}, true},
		{"April 2024", Month{}, true},
		{"", Month{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseMonth(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseMonth(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonth(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMonth(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMonth_Bounds(t *testing.T) {
	t.Parallel()

	m := Month{Year: 2024, Month: time.December}

	if got := m.Start(); !got.Equal(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start() = %v", got)
	}
	if got := m.End(); !got.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("End() = %v, want first of next year", got)
	}
	if m.String() != "2024-12" {
		t.Errorf("String() = %s, want 2024-12", m.String())
	}
}

func TestScope_Allows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		scope Scope
		owner string
		want  bool
	}{
		{"owner matches", OwnerScope("u1"), "u1", true},
		{"other owner", OwnerScope("u1"), "u2", false},
		{"unrestricted", AllScope(), "u2", true},
		{"zero scope matches nothing", Scope{}, "", false},
		{"zero scope with owner", Scope{}, "u1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.scope.Allows(tt.owner); got != tt.want {
				t.Errorf("Allows(%q) = %v, want %v", tt.owner, got, tt.want)
			}
		})
	}
}
