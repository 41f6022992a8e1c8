package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed expense categories.
type Category string

// Expense categories.
const (
	CategoryFood          Category = "Food"
	CategoryTravel        Category = "Travel"
	CategoryRent          Category = "Rent"
	CategoryShopping      Category = "Shopping"
	CategoryUtilities     Category = "Utilities"
	CategoryEntertainment Category = "Entertainment"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTravel,
	CategoryRent,
	CategoryShopping,
	CategoryUtilities,
	CategoryEntertainment,
}

// IsValid returns true if c is one of the known categories.
// Matching is exact; "food" is not a category.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Expense is a single recorded expense.
// UserID and Date are assigned at creation and never change.
type Expense struct {
	ID          string
	UserID      string
	Amount      decimal.Decimal
	Category    Category
	Description *string
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DateString returns the entry date as YYYY-MM-DD.
func (e *Expense) DateString() string {
	return e.Date.Format(DateLayout)
}

// DescriptionText returns the description or an empty string.
func (e *Expense) DescriptionText() string {
	if e.Description == nil {
		return ""
	}
	return *e.Description
}

// DateLayout is the wire and export format for entry dates.
const DateLayout = "2006-01-02"

// ExpenseAlert is sent when a newly created expense crosses the alert threshold.
type ExpenseAlert struct {
	ExpenseID string          `json:"expense_id"`
	UserID    string          `json:"user_id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Amount    decimal.Decimal `json:"amount"`
	Category  Category        `json:"category"`
	Threshold decimal.Decimal `json:"threshold"`
	CreatedAt time.Time       `json:"created_at"`
}
