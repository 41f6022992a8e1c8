// Package notify delivers expense alerts to people and downstream systems.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/spendlog/spendlog/internal/model"
)

// AlertType is the message type of large expense alerts.
const AlertType = "expense.large"

// AlertMessage is the wire form of an expense alert.
// Amounts are rendered with two decimal places.
type AlertMessage struct {
	Type      string    `json:"type"`
	ExpenseID string    `json:"expense_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Amount    string    `json:"amount"`
	Category  string    `json:"category"`
	Threshold string    `json:"threshold"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAlertMessage converts an alert to its wire form.
func NewAlertMessage(a *model.ExpenseAlert) AlertMessage {
	return AlertMessage{
		Type:      AlertType,
		ExpenseID: a.ExpenseID,
		UserID:    a.UserID,
		Username:  a.Username,
		Email:     a.Email,
		Amount:    a.Amount.StringFixed(2),
		Category:  string(a.Category),
		Threshold: a.Threshold.StringFixed(2),
		CreatedAt: a.CreatedAt.UTC(),
	}
}

// LogNotifier writes alerts to the application log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the alert at warn level. It never fails.
func (n *LogNotifier) Notify(ctx context.Context, a *model.ExpenseAlert) error {
	n.logger.WarnContext(ctx, "large expense recorded",
		slog.String("expense_id", a.ExpenseID),
		slog.String("user_id", a.UserID),
		slog.String("username", a.Username),
		slog.String("email", a.Email),
		slog.String("amount", a.Amount.StringFixed(2)),
		slog.String("category", string(a.Category)),
		slog.String("threshold", a.Threshold.StringFixed(2)),
	)
	return nil
}
