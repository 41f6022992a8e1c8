// Package access maps an authenticated caller to the rows it may touch.
//
// Every expense store entry point takes a model.Scope produced here, so the
// owner filter is decided in one place instead of per handler.
package access

import "github.com/spendlog/spendlog/internal/model"

// Action is an operation on expense records.
type Action string

// Actions on expense records.
const (
	ActionList   Action = "list"
	ActionRecent Action = "recent"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionReport Action = "report"
	ActionExport Action = "export"
)

// staffBypass lists the actions where staff see every user's rows.
// Updates, reports and exports stay owner-only for everyone.
var staffBypass = map[Action]bool{
	ActionList:   true,
	ActionDelete: true,
}

// ScopeFor returns the scope p may use for action.
// A nil principal gets the zero scope, which matches nothing.
func ScopeFor(p *model.Principal, action Action) model.Scope {
	if p == nil || p.UserID == "" {
		return model.Scope{}
	}
	if p.IsStaff && staffBypass[action] {
		return model.AllScope()
	}
	return model.OwnerScope(p.UserID)
}
