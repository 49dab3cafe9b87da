// Package bulk decides which actions apply to a multi-asset selection and
// runs a chosen action against every selected asset.
package bulk

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/model"
)

// ActionKind identifies a bulk action. The set is closed; every switch over
// it lists all kinds.
type ActionKind string

const (
	ActionAssign              ActionKind = "assign"
	ActionUnassign            ActionKind = "unassign"
	ActionCheckOut            ActionKind = "check_out"
	ActionCheckIn             ActionKind = "check_in"
	ActionChangeStatus        ActionKind = "change_status"
	ActionScheduleMaintenance ActionKind = "schedule_maintenance"
	ActionSell                ActionKind = "sell"
	ActionRetire              ActionKind = "retire"
	ActionDelete              ActionKind = "delete"
)

// ActionKinds returns every kind in declaration order.
func ActionKinds() []ActionKind {
	return []ActionKind{
		ActionAssign, ActionUnassign, ActionCheckOut, ActionCheckIn, ActionChangeStatus,
		ActionScheduleMaintenance, ActionSell, ActionRetire, ActionDelete,
	}
}

// IsValid reports whether k is a known action kind.
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionAssign, ActionUnassign, ActionCheckOut, ActionCheckIn, ActionChangeStatus,
		ActionScheduleMaintenance, ActionSell, ActionRetire, ActionDelete:
		return true
	default:
		return false
	}
}

// employeeAssignLevel is the level needed for actions that pick an employee
// on behalf of someone else.
const employeeAssignLevel = auth.LevelManager

// Action describes a bulk action and the selections it applies to.
// MaxSelection of zero means unbounded. An action uses BlockedStatuses or
// AllowedStatuses, never both.
type Action struct {
	Kind                 ActionKind          `json:"id"`
	Label                string              `json:"label"`
	MinSelection         int                 `json:"minSelection"`
	MaxSelection         int                 `json:"maxSelection,omitempty"`
	BlockedStatuses      []model.AssetStatus `json:"blockedStatuses,omitempty"`
	AllowedStatuses      []model.AssetStatus `json:"allowedStatuses,omitempty"`
	RequiresEmployee     bool                `json:"requiresEmployee"`
	RequiresConfirmation bool                `json:"requiresConfirmation"`
	RequiresDialog       bool                `json:"requiresDialog"`
	MinAccessLevel       auth.AccessLevel    `json:"minAccessLevel"`
}

var terminalStatuses = []model.AssetStatus{model.StatusSold, model.StatusRetired, model.StatusDisposed}

// DefaultActions returns the built-in action definitions in display order.
func DefaultActions() []Action {
	return []Action{
		{
			Kind:             ActionAssign,
			Label:            "Assign to Employee",
			MinSelection:     1,
			BlockedStatuses:  terminalStatuses,
			RequiresEmployee: true,
			RequiresDialog:   true,
			MinAccessLevel:   auth.LevelTechnician,
		},
		{
			Kind:                 ActionUnassign,
			Label:                "Unassign",
			MinSelection:         1,
			AllowedStatuses:      []model.AssetStatus{model.StatusInUse},
			RequiresConfirmation: true,
			MinAccessLevel:       auth.LevelTechnician,
		},
		{
			Kind:            ActionCheckOut,
			Label:           "Check Out",
			MinSelection:    1,
			AllowedStatuses: []model.AssetStatus{model.StatusAvailable},
			RequiresDialog:  true,
			MinAccessLevel:  auth.LevelTechnician,
		},
		{
			Kind:            ActionCheckIn,
			Label:           "Check In",
			MinSelection:    1,
			AllowedStatuses: []model.AssetStatus{model.StatusInUse},
			RequiresDialog:  true,
			MinAccessLevel:  auth.LevelTechnician,
		},
		{
			Kind:           ActionChangeStatus,
			Label:          "Change Status",
			MinSelection:   1,
			RequiresDialog: true,
			MinAccessLevel: auth.LevelManager,
		},
		{
			Kind:            ActionScheduleMaintenance,
			Label:           "Schedule Maintenance",
			MinSelection:    1,
			BlockedStatuses: terminalStatuses,
			RequiresDialog:  true,
			MinAccessLevel:  auth.LevelTechnician,
		},
		{
			Kind:            ActionSell,
			Label:           "Sell",
			MinSelection:    1,
			BlockedStatuses: terminalStatuses,
			RequiresDialog:  true,
			MinAccessLevel:  auth.LevelManager,
		},
		{
			Kind:                 ActionRetire,
			Label:                "Retire",
			MinSelection:         1,
			BlockedStatuses:      terminalStatuses,
			RequiresConfirmation: true,
			MinAccessLevel:       auth.LevelTechnician,
		},
		{
			Kind:                 ActionDelete,
			Label:                "Delete",
			MinSelection:         1,
			RequiresConfirmation: true,
			RequiresDialog:       true,
			MinAccessLevel:       auth.LevelAdmin,
		},
	}
}

// SelectionContext is what the registry evaluates actions against.
type SelectionContext struct {
	AssetIDs []string
	Assets   []model.Asset
	User     auth.Principal
}

// Registry holds the action definitions.
type Registry struct {
	actions []Action
	byKind  map[ActionKind]Action
}

// NewRegistry creates a registry over defs. Declaration order is kept.
func NewRegistry(defs []Action) *Registry {
	r := &Registry{
		actions: make([]Action, len(defs)),
		byKind:  make(map[ActionKind]Action, len(defs)),
	}
	copy(r.actions, defs)
	for _, def := range defs {
		r.byKind[def.Kind] = def
	}
	return r
}

// NewDefaultRegistry creates a registry over DefaultActions.
func NewDefaultRegistry() *Registry {
	return NewRegistry(DefaultActions())
}

// Lookup returns the definition of kind.
func (r *Registry) Lookup(kind ActionKind) (Action, bool) {
	a, ok := r.byKind[kind]
	return a, ok
}

// Actions returns all definitions in declaration order.
func (r *Registry) Actions() []Action {
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Available returns the actions applicable to sel, in declaration order.
// It never fails; an action whose predicates do not hold is left out.
func (r *Registry) Available(sel SelectionContext) []Action {
	available := []Action{}
	if len(sel.AssetIDs) == 0 {
		return available
	}
	for _, action := range r.actions {
		if action.appliesTo(sel) {
			available = append(available, action)
		}
	}
	return available
}

func (a Action) appliesTo(sel SelectionContext) bool {
	return a.permits(sel.User) &&
		a.acceptsCount(len(sel.AssetIDs)) &&
		a.acceptsStatuses(sel.Assets)
}

// permits reports whether user may run the action at all.
func (a Action) permits(user auth.Principal) bool {
	if !user.Level.Allows(a.MinAccessLevel) {
		return false
	}
	if a.RequiresEmployee && !user.Level.Allows(employeeAssignLevel) {
		return false
	}
	return true
}

func (a Action) acceptsCount(n int) bool {
	if n < a.MinSelection {
		return false
	}
	if a.MaxSelection > 0 && n > a.MaxSelection {
		return false
	}
	return true
}

func (a Action) acceptsStatuses(assets []model.Asset) bool {
	if len(a.BlockedStatuses) > 0 {
		for _, asset := range assets {
			if containsStatus(a.BlockedStatuses, asset.Status) {
				return false
			}
		}
	}
	if len(a.AllowedStatuses) > 0 {
		for _, asset := range assets {
			if containsStatus(a.AllowedStatuses, asset.Status) {
				return true
			}
		}
		return false
	}
	return true
}

func containsStatus(statuses []model.AssetStatus, s model.AssetStatus) bool {
	for _, status := range statuses {
		if status == s {
			return true
		}
	}
	return false
}
