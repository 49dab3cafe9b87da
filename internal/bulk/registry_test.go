package bulk

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	viewer  = auth.Principal{UserID: "u-view", Level: auth.LevelViewer}
	tech    = auth.Principal{UserID: "u-tech", Level: auth.LevelTechnician}
	manager = auth.Principal{UserID: "u-mgr", Level: auth.LevelManager}
	admin   = auth.Principal{UserID: "u-admin", Level: auth.LevelAdmin}
)

func selection(user auth.Principal, statuses ...model.AssetStatus) SelectionContext {
	sel := SelectionContext{User: user}
	for i, status := range statuses {
		id := string(rune('A' + i))
		sel.AssetIDs = append(sel.AssetIDs, id)
		sel.Assets = append(sel.Assets, model.Asset{ID: id, Status: status})
	}
	return sel
}

func kinds(actions []Action) []ActionKind {
	out := make([]ActionKind, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Kind)
	}
	return out
}

func TestAvailable_EmptySelection(t *testing.T) {
	r := NewDefaultRegistry()
	for _, user := range []auth.Principal{viewer, tech, manager, admin} {
		got := r.Available(SelectionContext{User: user, Assets: []model.Asset{{ID: "x", Status: model.StatusAvailable}}})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestAvailable_AdminSeesDeclarationOrder(t *testing.T) {
	r := NewDefaultRegistry()

	got := kinds(r.Available(selection(admin, model.StatusAvailable, model.StatusInUse)))
	assert.Equal(t, []ActionKind{
		ActionAssign, ActionUnassign, ActionCheckOut, ActionCheckIn, ActionChangeStatus,
		ActionScheduleMaintenance, ActionSell, ActionRetire, ActionDelete,
	}, got)
}

func TestAvailable_BlockedStatusExcludesAction(t *testing.T) {
	r := NewDefaultRegistry()

	for _, blocked := range []model.AssetStatus{model.StatusSold, model.StatusRetired, model.StatusDisposed} {
		t.Run(string(blocked), func(t *testing.T) {
			got := kinds(r.Available(selection(admin, model.StatusAvailable, blocked)))
			for _, k := range []ActionKind{ActionAssign, ActionScheduleMaintenance, ActionSell, ActionRetire} {
				assert.NotContains(t, got, k)
			}
			assert.Contains(t, got, ActionChangeStatus)
			assert.Contains(t, got, ActionDelete)
		})
	}
}

func TestAvailable_AssignHiddenWhenSelectionHasSoldAsset(t *testing.T) {
	r := NewDefaultRegistry()
	got := kinds(r.Available(selection(manager, model.StatusAvailable, model.StatusSold)))
	assert.NotContains(t, got, ActionAssign)
}

func TestAvailable_AllowedStatuses(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name     string
		statuses []model.AssetStatus
		want     map[ActionKind]bool
	}{
		{
			name:     "all available",
			statuses: []model.AssetStatus{model.StatusAvailable, model.StatusAvailable},
			want:     map[ActionKind]bool{ActionCheckOut: true, ActionCheckIn: false, ActionUnassign: false},
		},
		{
			name:     "all in use",
			statuses: []model.AssetStatus{model.StatusInUse},
			want:     map[ActionKind]bool{ActionCheckOut: false, ActionCheckIn: true, ActionUnassign: true},
		},
		{
			name:     "one in use among maintenance",
			statuses: []model.AssetStatus{model.StatusMaintenance, model.StatusInUse},
			want:     map[ActionKind]bool{ActionCheckOut: false, ActionCheckIn: true, ActionUnassign: true},
		},
		{
			name:     "nothing allowed",
			statuses: []model.AssetStatus{model.StatusMaintenance},
			want:     map[ActionKind]bool{ActionCheckOut: false, ActionCheckIn: false, ActionUnassign: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(r.Available(selection(admin, tt.statuses...)))
			for kind, present := range tt.want {
				assert.Equal(t, present, containsKind(got, kind), "action %s", kind)
			}
		})
	}
}

func TestAvailable_AccessLevels(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		user auth.Principal
		want []ActionKind
	}{
		{user: viewer, want: []ActionKind{}},
		{user: tech, want: []ActionKind{ActionCheckOut, ActionScheduleMaintenance, ActionRetire}},
		{user: manager, want: []ActionKind{ActionAssign, ActionCheckOut, ActionChangeStatus, ActionScheduleMaintenance, ActionSell, ActionRetire}},
		{user: admin, want: []ActionKind{ActionAssign, ActionCheckOut, ActionChangeStatus, ActionScheduleMaintenance, ActionSell, ActionRetire, ActionDelete}},
	}

	for _, tt := range tests {
		t.Run(tt.user.Level.String(), func(t *testing.T) {
			got := kinds(r.Available(selection(tt.user, model.StatusAvailable)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvailable_SelectionBounds(t *testing.T) {
	r := NewRegistry([]Action{
		{Kind: ActionRetire, MinSelection: 2, MaxSelection: 3},
		{Kind: ActionDelete, MinSelection: 1},
	})

	assert.Equal(t, []ActionKind{ActionDelete}, kinds(r.Available(selection(admin, model.StatusAvailable))))
	assert.Equal(t, []ActionKind{ActionRetire, ActionDelete}, kinds(r.Available(selection(admin, model.StatusAvailable, model.StatusAvailable))))
	four := selection(admin, model.StatusAvailable, model.StatusAvailable, model.StatusAvailable, model.StatusAvailable)
	assert.Equal(t, []ActionKind{ActionDelete}, kinds(r.Available(four)))
}

func TestActionKind_IsValid(t *testing.T) {
	for _, k := range ActionKinds() {
		assert.True(t, k.IsValid(), k)
		_, ok := NewDefaultRegistry().Lookup(k)
		assert.True(t, ok, "default registry is missing %s", k)
	}
	assert.False(t, ActionKind("explode").IsValid())
}

func TestConfirmationMatches(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  bool
	}{
		{input: "DELETE 2 ASSETS", n: 2, want: true},
		{input: "delete 2 assets", n: 2, want: false},
		{input: "DELETE 2 ASSETS ", n: 2, want: false},
		{input: " DELETE 2 ASSETS", n: 2, want: false},
		{input: "DELETE 3 ASSETS", n: 2, want: false},
		{input: "", n: 2, want: false},
		{input: "DELETE 5 ASSETS", n: 5, want: true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConfirmationMatches(tt.input, tt.n), "%q for %d", tt.input, tt.n)
	}
}

func containsKind(list []ActionKind, k ActionKind) bool {
	for _, item := range list {
		if item == k {
			return true
		}
	}
	return false
}
