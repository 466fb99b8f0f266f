package hold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftcrm/internal/model"
	"craftcrm/internal/progression"
)

func stateWith(status model.HoldStatus) model.HoldState {
	return model.HoldState{Status: status}
}

func TestApplyRequiresReason(t *testing.T) {
	c := NewController()

	for _, action := range []Action{ActionHold, ActionActivate, ActionDeactivate} {
		_, err := c.Apply(stateWith(model.HoldStatusActive), Request{Action: action}, 1, true)
		assert.True(t, progression.IsKind(err, progression.KindValidation), string(action))
	}
}

func TestApplyTransitions(t *testing.T) {
	c := NewController()
	req := func(a Action) Request { return Request{Action: a, Reason: "client travelling"} }

	tests := []struct {
		name      string
		from      model.HoldStatus
		action    Action
		canManage bool
		want      model.HoldStatus
		wantKind  progression.ErrorKind
	}{
		{"active to hold", model.HoldStatusActive, ActionHold, false, model.HoldStatusHold, ""},
		{"hold to active", model.HoldStatusHold, ActionActivate, true, model.HoldStatusActive, ""},
		{"hold to deactivated", model.HoldStatusHold, ActionDeactivate, true, model.HoldStatusDeactivated, ""},
		{"deactivated reactivates", model.HoldStatusDeactivated, ActionActivate, true, model.HoldStatusActive, ""},

		{"activate needs capability", model.HoldStatusHold, ActionActivate, false, "", progression.KindForbidden},
		{"deactivate needs capability", model.HoldStatusHold, ActionDeactivate, false, "", progression.KindForbidden},
		{"hold twice", model.HoldStatusHold, ActionHold, false, "", progression.KindValidation},
		{"hold a deactivated entity", model.HoldStatusDeactivated, ActionHold, false, "", progression.KindValidation},
		{"activate an active entity", model.HoldStatusActive, ActionActivate, true, "", progression.KindValidation},
		{"deactivate an active entity", model.HoldStatusActive, ActionDeactivate, true, "", progression.KindValidation},
		{"deactivate twice", model.HoldStatusDeactivated, ActionDeactivate, true, "", progression.KindValidation},
		{"unknown action", model.HoldStatusActive, Action("pause"), true, "", progression.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := c.Apply(stateWith(tt.from), req(tt.action), 7, tt.canManage)
			if tt.wantKind != "" {
				assert.True(t, progression.IsKind(err, tt.wantKind))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Status)
			assert.Equal(t, "client travelling", next.Reason)
			require.NotNil(t, next.ChangedBy)
			assert.Equal(t, 7, *next.ChangedBy)
			assert.NotNil(t, next.ChangedAt)
		})
	}
}

func TestIsBlocked(t *testing.T) {
	c := NewController()
	assert.False(t, c.IsBlocked(model.HoldStatusActive))
	assert.True(t, c.IsBlocked(model.HoldStatusHold))
	assert.True(t, c.IsBlocked(model.HoldStatusDeactivated))
}
