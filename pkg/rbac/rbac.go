package rbac

// Capability names a single privileged action. The progression engine
// consumes capabilities as booleans; role names never reach it.
type Capability string

const (
	// CapOverrideForwardOnly allows decreasing a percentage sub-stage.
	CapOverrideForwardOnly Capability = "progression:override_forward_only"
	// CapManageHold allows Activate and Deactivate hold actions.
	// Placing an entity on hold needs no capability.
	CapManageHold Capability = "hold:manage"
	// CapReplayOutbox allows re-dispatching failed outbox events.
	CapReplayOutbox Capability = "outbox:replay"
)

// Role constants. Roles are resolved to capabilities here, once, at the
// boundary; the core only ever sees capability booleans.
const (
	RoleAdmin      = "admin"
	RoleSales      = "sales"
	RoleDesigner   = "designer"
	RoleProduction = "production"
	RoleInstaller  = "installer"
)

var roleCapabilities = map[string][]Capability{
	RoleAdmin: {
		CapOverrideForwardOnly,
		CapManageHold,
		CapReplayOutbox,
	},
	RoleSales:      {},
	RoleDesigner:   {},
	RoleProduction: {},
	RoleInstaller:  {},
}

// Actor is the authenticated caller as seen by the engine: identity for
// activity attribution plus resolved capabilities.
type Actor struct {
	ID   int
	Name string
	Role string

	caps map[Capability]bool
}

// ResolveActor builds an Actor from an opaque role string. Unknown roles
// resolve to no capabilities.
func ResolveActor(id int, name, role string) Actor {
	caps := make(map[Capability]bool)
	for _, c := range roleCapabilities[role] {
		caps[c] = true
	}
	return Actor{ID: id, Name: name, Role: role, caps: caps}
}

// Has reports whether the actor holds the capability.
func (a Actor) Has(c Capability) bool {
	return a.caps[c]
}

// KnownRole reports whether the role is one this deployment recognizes.
func KnownRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}
