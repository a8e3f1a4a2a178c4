package service

import "errors"

// ErrPermissionDenied indicates the actor lacks the capability an operation
// requires.
var ErrPermissionDenied = errors.New("permission denied")

// Capabilities consulted by the engine.
const (
	CapApproveChange   = "canApproveChange"
	CapRejectChange    = "canRejectChange"
	CapRestoreBaseline = "canRestoreBaseline"
	CapEditTabs        = "canEditTabs1to5"
)

// AuthorizationPort answers capability checks for the current actor. The
// engine gates approve, reject, restore and protection toggling on it;
// everything else is open.
type AuthorizationPort interface {
	CheckPermission(capability string) bool
	IsPMO() bool
}

// Actor identifies who performs operations, recorded on every log entry,
// version and request.
type Actor struct {
	Name string
	Role string
}

// roleCapabilities maps the shipped roles onto capability sets.
var roleCapabilities = map[string]map[string]bool{
	"pmo": {
		CapApproveChange:   true,
		CapRejectChange:    true,
		CapRestoreBaseline: true,
		CapEditTabs:        true,
	},
	"editor": {
		CapEditTabs: true,
	},
	"viewer": {},
}

// StaticAuthorization is the config-backed AuthorizationPort: a fixed role
// resolved once at startup.
type StaticAuthorization struct {
	Role string
}

func (a StaticAuthorization) CheckPermission(capability string) bool {
	return roleCapabilities[a.Role][capability]
}

func (a StaticAuthorization) IsPMO() bool {
	return a.Role == "pmo"
}
