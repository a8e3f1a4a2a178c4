package domain

type BaselineStatus string

const (
	BaselineDraft     BaselineStatus = "draft"
	BaselineModified  BaselineStatus = "modified"
	BaselineValidated BaselineStatus = "validated"
)

type VersionStatus string

const (
	VersionActive    VersionStatus = "active"
	VersionArchived  VersionStatus = "archived"
	VersionSuspended VersionStatus = "suspended"
	VersionRejected  VersionStatus = "rejected"
)

type VersionChangeType string

const (
	ChangeStructural VersionChangeType = "structural"
	ChangeBudgetary  VersionChangeType = "budgetary"
	ChangePlanning   VersionChangeType = "planning"
	ChangeGovernance VersionChangeType = "governance"
	ChangeMixed      VersionChangeType = "mixed"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type RequestChangeType string

const (
	RequestMinor    RequestChangeType = "minor"
	RequestMajor    RequestChangeType = "major"
	RequestCritical RequestChangeType = "critical"
)

type ActionType string

const (
	ActionCreated   ActionType = "created"
	ActionModified  ActionType = "modified"
	ActionDeleted   ActionType = "deleted"
	ActionValidated ActionType = "validated"
	ActionRejected  ActionType = "rejected"
)

type RelationType string

const (
	FinishToStart  RelationType = "finish_to_start"
	StartToStart   RelationType = "start_to_start"
	FinishToFinish RelationType = "finish_to_finish"
	StartToFinish  RelationType = "start_to_finish"
)

// ValidRelationTypes is the canonical set of accepted predecessor relation
// strings. Relations are advisory metadata; no dates are derived from them.
var ValidRelationTypes = map[string]bool{
	"finish_to_start": true, "start_to_start": true,
	"finish_to_finish": true, "start_to_finish": true,
}

// ValidRequestChangeTypes is the canonical set of accepted change request types.
var ValidRequestChangeTypes = map[string]bool{
	"minor": true, "major": true, "critical": true,
}
