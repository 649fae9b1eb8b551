// Package status holds the pure decision tables that gate design and
// approval status changes. Nothing here touches the database.
package status

// Design statuses.
const (
	Pending           = "Pending"
	ApprovalDrawing   = "Approval Drawing"
	SendForApproval   = "Send for Approval"
	Design            = "Design"
	Modelling         = "Modelling"
	ProductionDrawing = "Production Drawing"
	SKUGeneration     = "SKU Generation"
	BOMStage          = "BOM"
	Nesting           = "Nesting"
	Completed         = "Completed"
	Cancelled         = "Cancelled"
)

// Approval statuses.
const (
	ApprovalPending  = "Pending"
	Approved         = "Approved"
	Rejected         = "Rejected"
	OnHold           = "On Hold"
	Revised          = "Revised"
	ApprovalRequired = "Approval Required"
)

// Workflow roles.
const (
	RoleProjectManager = "Project Manager"
	RoleProjectUser    = "Project User"
	RoleDesignManager  = "Design Manager"
	RoleDesignUser     = "Design User"
	RolePlanningUser   = "Planning User"
	RoleSystemManager  = "System Manager"
)

// Design statuses reachable before and after approval. Order matters: the
// first element is the fallback Reconcile resets to.
var (
	preApproval = []string{Pending, ApprovalDrawing, SendForApproval, Cancelled}

	postApproval = []string{Design, Modelling, ProductionDrawing, SKUGeneration,
		BOMStage, Nesting, Completed, Cancelled}
)

// roleStatuses maps a workflow role to the design statuses it may set.
var roleStatuses = map[string][]string{
	RoleProjectManager: {ApprovalDrawing, SendForApproval, Design},
	RoleProjectUser:    {ApprovalDrawing, SendForApproval, Design},
	RoleDesignManager:  {SendForApproval, Modelling, ProductionDrawing, BOMStage, Nesting},
	RoleDesignUser:     {SendForApproval, Modelling, ProductionDrawing, BOMStage, Nesting},
}

// revisionFrom lists the design statuses a revision may be raised from.
var revisionFrom = []string{Design, Modelling, ProductionDrawing, BOMStage,
	Nesting, Completed}

// Allowed returns the design statuses reachable under the given approval
// status. The returned slice must not be mutated.
func Allowed(approvalStatus string) []string {
	if approvalStatus == Approved {
		return postApproval
	}
	return preApproval
}

// Member reports whether v is in set.
func Member(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Reconcile returns the design status to persist given the approval status.
// When the current design status is outside the allowed set it resets to the
// first allowed entry and reports true.
func Reconcile(designStatus, approvalStatus string) (string, bool) {
	allowed := Allowed(approvalStatus)
	if Member(allowed, designStatus) {
		return designStatus, false
	}
	return allowed[0], true
}

// Locked reports whether the item is frozen against further status edits.
func Locked(designStatus string) bool {
	return designStatus == Completed
}

// Effect is the pending consequence of an approval-status change. It is a
// value: nothing is written until the caller commits it.
type Effect struct {
	ApprovalStatus    string `json:"approval_status"`
	DesignStatus      string `json:"design_status"`
	StampApprovalDate bool   `json:"stamp_approval_date"`
	Prompt            string `json:"prompt"`
}

// ApprovalEffect returns the side effect of moving to the given approval
// status. The second return is false when the change carries no automatic
// design-status effect.
func ApprovalEffect(approvalStatus string) (Effect, bool) {
	switch approvalStatus {
	case Approved:
		return Effect{
			ApprovalStatus:    Approved,
			DesignStatus:      Design,
			StampApprovalDate: true,
			Prompt:            "Approving will move this item to the Design stage. Continue?",
		}, true
	case Rejected:
		// The design status is set directly even though On Hold is outside
		// the dropdown set; it reads as a parked state until re-approval.
		return Effect{
			ApprovalStatus: Rejected,
			DesignStatus:   OnHold,
			Prompt:         "Rejecting will put this item On Hold. Continue?",
		}, true
	case OnHold:
		return Effect{
			ApprovalStatus: OnHold,
			DesignStatus:   OnHold,
			Prompt:         "This item will be put On Hold. Continue?",
		}, true
	default:
		return Effect{ApprovalStatus: approvalStatus}, false
	}
}

// RoleAllowed reports whether any of the caller's roles permits setting the
// given design status. System Manager bypasses the table. Cancelled and
// Completed are manager-level moves.
func RoleAllowed(roles []string, designStatus string) bool {
	for _, role := range roles {
		if role == RoleSystemManager {
			return true
		}
		if designStatus == Cancelled || designStatus == Completed {
			if role == RoleProjectManager || role == RoleDesignManager {
				return true
			}
			continue
		}
		if Member(roleStatuses[role], designStatus) {
			return true
		}
	}
	return false
}

// RevisionAllowed reports whether a revision may be raised from the given
// design status.
func RevisionAllowed(designStatus string) bool {
	return Member(revisionFrom, designStatus)
}

// RevisionApprovalAllowed reports whether the caller may approve an item that
// has a pending revision request.
func RevisionApprovalAllowed(roles []string) bool {
	for _, role := range roles {
		if role == RolePlanningUser || role == RoleSystemManager {
			return true
		}
	}
	return false
}
