package status

import "testing"

func TestAllowedSets(t *testing.T) {
	approved := Allowed(Approved)
	if len(approved) != 8 {
		t.Fatalf("expected 8 post-approval statuses, got %d", len(approved))
	}
	if approved[0] != Design {
		t.Errorf("post-approval fallback should be Design, got %s", approved[0])
	}

	for _, as := range []string{ApprovalPending, Rejected, OnHold, Revised, "", "garbage"} {
		set := Allowed(as)
		if len(set) != 4 {
			t.Errorf("approval_status=%q: expected 4 pre-approval statuses, got %d", as, len(set))
		}
		if set[0] != Pending {
			t.Errorf("approval_status=%q: fallback should be Pending, got %s", as, set[0])
		}
	}

	if Member(Allowed(Rejected), Design) {
		t.Error("Design must not be reachable while rejected")
	}
	if !Member(Allowed(Approved), Completed) {
		t.Error("Completed must be reachable once approved")
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		design   string
		approval string
		want     string
		reset    bool
	}{
		{Modelling, Approved, Modelling, false},
		{Modelling, ApprovalPending, Pending, true},
		{Pending, ApprovalPending, Pending, false},
		{SendForApproval, Approved, Design, true},
		{Cancelled, Approved, Cancelled, false},
		{Cancelled, Rejected, Cancelled, false},
	}
	for _, tt := range tests {
		got, reset := Reconcile(tt.design, tt.approval)
		if got != tt.want || reset != tt.reset {
			t.Errorf("Reconcile(%q, %q) = (%q, %v), want (%q, %v)",
				tt.design, tt.approval, got, reset, tt.want, tt.reset)
		}
	}
}

func TestLocked(t *testing.T) {
	if !Locked(Completed) {
		t.Error("Completed must lock the item")
	}
	for _, ds := range []string{Pending, Design, Modelling, Cancelled, ""} {
		if Locked(ds) {
			t.Errorf("%q must not lock the item", ds)
		}
	}
}

func TestApprovalEffect(t *testing.T) {
	eff, ok := ApprovalEffect(Approved)
	if !ok {
		t.Fatal("Approved must carry an effect")
	}
	if eff.DesignStatus != Design || !eff.StampApprovalDate {
		t.Errorf("Approved effect = %+v, want Design + approval date stamp", eff)
	}

	eff, ok = ApprovalEffect(Rejected)
	if !ok || eff.DesignStatus != OnHold || eff.StampApprovalDate {
		t.Errorf("Rejected effect = %+v, want On Hold without date stamp", eff)
	}

	eff, ok = ApprovalEffect(OnHold)
	if !ok || eff.DesignStatus != OnHold {
		t.Errorf("On Hold effect = %+v, want On Hold", eff)
	}

	if _, ok := ApprovalEffect(ApprovalPending); ok {
		t.Error("Pending must not carry an automatic effect")
	}
	if _, ok := ApprovalEffect(Revised); ok {
		t.Error("Revised must not carry an automatic effect")
	}
}

func TestRoleAllowed(t *testing.T) {
	tests := []struct {
		roles  []string
		status string
		want   bool
	}{
		{[]string{RoleProjectManager}, ApprovalDrawing, true},
		{[]string{RoleProjectUser}, SendForApproval, true},
		{[]string{RoleProjectManager}, Design, true},
		{[]string{RoleProjectManager}, Modelling, false},
		{[]string{RoleDesignUser}, Modelling, true},
		{[]string{RoleDesignManager}, BOMStage, true},
		{[]string{RoleDesignUser}, Design, false},
		{[]string{RoleDesignManager}, Completed, true},
		{[]string{RoleDesignUser}, Completed, false},
		{[]string{RoleProjectManager}, Cancelled, true},
		{[]string{RoleSystemManager}, Modelling, true},
		{nil, Design, false},
	}
	for _, tt := range tests {
		if got := RoleAllowed(tt.roles, tt.status); got != tt.want {
			t.Errorf("RoleAllowed(%v, %q) = %v, want %v", tt.roles, tt.status, got, tt.want)
		}
	}
}

func TestRevisionAllowed(t *testing.T) {
	allowed := []string{Design, Modelling, ProductionDrawing, BOMStage, Nesting, Completed}
	for _, ds := range allowed {
		if !RevisionAllowed(ds) {
			t.Errorf("revision from %q must be allowed", ds)
		}
	}
	for _, ds := range []string{Pending, ApprovalDrawing, SendForApproval, Cancelled, SKUGeneration} {
		if RevisionAllowed(ds) {
			t.Errorf("revision from %q must be rejected", ds)
		}
	}
}

func TestRevisionApprovalAllowed(t *testing.T) {
	if !RevisionApprovalAllowed([]string{RolePlanningUser}) {
		t.Error("Planning User must be able to approve revisions")
	}
	if !RevisionApprovalAllowed([]string{RoleSystemManager}) {
		t.Error("System Manager must be able to approve revisions")
	}
	if RevisionApprovalAllowed([]string{RoleDesignManager, RoleProjectManager}) {
		t.Error("design/project roles must not approve revisions")
	}
}
