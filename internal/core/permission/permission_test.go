package permission

import (
	"errors"
	"testing"

	"github.com/projecthub/pm-system/internal/core/domain"
)

var (
	admin   = Actor{ID: "a1", Role: domain.RoleAdmin, Active: true}
	manager = Actor{ID: "m1", Role: domain.RoleManager, Active: true}
	user    = Actor{ID: "u1", Role: domain.RoleUser, Active: true}
)

func teamMember() AccountRef {
	return AccountRef{ID: "u1", Role: domain.RoleUser, Manager: "m1", Active: true}
}

func TestCanAccess_TotalAndDeterministic(t *testing.T) {
	actors := []Actor{
		admin, manager, user,
		{ID: "x", Role: "guest", Active: true},
		{ID: "m1", Role: domain.RoleManager, Active: false},
		{},
	}
	actions := []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete, "archive"}
	resources := []Resource{
		ProjectRef{AssignedTo: "m1"},
		ProjectRef{AssignedTo: "m2"},
		NewProjectRef{AssignedTo: "m1"},
		TaskRef{ProjectOwner: "m1", AssignedTo: "u1"},
		TaskRef{ProjectOwner: "m2", AssignedTo: "u2"},
		NewTaskRef{ProjectOwner: "m1", Assignee: teamMember()},
		NewTaskRef{ProjectOwner: "m1", Assignee: AccountRef{ID: "u9", Role: domain.RoleUser, Active: true}},
		AccountRef{ID: "u1", Role: domain.RoleUser, CreatedBy: "m1", Active: true},
		AccountRef{ID: "m1", Role: domain.RoleManager, Active: true},
		NewAccountRef{Role: domain.RoleUser},
		NewAccountRef{Role: domain.RoleManager},
		nil,
	}

	for _, a := range actors {
		for _, act := range actions {
			for _, r := range resources {
				first := CanAccess(a, act, r)
				second := CanAccess(a, act, r)
				if first != second {
					t.Fatalf("non-deterministic decision for %+v %s %#v", a, act, r)
				}
				if first.Reason == "" {
					t.Fatalf("decision without reason for %+v %s %#v", a, act, r)
				}
				if !first.Allowed && first.Err() == nil {
					t.Fatalf("deny must produce an error")
				}
			}
		}
	}
}

func TestCanAccess_AdminAllowsEverything(t *testing.T) {
	d := CanAccess(admin, ActionDelete, ProjectRef{AssignedTo: "someone"})
	if !d.Allowed || d.Reason != ReasonAdmin {
		t.Fatalf("expected admin allow, got %+v", d)
	}
}

func TestCanAccess_InactiveActorDenied(t *testing.T) {
	d := CanAccess(Actor{ID: "a1", Role: domain.RoleAdmin}, ActionRead, ProjectRef{})
	if d.Allowed || d.Reason != ReasonInactiveActor {
		t.Fatalf("expected inactive deny, got %+v", d)
	}
}

func TestCanAccess_ManagerProject(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		res    Resource
		allow  bool
		reason Reason
	}{
		{"owner reads", ActionRead, ProjectRef{AssignedTo: "m1"}, true, ReasonProjectOwner},
		{"owner deletes", ActionDelete, ProjectRef{AssignedTo: "m1"}, true, ReasonProjectOwner},
		{"other manager's project", ActionUpdate, ProjectRef{AssignedTo: "m2"}, false, ReasonNotProjectOwner},
		{"create even for self", ActionCreate, NewProjectRef{AssignedTo: "m1"}, false, ReasonRoleNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanAccess(manager, tt.action, tt.res)
			if d.Allowed != tt.allow || d.Reason != tt.reason {
				t.Fatalf("got %+v, want allow=%v reason=%s", d, tt.allow, tt.reason)
			}
		})
	}
}

func TestCanAccess_ManagerTaskCreation(t *testing.T) {
	tests := []struct {
		name   string
		ref    NewTaskRef
		allow  bool
		reason Reason
	}{
		{
			name:   "own project, own team member",
			ref:    NewTaskRef{ProjectOwner: "m1", Assignee: teamMember()},
			allow:  true,
			reason: ReasonProjectOwner,
		},
		{
			name:   "team member via created_by",
			ref:    NewTaskRef{ProjectOwner: "m1", Assignee: AccountRef{ID: "u2", Role: domain.RoleUser, CreatedBy: "m1", Active: true}},
			allow:  true,
			reason: ReasonProjectOwner,
		},
		{
			name:   "project owned by someone else",
			ref:    NewTaskRef{ProjectOwner: "m2", Assignee: teamMember()},
			reason: ReasonNotProjectOwner,
		},
		{
			name:   "assignee outside hierarchy",
			ref:    NewTaskRef{ProjectOwner: "m1", Assignee: AccountRef{ID: "u3", Role: domain.RoleUser, Manager: "m2", CreatedBy: "a1", Active: true}},
			reason: ReasonAssigneeOutsideTeam,
		},
		{
			name:   "assignee is a manager",
			ref:    NewTaskRef{ProjectOwner: "m1", Assignee: AccountRef{ID: "m3", Role: domain.RoleManager, CreatedBy: "m1", Active: true}},
			reason: ReasonAssigneeNotUser,
		},
		{
			name:   "assignee deactivated",
			ref:    NewTaskRef{ProjectOwner: "m1", Assignee: AccountRef{ID: "u1", Role: domain.RoleUser, Manager: "m1"}},
			reason: ReasonAssigneeInactive,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanAccess(manager, ActionCreate, tt.ref)
			if d.Allowed != tt.allow || d.Reason != tt.reason {
				t.Fatalf("got %+v, want allow=%v reason=%s", d, tt.allow, tt.reason)
			}
		})
	}
}

func TestCanAccess_ManagerAccounts(t *testing.T) {
	if d := CanAccess(manager, ActionCreate, NewAccountRef{Role: domain.RoleUser}); !d.Allowed {
		t.Errorf("manager should provision users, got %+v", d)
	}
	if d := CanAccess(manager, ActionCreate, NewAccountRef{Role: domain.RoleManager}); d.Allowed || d.Reason != ReasonRoleNotAllowed {
		t.Errorf("manager must not provision managers, got %+v", d)
	}
	if d := CanAccess(manager, ActionDelete, teamMember()); !d.Allowed || d.Reason != ReasonManagesAccount {
		t.Errorf("manager should manage team member, got %+v", d)
	}
	outsider := AccountRef{ID: "u5", Role: domain.RoleUser, Manager: "m2", Active: true}
	if d := CanAccess(manager, ActionRead, outsider); d.Allowed || d.Reason != ReasonNotManaged {
		t.Errorf("expected not managed, got %+v", d)
	}
	self := AccountRef{ID: "m1", Role: domain.RoleManager, Active: true}
	if d := CanAccess(manager, ActionUpdate, self); !d.Allowed || d.Reason != ReasonSubject {
		t.Errorf("manager should update self, got %+v", d)
	}
	if d := CanAccess(manager, ActionDelete, self); d.Allowed {
		t.Errorf("manager must not deactivate self")
	}
}

func TestCanAccess_User(t *testing.T) {
	own := TaskRef{ProjectOwner: "m1", AssignedTo: "u1"}
	other := TaskRef{ProjectOwner: "m1", AssignedTo: "u2"}

	if d := CanAccess(user, ActionUpdate, own); !d.Allowed || d.Reason != ReasonSubject {
		t.Errorf("user should update own task, got %+v", d)
	}
	if d := CanAccess(user, ActionRead, other); d.Allowed || d.Reason != ReasonNotSubject {
		t.Errorf("expected not_subject, got %+v", d)
	}
	if d := CanAccess(user, ActionDelete, own); d.Allowed || d.Reason != ReasonActionNotAllowed {
		t.Errorf("user must not delete tasks, got %+v", d)
	}
	if d := CanAccess(user, ActionRead, ProjectRef{AssignedTo: "m1"}); d.Allowed || d.Reason != ReasonRoleNotAllowed {
		t.Errorf("user must not read projects, got %+v", d)
	}
	if d := CanAccess(user, ActionUpdate, AccountRef{ID: "u1", Role: domain.RoleUser, Active: true}); !d.Allowed {
		t.Errorf("user should update own account, got %+v", d)
	}
	if d := CanAccess(user, ActionRead, AccountRef{ID: "u2"}); d.Allowed || d.Reason != ReasonNotSubject {
		t.Errorf("expected not_subject, got %+v", d)
	}
}

func TestDecision_ErrMatchesForbidden(t *testing.T) {
	err := CanAccess(user, ActionCreate, NewTaskRef{}).Err()
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	var denied *DeniedError
	if !errors.As(err, &denied) || denied.Reason != ReasonRoleNotAllowed {
		t.Fatalf("expected role_not_allowed reason, got %v", err)
	}
}

func TestTaskUpdateFields(t *testing.T) {
	u := TaskUpdateFields(domain.RoleUser)
	if !u.Has(FieldStatus) || !u.Has(FieldActualHours) || u.Has(FieldTitle) {
		t.Errorf("unexpected user field set: %v", u)
	}
	m := TaskUpdateFields(domain.RoleManager)
	if m.Has(FieldActualHours) || !m.Has(FieldDueDate) {
		t.Errorf("unexpected manager field set: %v", m)
	}
	if len(TaskUpdateFields(domain.RoleAdmin)) != 6 {
		t.Errorf("admin should have six task fields")
	}
	if len(TaskUpdateFields("guest")) != 0 {
		t.Errorf("unknown role should have no fields")
	}
}

func TestProjectAndAccountFields(t *testing.T) {
	if ProjectUpdateFields(domain.RoleManager).Has(FieldAssignedTo) {
		t.Errorf("manager must not reassign projects")
	}
	if !ProjectUpdateFields(domain.RoleAdmin).Has(FieldAssignedTo) {
		t.Errorf("admin should reassign projects")
	}
	if AccountUpdateFields(domain.RoleUser, true).Has(FieldRole) {
		t.Errorf("user must not change own role")
	}
	if AccountUpdateFields(domain.RoleManager, false).Has(FieldRole) {
		t.Errorf("manager must not change roles")
	}
	if !AccountUpdateFields(domain.RoleAdmin, false).Has(FieldRole) {
		t.Errorf("admin should change roles")
	}
}
