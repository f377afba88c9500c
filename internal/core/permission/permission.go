// Package permission decides whether an actor may perform an action on a
// resource. Every function here is pure: no I/O, no clock, no globals.
//
// Callers load the resource first (so a missing resource surfaces as a
// not-found error), describe it with one of the Ref types, and then ask
// CanAccess. A denial carries a Reason that tests and logs can assert on.
package permission

import (
	"fmt"

	"github.com/projecthub/pm-system/internal/core/domain"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Reason explains a decision.
type Reason string

const (
	ReasonAdmin          Reason = "admin"
	ReasonProjectOwner   Reason = "project_owner"
	ReasonSubject        Reason = "subject"
	ReasonManagesAccount Reason = "manages_account"
	ReasonManagerCreates Reason = "manager_creates_user"

	ReasonNotProjectOwner     Reason = "not_project_owner"
	ReasonAssigneeNotUser     Reason = "assignee_not_user"
	ReasonAssigneeInactive    Reason = "assignee_inactive"
	ReasonAssigneeOutsideTeam Reason = "assignee_outside_team"
	ReasonNotSubject          Reason = "not_subject"
	ReasonNotManaged          Reason = "account_not_managed"
	ReasonRoleNotAllowed      Reason = "role_not_allowed"
	ReasonActionNotAllowed    Reason = "action_not_allowed"
	ReasonUnknownRole         Reason = "unknown_role"
	ReasonUnknownResource     Reason = "unknown_resource"
	ReasonInactiveActor       Reason = "inactive_actor"
)

// Actor is the authenticated caller.
type Actor struct {
	ID     string
	Role   domain.Role
	Active bool
}

// ActorOf builds an Actor from a loaded account.
func ActorOf(a *domain.Account) Actor {
	return Actor{ID: a.ID, Role: a.Role, Active: a.IsActive}
}

// Resource is implemented only by the Ref types in this package.
type Resource interface {
	resource()
}

// ProjectRef describes an existing project.
type ProjectRef struct {
	AssignedTo string
}

// NewProjectRef describes a project about to be created.
type NewProjectRef struct {
	AssignedTo string
}

// TaskRef describes an existing task and the manager owning its project.
type TaskRef struct {
	ProjectOwner string
	AssignedTo   string
}

// NewTaskRef describes a task about to be created.
type NewTaskRef struct {
	ProjectOwner string
	Assignee     AccountRef
}

// AccountRef describes an existing account.
type AccountRef struct {
	ID        string
	Role      domain.Role
	Manager   string
	CreatedBy string
	Active    bool
}

// AccountRefOf builds an AccountRef from a loaded account.
func AccountRefOf(a *domain.Account) AccountRef {
	return AccountRef{ID: a.ID, Role: a.Role, Manager: a.Manager, CreatedBy: a.CreatedBy, Active: a.IsActive}
}

func (r AccountRef) managedBy(id string) bool {
	return id != "" && (r.Manager == id || r.CreatedBy == id)
}

// NewAccountRef describes an account about to be provisioned.
type NewAccountRef struct {
	Role domain.Role
}

func (ProjectRef) resource()    {}
func (NewProjectRef) resource() {}
func (TaskRef) resource()       {}
func (NewTaskRef) resource()    {}
func (AccountRef) resource()    {}
func (NewAccountRef) resource() {}

// Decision is the outcome of CanAccess.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Err returns nil for an allow and a *DeniedError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Reason: d.Reason}
}

// DeniedError is returned for authorization failures. It matches
// domain.ErrForbidden under errors.Is.
type DeniedError struct {
	Reason Reason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access forbidden: %s", e.Reason)
}

func (e *DeniedError) Unwrap() error {
	return domain.ErrForbidden
}

func allow(r Reason) Decision { return Decision{Allowed: true, Reason: r} }
func deny(r Reason) Decision  { return Decision{Allowed: false, Reason: r} }

// CanAccess is total: every input yields a Decision and anything not
// explicitly allowed is denied.
func CanAccess(actor Actor, action Action, res Resource) Decision {
	if !actor.Active {
		return deny(ReasonInactiveActor)
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return allow(ReasonAdmin)
	case domain.RoleManager:
		return managerAccess(actor, action, res)
	case domain.RoleUser:
		return userAccess(actor, action, res)
	default:
		return deny(ReasonUnknownRole)
	}
}

func managerAccess(actor Actor, action Action, res Resource) Decision {
	switch r := res.(type) {
	case NewProjectRef:
		return deny(ReasonRoleNotAllowed)
	case ProjectRef:
		if action == ActionCreate {
			return deny(ReasonActionNotAllowed)
		}
		if r.AssignedTo != actor.ID {
			return deny(ReasonNotProjectOwner)
		}
		return allow(ReasonProjectOwner)
	case TaskRef:
		if action == ActionCreate {
			return deny(ReasonActionNotAllowed)
		}
		if r.ProjectOwner != actor.ID {
			return deny(ReasonNotProjectOwner)
		}
		return allow(ReasonProjectOwner)
	case NewTaskRef:
		if action != ActionCreate {
			return deny(ReasonActionNotAllowed)
		}
		if r.ProjectOwner != actor.ID {
			return deny(ReasonNotProjectOwner)
		}
		if r.Assignee.Role != domain.RoleUser {
			return deny(ReasonAssigneeNotUser)
		}
		if !r.Assignee.Active {
			return deny(ReasonAssigneeInactive)
		}
		if !r.Assignee.managedBy(actor.ID) {
			return deny(ReasonAssigneeOutsideTeam)
		}
		return allow(ReasonProjectOwner)
	case AccountRef:
		if r.ID == actor.ID {
			if action == ActionRead || action == ActionUpdate {
				return allow(ReasonSubject)
			}
			return deny(ReasonActionNotAllowed)
		}
		if action == ActionCreate {
			return deny(ReasonActionNotAllowed)
		}
		if r.Role != domain.RoleUser || !r.managedBy(actor.ID) {
			return deny(ReasonNotManaged)
		}
		return allow(ReasonManagesAccount)
	case NewAccountRef:
		if r.Role != domain.RoleUser {
			return deny(ReasonRoleNotAllowed)
		}
		return allow(ReasonManagerCreates)
	default:
		return deny(ReasonUnknownResource)
	}
}

func userAccess(actor Actor, action Action, res Resource) Decision {
	switch r := res.(type) {
	case ProjectRef, NewProjectRef, NewTaskRef, NewAccountRef:
		return deny(ReasonRoleNotAllowed)
	case TaskRef:
		if action != ActionRead && action != ActionUpdate {
			return deny(ReasonActionNotAllowed)
		}
		if r.AssignedTo != actor.ID {
			return deny(ReasonNotSubject)
		}
		return allow(ReasonSubject)
	case AccountRef:
		if r.ID != actor.ID {
			return deny(ReasonNotSubject)
		}
		if action != ActionRead && action != ActionUpdate {
			return deny(ReasonActionNotAllowed)
		}
		return allow(ReasonSubject)
	default:
		return deny(ReasonUnknownResource)
	}
}
