package permission

import "github.com/projecthub/pm-system/internal/core/domain"

// Field names an updatable attribute. Updates touching a field outside the
// actor's set are dropped, not rejected.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldDueDate     Field = "due_date"
	FieldActualHours Field = "actual_hours"
	FieldStartDate   Field = "start_date"
	FieldEndDate     Field = "end_date"
	FieldAssignedTo  Field = "assigned_to"
	FieldName        Field = "name"
	FieldEmail       Field = "email"
	FieldRole        Field = "role"
	FieldIsActive    Field = "is_active"
	FieldManager     Field = "manager"
)

// FieldSet is a set of updatable fields.
type FieldSet map[Field]bool

func (s FieldSet) Has(f Field) bool { return s[f] }

func fields(fs ...Field) FieldSet {
	out := make(FieldSet, len(fs))
	for _, f := range fs {
		out[f] = true
	}
	return out
}

// TaskUpdateFields returns what each role may change on a task it can update.
func TaskUpdateFields(role domain.Role) FieldSet {
	switch role {
	case domain.RoleAdmin:
		return fields(FieldStatus, FieldActualHours, FieldPriority, FieldDueDate, FieldTitle, FieldDescription)
	case domain.RoleManager:
		return fields(FieldStatus, FieldPriority, FieldDueDate, FieldTitle, FieldDescription)
	case domain.RoleUser:
		return fields(FieldStatus, FieldActualHours)
	default:
		return FieldSet{}
	}
}

// ProjectUpdateFields returns what each role may change on a project.
// Only an admin can reassign.
func ProjectUpdateFields(role domain.Role) FieldSet {
	switch role {
	case domain.RoleAdmin:
		return fields(FieldTitle, FieldDescription, FieldStatus, FieldPriority, FieldStartDate, FieldEndDate, FieldAssignedTo)
	case domain.RoleManager:
		return fields(FieldTitle, FieldDescription, FieldStatus, FieldPriority, FieldStartDate, FieldEndDate)
	default:
		return FieldSet{}
	}
}

// AccountUpdateFields returns what the actor may change on an account.
// self reports whether the actor is editing their own account.
func AccountUpdateFields(role domain.Role, self bool) FieldSet {
	switch {
	case role == domain.RoleAdmin && self:
		return fields(FieldName, FieldEmail)
	case role == domain.RoleAdmin:
		return fields(FieldName, FieldEmail, FieldRole, FieldIsActive, FieldManager)
	case role == domain.RoleManager && !self:
		return fields(FieldName, FieldEmail, FieldIsActive)
	case role == domain.RoleManager, role == domain.RoleUser:
		return fields(FieldName, FieldEmail)
	default:
		return FieldSet{}
	}
}
