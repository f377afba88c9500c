package service

import (
	"errors"
	"testing"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/permission"
	"github.com/projecthub/pm-system/internal/core/ports"
)

type taskWorld struct {
	*fixture
	admin  *domain.Account
	mona   *domain.Account
	max    *domain.Account
	uma    *domain.Account
	ugo    *domain.Account
	apollo *domain.Project
	hermes *domain.Project
}

// newTaskWorld seeds two managers with one project and one user each.
func newTaskWorld(t *testing.T) *taskWorld {
	t.Helper()
	f := newFixture(t)
	w := &taskWorld{fixture: f}
	w.admin = f.seedAccount(t, "Ada", domain.RoleAdmin, "")
	w.mona = f.seedAccount(t, "Mona", domain.RoleManager, "")
	w.max = f.seedAccount(t, "Max", domain.RoleManager, "")
	w.uma = f.seedAccount(t, "Uma", domain.RoleUser, w.mona.ID)
	w.ugo = f.seedAccount(t, "Ugo", domain.RoleUser, w.max.ID)
	w.apollo = f.seedProject(t, "Apollo", w.mona.ID, domain.StatusInProgress)
	w.hermes = f.seedProject(t, "Hermes", w.max.ID, domain.StatusInProgress)
	return w
}

func TestTaskService_Create_ByProjectOwner(t *testing.T) {
	w := newTaskWorld(t)

	task, err := w.tasks.Create(w.ctx, w.mona, ports.CreateTaskInput{
		Project:        w.apollo.ID,
		Title:          "Draft brief",
		AssignedTo:     w.uma.ID,
		Priority:       domain.PriorityHigh,
		EstimatedHours: 6,
		DueDate:        timePtr(w.clock.Now().Add(48 * time.Hour)),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if task.AssignedBy != w.mona.ID || task.Status != domain.StatusPending {
		t.Fatalf("unexpected task: %+v", task)
	}

	assigned := w.notificationsOf(domain.NotificationTaskAssignment)
	if len(assigned) != 1 || assigned[0].Recipient != w.uma.ID || assigned[0].Priority != domain.NotificationPriorityHigh {
		t.Fatalf("expected a high priority assignment for the user, got %+v", assigned)
	}
	if sent := w.mailer.Sent(); len(sent) != 1 || sent[0].To != w.uma.Email {
		t.Fatalf("expected assignment email to the user, got %+v", sent)
	}
}

func TestTaskService_Create_Denials(t *testing.T) {
	w := newTaskWorld(t)

	cases := []struct {
		name   string
		actor  *domain.Account
		in     ports.CreateTaskInput
		reason permission.Reason
	}{
		{
			name:   "foreign project",
			actor:  w.mona,
			in:     ports.CreateTaskInput{Project: w.hermes.ID, Title: "x", AssignedTo: w.ugo.ID, EstimatedHours: 1},
			reason: permission.ReasonNotProjectOwner,
		},
		{
			name:   "assignee outside team",
			actor:  w.mona,
			in:     ports.CreateTaskInput{Project: w.apollo.ID, Title: "x", AssignedTo: w.ugo.ID, EstimatedHours: 1},
			reason: permission.ReasonAssigneeOutsideTeam,
		},
		{
			name:   "assignee is a manager",
			actor:  w.mona,
			in:     ports.CreateTaskInput{Project: w.apollo.ID, Title: "x", AssignedTo: w.max.ID, EstimatedHours: 1},
			reason: permission.ReasonAssigneeNotUser,
		},
		{
			name:   "user creating",
			actor:  w.uma,
			in:     ports.CreateTaskInput{Project: w.apollo.ID, Title: "x", AssignedTo: w.uma.ID, EstimatedHours: 1},
			reason: permission.ReasonRoleNotAllowed,
		},
	}
	for _, tc := range cases {
		_, err := w.tasks.Create(w.ctx, tc.actor, tc.in)
		var denied *permission.DeniedError
		if !errors.As(err, &denied) || denied.Reason != tc.reason {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.reason, err)
		}
	}

	if got := len(w.activityEntries(t)); got != 0 {
		t.Fatalf("expected no activity after denials, got %d", got)
	}
	if got := len(w.store.Notifications().All()); got != 0 {
		t.Fatalf("expected no notifications after denials, got %d", got)
	}
}

func TestTaskService_Create_Validation(t *testing.T) {
	w := newTaskWorld(t)

	if _, err := w.tasks.Create(w.ctx, w.mona, ports.CreateTaskInput{Project: "ghost", Title: "x", AssignedTo: w.uma.ID}); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
	if _, err := w.tasks.Create(w.ctx, w.mona, ports.CreateTaskInput{Project: w.apollo.ID, Title: "x", AssignedTo: "ghost"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown assignee, got %v", err)
	}
	if _, err := w.tasks.Create(w.ctx, w.mona, ports.CreateTaskInput{Project: w.apollo.ID, Title: "x", AssignedTo: w.uma.ID}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing estimate, got %v", err)
	}
}

func TestTaskService_Update_UserCompletesTask(t *testing.T) {
	w := newTaskWorld(t)
	task := w.seedTask(t, "Draft brief", w.apollo.ID, w.uma.ID, domain.StatusInProgress, nil)

	got, err := w.tasks.Update(w.ctx, w.uma, task.ID, ports.UpdateTaskInput{
		Title:       ptr("Renamed"),
		Status:      ptr(domain.StatusCompleted),
		ActualHours: ptr(5.5),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got.Title != "Draft brief" {
		t.Fatalf("expected title change ignored for a user, got %q", got.Title)
	}
	if got.Status != domain.StatusCompleted || got.CompletedAt == nil || got.ActualHours != 5.5 {
		t.Fatalf("unexpected task after completion: %+v", got)
	}

	completions := w.notificationsOf(domain.NotificationTaskCompletion)
	if len(completions) != 1 || completions[0].Recipient != w.mona.ID || completions[0].Title != "Task Completed: Draft brief" {
		t.Fatalf("expected a completion notice for the manager, got %+v", completions)
	}
	if sent := w.mailer.Sent(); len(sent) != 1 || sent[0].To != w.mona.Email {
		t.Fatalf("expected completion email to the manager, got %+v", sent)
	}

	entries := w.activityEntries(t)
	if len(entries) != 1 || entries[0].Action != domain.ActionTaskStatusChanged {
		t.Fatalf("expected a single status change entry, got %+v", entries)
	}

	reopened, err := w.tasks.Update(w.ctx, w.mona, task.ID, ports.UpdateTaskInput{Status: ptr(domain.StatusInProgress)})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if reopened.CompletedAt != nil {
		t.Fatalf("expected completion time cleared on reopen")
	}
	updates := w.notificationsOf(domain.NotificationTaskCompletion)
	if len(updates) != 2 {
		t.Fatalf("expected the assignee notified of the reopen, got %d notices", len(updates))
	}
}

func TestTaskService_AccessScoping(t *testing.T) {
	w := newTaskWorld(t)
	mine := w.seedTask(t, "Mine", w.apollo.ID, w.uma.ID, domain.StatusPending, nil)
	theirs := w.seedTask(t, "Theirs", w.hermes.ID, w.ugo.ID, domain.StatusPending, nil)

	if _, err := w.tasks.Get(w.ctx, w.uma, mine.ID); err != nil {
		t.Fatalf("expected assignee to read task, got %v", err)
	}
	_, err := w.tasks.Get(w.ctx, w.uma, theirs.ID)
	expectDenied(t, err)
	_, err = w.tasks.Get(w.ctx, w.mona, theirs.ID)
	expectDenied(t, err)
	if _, err := w.tasks.Get(w.ctx, w.mona, "ghost"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	expectDenied(t, w.tasks.Delete(w.ctx, w.uma, mine.ID))

	list := func(actor *domain.Account, q ports.TaskQuery) []*domain.Task {
		t.Helper()
		tasks, err := w.tasks.List(w.ctx, actor, q)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		return tasks
	}
	if got := list(w.admin, ports.TaskQuery{}); len(got) != 2 {
		t.Fatalf("expected admin to see 2 tasks, got %d", len(got))
	}
	if got := list(w.mona, ports.TaskQuery{}); len(got) != 1 || got[0].ID != mine.ID {
		t.Fatalf("expected manager to see own project tasks, got %+v", got)
	}
	if got := list(w.ugo, ports.TaskQuery{}); len(got) != 1 || got[0].ID != theirs.ID {
		t.Fatalf("expected user to see assigned tasks, got %+v", got)
	}
	_, err = w.tasks.List(w.ctx, w.mona, ports.TaskQuery{Project: w.hermes.ID})
	expectDenied(t, err)

	if err := w.tasks.Delete(w.ctx, w.max, theirs.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}
