package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
)

const emailLayout = `{{define "layout"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: {{.Accent}};">{{.Heading}}</h2>
{{template "body" .}}
<p style="color: #6b7280; font-size: 12px;">Best regards,<br>The ProjectHub Team</p>
</div>{{end}}`

const emailBodies = `
{{define "deadline"}}<p>Hi there,</p>
<p>This is a reminder that your task is approaching its deadline:</p>
<div style="background: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
<h3 style="margin: 0 0 10px 0; color: #1f2937;">{{.Title}}</h3>
<p style="margin: 0; color: #6b7280;">{{.Message}}</p>
</div>
<a href="{{.Link}}">View Task</a>
<p>Please make sure to complete this task on time.</p>{{end}}

{{define "project_status"}}<p>Hi there,</p>
<p>A project you're involved with has been updated:</p>
<div style="background: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
<h3 style="margin: 0 0 10px 0; color: #1f2937;">{{.Title}}</h3>
<p style="margin: 0; color: #6b7280;">{{.Message}}</p>
</div>
<a href="{{.Link}}">View Project</a>{{end}}

{{define "weekly"}}<p>Hi there,</p>
<p>Here's your weekly progress summary:</p>
<div style="background: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
<h3 style="margin: 0 0 10px 0; color: #1f2937;">{{.Title}}</h3>
{{range .Lines}}<p style="margin: 0; color: #6b7280;">{{.}}</p>
{{end}}</div>
<a href="{{.Link}}">View Dashboard</a>{{end}}

{{define "generic"}}<p>{{.Message}}</p>{{end}}
`

type emailView struct {
	Heading string
	Accent  string
	Title   string
	Message string
	Lines   []string
	Link    string
}

// EmailRenderer turns a notification into a subject and HTML body. Dates
// in subjects are shown in loc.
type EmailRenderer struct {
	frontendURL string
	loc         *time.Location
	bodies      *template.Template
}

func NewEmailRenderer(frontendURL string, loc *time.Location) *EmailRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &EmailRenderer{
		frontendURL: strings.TrimRight(frontendURL, "/"),
		loc:         loc,
		bodies:      template.Must(template.New("email").Parse(emailLayout + emailBodies)),
	}
}

// Render picks the template for n.Type. Types without a dedicated template
// use the generic one with title and message verbatim.
func (r *EmailRenderer) Render(n *domain.Notification) (subject, body string, err error) {
	view := emailView{Title: n.Title, Message: n.Message, Heading: n.Title, Accent: "#2563eb"}
	name := "generic"

	switch n.Type {
	case domain.NotificationDeadlineReminder:
		name = "deadline"
		subject = "Task Deadline Reminder - " + n.Title
		view.Heading = "Task Deadline Reminder"
		view.Link = r.frontendURL + "/tasks"
	case domain.NotificationProjectStatusChange:
		name = "project_status"
		subject = "Project Status Update - " + n.Title
		view.Heading = "Project Status Update"
		view.Accent = "#16a34a"
		view.Link = r.frontendURL + "/projects"
	case domain.NotificationWeeklyReport:
		name = "weekly"
		subject = "Weekly Progress Report - " + n.CreatedAt.In(r.loc).Format("01/02/2006")
		view.Heading = "Weekly Progress Report"
		view.Accent = "#7c3aed"
		view.Lines = strings.Split(n.Message, "\n")
		view.Link = r.frontendURL + "/dashboard"
	case domain.NotificationTaskOverdue,
		domain.NotificationProjectAssignment,
		domain.NotificationTaskAssignment,
		domain.NotificationTaskCompletion,
		domain.NotificationSystemUpdate:
		subject = n.Title
	default:
		subject = n.Title
	}

	tmpl, err := r.bodies.Clone()
	if err != nil {
		return "", "", fmt.Errorf("render email: %w", err)
	}
	if _, err := tmpl.New("body").Parse(`{{template "` + name + `" .}}`); err != nil {
		return "", "", fmt.Errorf("render email: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", view); err != nil {
		return "", "", fmt.Errorf("render email: %w", err)
	}
	return subject, buf.String(), nil
}
