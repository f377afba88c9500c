// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/server/main.go -o internal/api/docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user"}},
        "/api/auth/login": {"post": {"tags": ["auth"], "summary": "Login"}},
        "/api/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Logout"}},
        "/api/auth/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current account"}},
        "/api/users": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "List accounts"},
            "post": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Create an account"}
        },
        "/api/users/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get an account"},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update an account"},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Deactivate an account"}
        },
        "/api/users/{id}/password": {"put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Change password"}},
        "/api/projects": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "List projects"},
            "post": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "Create a project"}
        },
        "/api/projects/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "Get a project"},
            "put": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "Update a project"},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "Delete a project"}
        },
        "/api/projects/{id}/tasks": {"get": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "List project tasks"}},
        "/api/tasks": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "List tasks"},
            "post": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Create a task"}
        },
        "/api/tasks/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Get a task"},
            "put": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Update a task"},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Delete a task"}
        },
        "/api/notifications": {"get": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "List notifications"}},
        "/api/notifications/unread-count": {"get": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Unread notification count"}},
        "/api/notifications/read-all": {"put": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Mark all notifications read"}},
        "/api/notifications/{id}/read": {"put": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Mark a notification read"}},
        "/api/notifications/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Delete a notification"}},
        "/api/notifications/test-email": {"post": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Send a test email"}},
        "/api/activities": {"get": {"security": [{"BearerAuth": []}], "tags": ["activities"], "summary": "List activity"}},
        "/api/activities/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["activities"], "summary": "Activity statistics"}},
        "/api/reports": {"get": {"security": [{"BearerAuth": []}], "tags": ["reports"], "summary": "Progress report"}},
        "/api/settings": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["settings"], "summary": "Get settings"},
            "put": {"security": [{"BearerAuth": []}], "tags": ["settings"], "summary": "Update settings"}
        },
        "/api/settings/reload": {"post": {"security": [{"BearerAuth": []}], "tags": ["settings"], "summary": "Reload settings from the store"}},
        "/api/settings/defaults/{kind}": {"get": {"security": [{"BearerAuth": []}], "tags": ["settings"], "summary": "Form defaults"}},
        "/api/scheduler": {"get": {"security": [{"BearerAuth": []}], "tags": ["scheduler"], "summary": "Scheduler status"}},
        "/api/scheduler/{name}/run": {"post": {"security": [{"BearerAuth": []}], "tags": ["scheduler"], "summary": "Run a trigger"}},
        "/health": {"get": {"tags": ["health"], "summary": "Liveness"}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness"}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ProjectHub API",
	Description:      "Role-based project and task management with notifications and scheduled reminders.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
