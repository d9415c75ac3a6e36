// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{escape .Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {"tags": ["auth"], "summary": "Register a new account", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Log in", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/auth/logout": {
            "post": {"tags": ["auth"], "summary": "Log out", "responses": {"200": {"description": "OK"}}}
        },
        "/users/me": {
            "get": {"tags": ["users"], "summary": "Get own profile", "responses": {"200": {"description": "OK"}}}
        },
        "/users/profile": {
            "put": {"tags": ["users"], "summary": "Update own profile", "responses": {"200": {"description": "OK"}}}
        },
        "/events": {
            "get": {"tags": ["events"], "summary": "List open events", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["events"], "summary": "Publish a new event", "responses": {"201": {"description": "Created"}}}
        },
        "/events/upcoming": {
            "get": {"tags": ["events"], "summary": "List the next upcoming open events", "responses": {"200": {"description": "OK"}}}
        },
        "/events/nearby": {
            "get": {"tags": ["events"], "summary": "List open events near a point", "responses": {"200": {"description": "OK"}}}
        },
        "/events/user": {
            "get": {"tags": ["events"], "summary": "List events created by the caller", "responses": {"200": {"description": "OK"}}}
        },
        "/events/participating": {
            "get": {"tags": ["events"], "summary": "List events the caller participates in", "responses": {"200": {"description": "OK"}}}
        },
        "/events/{id}": {
            "get": {"tags": ["events"], "summary": "Get event by ID", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["events"], "summary": "Update an event", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["events"], "summary": "Delete an owned event", "responses": {"200": {"description": "OK"}}}
        },
        "/events/{id}/status": {
            "put": {"tags": ["events"], "summary": "Toggle event status between open and close", "responses": {"200": {"description": "OK"}}}
        },
        "/events/{id}/leave": {
            "delete": {"tags": ["events"], "summary": "Leave an event", "responses": {"200": {"description": "OK"}}}
        },
        "/events/{id}/participants/{participantId}": {
            "delete": {"tags": ["events"], "summary": "Remove a participant from an owned event", "responses": {"200": {"description": "OK"}}}
        },
        "/requests": {
            "post": {"tags": ["requests"], "summary": "Request to join an event", "responses": {"201": {"description": "Created"}}}
        },
        "/requests/user": {
            "get": {"tags": ["requests"], "summary": "List requests sent by the caller", "responses": {"200": {"description": "OK"}}}
        },
        "/requests/received": {
            "get": {"tags": ["requests"], "summary": "List requests received across the caller's events", "responses": {"200": {"description": "OK"}}}
        },
        "/requests/event/{eventId}": {
            "get": {"tags": ["requests"], "summary": "List requests for one event", "responses": {"200": {"description": "OK"}}}
        },
        "/requests/{id}/status": {
            "put": {"tags": ["requests"], "summary": "Accept or reject a request", "responses": {"200": {"description": "OK"}}}
        },
        "/requests/{id}": {
            "delete": {"tags": ["requests"], "summary": "Cancel a pending request", "responses": {"200": {"description": "OK"}}}
        },
        "/favorites": {
            "get": {"tags": ["favorites"], "summary": "List the caller's bookmarked events", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["favorites"], "summary": "Bookmark an event", "responses": {"201": {"description": "Created"}}}
        },
        "/favorites/{eventId}": {
            "delete": {"tags": ["favorites"], "summary": "Remove a bookmark", "responses": {"200": {"description": "OK"}}}
        },
        "/admin/users": {
            "get": {"tags": ["admin"], "summary": "List all users", "responses": {"200": {"description": "OK"}}}
        },
        "/admin/events": {
            "get": {"tags": ["admin"], "summary": "List all events", "responses": {"200": {"description": "OK"}}}
        },
        "/admin/events/{id}": {
            "delete": {"tags": ["admin"], "summary": "Delete any event", "responses": {"200": {"description": "OK"}}}
        },
        "/admin/users/{id}/toggle": {
            "put": {"tags": ["admin"], "summary": "Suspend or reactivate a user", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "JoinUp API",
	Description:      "Social event coordination API: publish events, request to join, manage participants and favorites.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
