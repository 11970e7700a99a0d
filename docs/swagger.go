package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/tasks": {
            "get": {"tags": ["Tasks"], "summary": "List tasks, newest first", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Tasks"], "summary": "Create a task", "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid request"}}}
        },
        "/tasks/{id}": {
            "patch": {"tags": ["Tasks"], "summary": "Update task fields", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Task not found"}}}
        },
        "/teams": {
            "get": {"tags": ["Teams"], "summary": "List teams", "responses": {"200": {"description": "OK"}}}
        },
        "/teams/{id}": {
            "get": {"tags": ["Teams"], "summary": "Get a team", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Team not found"}}}
        },
        "/profiles/{id}": {
            "get": {"tags": ["Profiles"], "summary": "Get a profile", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["Profiles"], "summary": "Update own full name", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not your profile"}}}
        },
        "/roles/{user_id}": {
            "get": {"tags": ["Profiles"], "summary": "Role of a user", "parameters": [{"name": "user_id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard": {
            "get": {"tags": ["Dashboard"], "summary": "Aggregate counts", "responses": {"200": {"description": "OK"}}}
        },
        "/realtime/{table}": {
            "get": {"tags": ["Realtime"], "summary": "Server-sent row change events", "produces": ["text/event-stream"], "parameters": [{"name": "table", "in": "path", "required": true, "type": "string"}, {"name": "event", "in": "query", "type": "string", "enum": ["INSERT", "UPDATE", "DELETE", "*"]}], "responses": {"200": {"description": "Event stream"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Taskboard API",
	Description:      "Tasks, teams, profiles and row change streams for the team task board",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
