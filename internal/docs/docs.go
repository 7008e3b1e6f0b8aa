// Package docs is generated by swaggo/swag from the handler annotations.
// Regenerate with: swag init -g cmd/api/main.go -o internal/docs
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
        "/clinics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["clinics"],
                "summary": "List clinics",
                "parameters": [
                    {"type": "string", "description": "today | upcoming | completed | all", "name": "filter", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/clinics/{clinicID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["appointments"],
                "summary": "Show a clinic with its appointment list",
                "parameters": [
                    {"type": "string", "name": "clinicID", "in": "path", "required": true},
                    {"type": "string", "description": "remaining | checked_in | complete | all", "name": "filter", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/clinics/{clinicID}/status": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clinics"],
                "summary": "Append a clinic status",
                "parameters": [{"type": "string", "name": "clinicID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/clinics/{clinicID}/appointments/export": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["appointments"],
                "summary": "Export a clinic's appointment list as a spreadsheet",
                "parameters": [{"type": "string", "name": "clinicID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/clinics/{clinicID}/appointments/{appointmentID}/check-in": {
            "post": {
                "produces": ["application/json"],
                "tags": ["appointments"],
                "summary": "Check in an appointment from the clinic page",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/appointments/{appointmentID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["appointments"],
                "summary": "Show an appointment",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/appointments/{appointmentID}/check-in": {
            "post": {"tags": ["appointments"], "summary": "Check in an appointment", "responses": {"200": {"description": "OK"}}}
        },
        "/appointments/{appointmentID}/start-screening": {
            "post": {"tags": ["appointments"], "summary": "Decide whether screening goes ahead", "responses": {"200": {"description": "OK"}}}
        },
        "/appointments/{appointmentID}/ask-for-medical-information": {
            "post": {"tags": ["appointments"], "summary": "Record whether medical information was asked for", "responses": {"200": {"description": "OK"}}}
        },
        "/appointments/{appointmentID}/cannot-go-ahead": {
            "post": {"tags": ["appointments"], "summary": "Record why screening cannot go ahead", "responses": {"200": {"description": "OK"}}}
        },
        "/appointments/{appointmentID}/status": {
            "post": {"tags": ["appointments"], "summary": "Record an appointment outcome", "responses": {"200": {"description": "OK"}}}
        },
        "/participants/{participantID}": {
            "get": {"tags": ["participants"], "summary": "Show a participant", "responses": {"200": {"description": "OK"}}}
        },
        "/participants/{participantID}/appointments": {
            "get": {"tags": ["appointments"], "summary": "List a participant's appointments", "responses": {"200": {"description": "OK"}}}
        },
        "/participants/{participantID}/ethnicity": {
            "put": {"tags": ["participants"], "summary": "Update ethnic background", "responses": {"200": {"description": "OK"}}}
        },
        "/participants/{participantID}/address": {
            "put": {"tags": ["participants"], "summary": "Set the address", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["participants"], "summary": "Remove the address", "responses": {"204": {"description": "No Content"}}}
        },
        "/ethnic-backgrounds": {
            "get": {"tags": ["participants"], "summary": "List ethnic background choices", "responses": {"200": {"description": "OK"}}}
        },
        "/audit-logs": {
            "get": {
                "tags": ["audit"],
                "summary": "List the audit trail of one object",
                "parameters": [
                    {"type": "string", "name": "content_type", "in": "query", "required": true},
                    {"type": "string", "name": "object_id", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Manage breast screening API",
	Description:      "Clinic, appointment and participant management for breast screening.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
