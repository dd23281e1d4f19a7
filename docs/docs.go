// Package docs registers the OpenAPI description of the booking API with
// swag so echo-swagger can serve it at /swagger/*.
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
        "/api/admin/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Admin login",
                "parameters": [
                    {"description": "Admin password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AdminSession"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/appointments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["appointments"],
                "summary": "List all appointments",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Appointment"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["appointments"],
                "summary": "Create an appointment",
                "parameters": [
                    {"description": "Appointment fields", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createAppointmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Appointment"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/appointments/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["appointments"],
                "summary": "Update an appointment",
                "parameters": [
                    {"type": "string", "description": "Appointment id", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateAppointmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Appointment"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["appointments"],
                "summary": "Delete an appointment",
                "parameters": [
                    {"type": "string", "description": "Appointment id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.successResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/availability": {
            "get": {
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Slot availability",
                "parameters": [
                    {"type": "string", "description": "First day (YYYY-MM-DD), defaults to the start of the current week", "name": "from", "in": "query"},
                    {"type": "integer", "description": "Number of days (1-31), defaults to 7", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/schedule.Day"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/bookings": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Book a slot",
                "parameters": [
                    {"description": "Booking", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.bookSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Appointment"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/services": {
            "get": {
                "produces": ["application/json"],
                "tags": ["services"],
                "summary": "List services",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Service"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["services"],
                "summary": "Create a service",
                "parameters": [
                    {"description": "Service", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createServiceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Service"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/services/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["services"],
                "summary": "Update a service",
                "parameters": [
                    {"type": "string", "description": "Service id", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateServiceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Service"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["services"],
                "summary": "Delete a service",
                "parameters": [
                    {"type": "string", "description": "Service id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.successResponse"}}
                }
            }
        },
        "/api/sms": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sms"],
                "summary": "Relay an SMS",
                "parameters": [
                    {"description": "Recipient and text", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.sendSMSRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sendSMSResponse"}},
                    "501": {"description": "Not Implemented", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.smsErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        }
    },
    "definitions": {
        "domain.AdminSession": {
            "type": "object",
            "properties": {
                "expires_at": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "domain.Appointment": {
            "type": "object",
            "properties": {
                "clientName": {"type": "string"},
                "clientPhone": {"type": "string"},
                "createdAt": {"type": "string"},
                "date": {"type": "string", "example": "2025-01-07"},
                "endTime": {"type": "string", "example": "10:30"},
                "id": {"type": "string"},
                "notes": {"type": "string"},
                "service": {"type": "string"},
                "startTime": {"type": "string", "example": "10:00"},
                "status": {"type": "string", "enum": ["pending", "confirmed", "completed", "cancelled"]}
            }
        },
        "domain.Service": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "description": {"type": "string"},
                "duration_minutes": {"type": "integer"},
                "id": {"type": "string"},
                "img": {"type": "string", "x-nullable": true},
                "name": {"type": "string"},
                "price": {"type": "number"}
            }
        },
        "handler.bookSlotRequest": {
            "type": "object",
            "required": ["clientName", "clientPhone", "date", "startTime"],
            "properties": {
                "clientName": {"type": "string"},
                "clientPhone": {"type": "string"},
                "date": {"type": "string"},
                "notes": {"type": "string"},
                "service": {"type": "string"},
                "startTime": {"type": "string"}
            }
        },
        "handler.createAppointmentRequest": {
            "type": "object",
            "required": ["clientName", "date", "startTime"],
            "properties": {
                "clientName": {"type": "string"},
                "clientPhone": {"type": "string"},
                "date": {"type": "string"},
                "endTime": {"type": "string"},
                "notes": {"type": "string"},
                "service": {"type": "string"},
                "startTime": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "confirmed", "completed", "cancelled"]}
            }
        },
        "handler.createServiceRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "duration_minutes": {"type": "integer"},
                "img": {"type": "string", "x-nullable": true},
                "name": {"type": "string"},
                "price": {"type": "number"}
            }
        },
        "handler.updateServiceRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "duration_minutes": {"type": "integer"},
                "img": {"type": "string", "x-nullable": true},
                "name": {"type": "string"},
                "price": {"type": "number"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {"password": {"type": "string"}}
        },
        "handler.sendSMSRequest": {
            "type": "object",
            "required": ["message", "to"],
            "properties": {
                "message": {"type": "string"},
                "to": {"type": "string"}
            }
        },
        "handler.sendSMSResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "handler.smsErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "handler.successResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}}
        },
        "handler.updateAppointmentRequest": {
            "type": "object",
            "properties": {
                "clientName": {"type": "string"},
                "clientPhone": {"type": "string"},
                "date": {"type": "string"},
                "endTime": {"type": "string"},
                "notes": {"type": "string"},
                "service": {"type": "string"},
                "startTime": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "schedule.Day": {
            "type": "object",
            "properties": {
                "closed": {"type": "boolean"},
                "date": {"type": "string"},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/schedule.Slot"}}
            }
        },
        "schedule.Slot": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["open_booking_form", "open_edit_form", "none"]},
                "appointmentId": {"type": "string"},
                "state": {"type": "string", "enum": ["available", "occupied", "past"]},
                "time": {"type": "string"}
            }
        }
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
	Title:            "Barbershop Booking API",
	Description:      "Appointments, slot availability, the service price list and SMS relay for a single barbershop.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
