// Package docs registers the Swagger document served at /swagger/*any.
// Regenerate with `swag init -g cmd/main.go`.
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
        "/": {
            "get": {
                "produces": ["text/html"],
                "tags": ["ui"],
                "summary": "Dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/zones": {
            "get": {
                "produces": ["application/json"],
                "tags": ["zones"],
                "summary": "List zones",
                "responses": {
                    "200": {"description": "count, zones", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/v1/zones/reload": {
            "post": {
                "produces": ["application/json"],
                "tags": ["zones"],
                "summary": "Reload zones",
                "responses": {
                    "200": {"description": "status, count", "schema": {"type": "object", "additionalProperties": true}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/zones/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["zones"],
                "summary": "Get zone",
                "parameters": [
                    {"type": "string", "description": "Zone id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ZoneRecord"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/zones/{id}/start": {
            "post": {
                "produces": ["application/json"],
                "tags": ["zones"],
                "summary": "Start zone",
                "parameters": [
                    {"type": "string", "description": "Zone id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Run length: Go duration (10m) or whole minutes (10)", "name": "time", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "status, zone", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/zones/{id}/stop": {
            "post": {
                "produces": ["application/json"],
                "tags": ["zones"],
                "summary": "Stop zone",
                "parameters": [
                    {"type": "string", "description": "Zone id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "status, zone", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/ui/zones/{id}/actions/{index}": {
            "post": {
                "description": "Runs the action bound to button {index} of the zone panel by its last render",
                "produces": ["application/json"],
                "tags": ["ui"],
                "summary": "Press a dashboard button",
                "parameters": [
                    {"type": "string", "description": "Zone id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Button index", "name": "index", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "status, zone", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/logs": {
            "get": {
                "description": "Filter activity by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' is treated as end of day.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List logs",
                "parameters": [
                    {"type": "string", "example": "2026-10-01", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "example": "2026-10-31", "description": "End of range", "name": "to", "in": "query"},
                    {"enum": ["ZONE_ADDED", "START", "STOP", "COMMAND_ERROR", "LOAD_ERROR"], "type": "string", "description": "Event type", "name": "type", "in": "query"},
                    {"type": "string", "description": "Zone id", "name": "zone", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, events", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "models.ZoneRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "is_on": {"type": "boolean"},
                "is_running": {"type": "boolean"},
                "runtime": {"type": "integer", "description": "nanoseconds"},
                "next_run": {"type": "string", "format": "date-time"},
                "run_template": {"type": "array", "items": {"type": "string"}}
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
	Title:            "Garden Panel API",
	Description:      "Irrigation zone dashboard: zone panels, start/stop commands and activity log.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
