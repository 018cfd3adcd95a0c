// Package docs holds the OpenAPI description served under /docs. Keep it in
// step with the @-annotations in internal/handler.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}}
            }
        },
        "/api/dashboard/overview": {
            "get": {
                "produces": ["application/json"],
                "tags": ["overview"],
                "summary": "Overview page",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/dashboard/stream": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stream"],
                "summary": "Live error stream",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/dashboard/stream/{action}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["stream"],
                "summary": "Control the live stream",
                "parameters": [
                    {"enum": ["ack", "pause", "resume", "refresh"], "type": "string", "name": "action", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/dashboard/stream/ws": {
            "get": {
                "tags": ["stream"],
                "summary": "Live stream over websocket",
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        },
        "/api/dashboard/errors": {
            "get": {
                "produces": ["application/json"],
                "tags": ["errors"],
                "summary": "List errors",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"},
                    {"enum": ["error", "warning", "info", "debug"], "type": "string", "name": "level", "in": "query"},
                    {"type": "string", "name": "source", "in": "query"},
                    {"type": "boolean", "name": "resolved", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/dashboard/errors/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["errors"],
                "summary": "Get an error",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["errors"],
                "summary": "Delete an error",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/dashboard/errors/{id}/resolve": {
            "put": {
                "produces": ["application/json"],
                "tags": ["errors"],
                "summary": "Resolve an error",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ResolveResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/dashboard/monitoring": {
            "get": {"produces": ["application/json"], "tags": ["monitoring"], "summary": "Monitoring page", "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}}
        },
        "/api/dashboard/uptime": {
            "get": {"produces": ["application/json"], "tags": ["monitoring"], "summary": "Uptime page", "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}}
        },
        "/api/dashboard/analytics": {
            "get": {"produces": ["application/json"], "tags": ["analytics"], "summary": "Analytics page", "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}}
        },
        "/api/dashboard/analytics/trends": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Error trends",
                "parameters": [
                    {"enum": ["24h", "7d", "30d"], "type": "string", "name": "period", "in": "query"},
                    {"enum": ["hour", "day"], "type": "string", "name": "group_by", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/dashboard/analytics/performance": {
            "get": {"produces": ["application/json"], "tags": ["analytics"], "summary": "Performance summary", "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}}
        },
        "/api/dashboard/alerts": {
            "get": {"produces": ["application/json"], "tags": ["alerts"], "summary": "Alert rules and incidents", "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}}
        },
        "/api/dashboard/reports": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Archived observation report",
                "parameters": [
                    {"type": "integer", "name": "from", "in": "query", "required": true},
                    {"type": "integer", "name": "to", "in": "query", "required": true},
                    {"enum": ["level", "source", "hour", "day"], "type": "string", "name": "group_by", "in": "query"},
                    {"enum": ["error", "warning", "info", "debug"], "type": "string", "name": "level", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ReportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "validation_error"},
                "message": {"type": "string", "example": "limit must be between 1 and 100"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "tracker": {"type": "string", "example": "ok"},
                "archive": {"type": "string", "example": "ok"}
            }
        },
        "dto.ResolveResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "err_42"},
                "status": {"type": "string", "example": "resolved"}
            }
        },
        "dto.ReportGroupData": {
            "type": "object",
            "properties": {
                "group_value": {"type": "string", "example": "error"},
                "observations": {"type": "integer", "example": 120},
                "occurrences": {"type": "integer", "example": 2300}
            }
        },
        "dto.ReportResponse": {
            "type": "object",
            "properties": {
                "from": {"type": "integer", "example": 1723475612},
                "to": {"type": "integer", "example": 1723562012},
                "level": {"type": "string", "example": "error"},
                "total_observations": {"type": "integer", "example": 500},
                "unique_records": {"type": "integer", "example": 42},
                "total_occurrences": {"type": "integer", "example": 9000},
                "group_by": {"type": "string", "example": "level"},
                "groups": {"type": "array", "items": {"$ref": "#/definitions/dto.ReportGroupData"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Error Monitor Dashboard API",
	Description:      "Polled views, live error stream and archived reports over an error-tracking service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
