// Package docs registers the OpenAPI description served under /swagger.
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
                "description": "Check if the service is running",
                "produces": ["text/plain"],
                "tags": ["health"],
                "summary": "Health check endpoint",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}}
                }
            }
        },
        "/ready": {
            "get": {
                "description": "Check if the service is ready to serve requests (session store and provider cache)",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness check endpoint",
                "responses": {
                    "200": {"description": "Service is ready", "schema": {"type": "object", "properties": {"status": {"type": "string"}, "timestamp": {"type": "string"}}}},
                    "503": {"description": "Service is not ready", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/shorten": {
            "post": {
                "description": "Shorten one or more URLs and record the successes in the session history",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["urls"],
                "summary": "Shorten URLs",
                "parameters": [
                    {"description": "URLs to shorten", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.ShortenRequest"}}
                ],
                "responses": {
                    "200": {"description": "Batch processed", "schema": {"$ref": "#/definitions/http.ShortenResponse"}},
                    "400": {"description": "Invalid request or validation error", "schema": {"$ref": "#/definitions/http.ValidationErrorResponse"}},
                    "500": {"description": "Session store failure", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/history": {
            "get": {
                "description": "List the unexpired history entries of the caller's session, newest first",
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "List history",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.HistoryResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/history/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Delete history entry",
                "parameters": [
                    {"type": "integer", "description": "Entry id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.DeleteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.DeleteResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/search": {
            "get": {
                "description": "Case-insensitive substring search on entry names",
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Search history",
                "parameters": [
                    {"type": "string", "description": "Search query", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SearchResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "History statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Stats"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.StatsErrorResponse"}}
                }
            }
        },
        "/api/session/reset": {
            "post": {
                "description": "Discard the whole history and issue a fresh session on the next request",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Reset session",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"reset": {"type": "boolean"}}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "application.URLResult": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "id": {"type": "integer"},
                "input": {"type": "string"},
                "original": {"type": "string"},
                "shortened": {"type": "string"},
                "source": {"type": "string"}
            }
        },
        "domain.EntryView": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string", "example": "2024-01-31 12:00:00"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "original": {"type": "string"},
                "shortened": {"type": "string"}
            }
        },
        "domain.Stats": {
            "type": "object",
            "properties": {
                "expiresInHours": {"type": "number"},
                "sessionAgeHours": {"type": "number"},
                "totalCount": {"type": "integer"},
                "uniqueNameCount": {"type": "integer"}
            }
        },
        "http.DeleteResponse": {
            "type": "object",
            "properties": {
                "deleted": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "object", "additionalProperties": {"type": "string"}},
                "timestamp": {"type": "string", "example": "2024-01-31T12:00:00Z"}
            }
        },
        "http.HistoryResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/domain.EntryView"}}
            }
        },
        "http.SearchResponse": {
            "type": "object",
            "properties": {
                "entries": {"type": "array", "items": {"$ref": "#/definitions/domain.EntryView"}},
                "message": {"type": "string"},
                "query": {"type": "string"}
            }
        },
        "http.ShortenRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "work links"},
                "text": {"type": "string"},
                "urls": {"type": "array", "items": {"type": "string"}, "example": ["https://example.com"]}
            }
        },
        "http.ShortenResponse": {
            "type": "object",
            "properties": {
                "failed": {"type": "integer"},
                "message": {"type": "string", "example": "Successfully shortened 1 URL(s)"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/application.URLResult"}},
                "succeeded": {"type": "integer"}
            }
        },
        "http.StatsErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Unable to compute statistics"}
            }
        },
        "http.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "object", "additionalProperties": {"type": "string"}},
                "error": {"type": "string", "example": "Validation failed"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "relink API",
	Description:      "Multi-provider URL shortener with a per-session history",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
