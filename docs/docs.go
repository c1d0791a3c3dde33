// Package docs registers the OpenAPI document served at /swagger/doc.json.
// Regenerate with: swag init -g cmd/ingest-core/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/projects/{project}/analyze": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Analysis"],
                "summary": "Analyze a document",
                "parameters": [
                    {"type": "string", "name": "project", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.AnalyzeBody"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AnalysisResult"}},
                    "400": {"description": "Invalid document", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Analysis failed", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "503": {"description": "Classifier unavailable", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/projects/{project}/suggestions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Suggestions"],
                "summary": "List work items",
                "parameters": [
                    {"type": "string", "name": "project", "in": "path", "required": true},
                    {"type": "string", "default": "suggestion", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuggestionListResponse"}},
                    "400": {"description": "Unknown status filter", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Suggestions"],
                "summary": "Create a suggestion",
                "parameters": [
                    {"type": "string", "name": "project", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/driving.CreateSuggestionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.SuggestionItem"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/projects/{project}/suggestions/confirm": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Confirmation"],
                "summary": "Confirm a batch",
                "parameters": [
                    {"type": "string", "name": "project", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.IDsBody"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.BatchResult"}}
                }
            }
        },
        "/projects/{project}/suggestions/reject": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Confirmation"],
                "summary": "Reject a batch",
                "parameters": [
                    {"type": "string", "name": "project", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.IDsBody"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StatusResponse"}},
                    "409": {"description": "A selected item is not a suggestion", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/projects/{project}/suggestions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Suggestions"],
                "summary": "Get a work item",
                "parameters": [
                    {"type": "string", "name": "project", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SuggestionItem"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Suggestions"],
                "summary": "Edit a suggestion",
                "parameters": [
                    {"type": "string", "name": "project", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/driving.UpdateSuggestionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SuggestionItem"}},
                    "409": {"description": "Not a suggestion", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Suggestions"],
                "summary": "Delete a work item",
                "parameters": [
                    {"type": "string", "name": "project", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/projects/{project}/suggestions/{id}/confirm": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Confirmation"],
                "summary": "Confirm one suggestion",
                "parameters": [
                    {"type": "string", "name": "project", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SuggestionItem"}},
                    "409": {"description": "Already confirmed or locked", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/projects/{project}/knowledge/search": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Knowledge"],
                "summary": "Search the knowledge base",
                "parameters": [
                    {"type": "string", "name": "project", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.KnowledgeSearchBody"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.KnowledgeSearchResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.AnalyzeBody": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "document_type": {"type": "string", "example": "meeting_notes"},
                "existing_artifact_id": {"type": "string"}
            }
        },
        "http.IDsBody": {
            "type": "object",
            "properties": {"ids": {"type": "array", "items": {"type": "string"}}}
        },
        "http.KnowledgeSearchBody": {
            "type": "object",
            "properties": {"query": {"type": "string"}, "top_k": {"type": "integer"}}
        },
        "http.KnowledgeSearchResponse": {
            "type": "object",
            "properties": {"results": {"type": "array", "items": {"$ref": "#/definitions/domain.VectorMatch"}}}
        },
        "http.SuggestionListResponse": {
            "type": "object",
            "properties": {"items": {"type": "array", "items": {"$ref": "#/definitions/domain.SuggestionItem"}}}
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "invalid request body"}}
        },
        "http.StatusResponse": {
            "type": "object",
            "properties": {"status": {"type": "string", "example": "ok"}}
        },
        "driving.CreateSuggestionRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "parent_id": {"type": "string"},
                "meta": {"$ref": "#/definitions/domain.ItemMeta"}
            }
        },
        "driving.UpdateSuggestionRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "parent_id": {"type": "string"}
            }
        },
        "domain.ItemMeta": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "confidence": {"type": "number"},
                "risk_level": {"type": "string"},
                "category": {"type": "string"},
                "target_record_id": {"type": "string"},
                "reasoning": {"type": "string"},
                "status": {"type": "string"},
                "specifications": {"type": "array", "items": {"type": "string"}}
            }
        },
        "domain.SuggestionItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "project_id": {"type": "string"},
                "type": {"type": "string"},
                "status": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "parent_id": {"type": "string"},
                "source_artifact_id": {"type": "string"},
                "meta": {"$ref": "#/definitions/domain.ItemMeta"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "confirmed_at": {"type": "string"}
            }
        },
        "domain.AnalysisResult": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "project_id": {"type": "string"},
                "document_type": {"type": "string"},
                "artifact_id": {"type": "string"},
                "chunks": {"type": "array", "items": {"type": "object"}},
                "summary": {"type": "object"},
                "processed_at": {"type": "string"}
            }
        },
        "domain.BatchResult": {
            "type": "object",
            "properties": {
                "created_count": {"type": "integer"},
                "failed_count": {"type": "integer"},
                "confirmed_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "domain.VectorMatch": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source_id": {"type": "string"},
                "source_type": {"type": "string"},
                "content": {"type": "string"},
                "similarity": {"type": "number"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Ingest Core API",
	Description:      "Turns free-form project documents into reviewed, confirmed work items.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
