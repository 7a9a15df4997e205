// Package docs holds the OpenAPI description served at /swagger.
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
        "SecretAuth": {"type": "apiKey", "name": "X-Secret", "in": "header"}
    },
    "paths": {
        "/tickets/ingest": {
            "post": {
                "security": [{"SecretAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["tickets"],
                "summary": "Ingest a ticket document",
                "parameters": [
                    {"type": "file", "description": "Ticket document (PDF or TXT)", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Point of sale", "name": "pos", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "Ticket ingested", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Missing file or unsupported type", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/tickets/text": {
            "post": {
                "security": [{"SecretAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["tickets"],
                "summary": "Show extracted ticket text",
                "parameters": [
                    {"type": "file", "description": "Ticket document (PDF or TXT)", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "Extracted text", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Missing file", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/tickets/parse": {
            "post": {
                "security": [{"SecretAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tickets"],
                "summary": "Parse ticket text",
                "parameters": [
                    {"description": "Ticket text", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ParseRequest"}}
                ],
                "responses": {
                    "200": {"description": "Parsed ticket", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Invalid JSON or missing text", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/rules": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rules"],
                "summary": "List rules",
                "responses": {
                    "200": {"description": "Rule set", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/rules/export": {
            "get": {
                "produces": ["text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["rules"],
                "summary": "Export rules",
                "parameters": [
                    {"enum": ["csv", "xlsx"], "type": "string", "default": "csv", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Rule export", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/rules/import": {
            "post": {
                "security": [{"SecretAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["rules"],
                "summary": "Import rules",
                "parameters": [
                    {"type": "file", "description": "XLSX workbook", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "Rules imported", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Missing file or bad rule key", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/quote": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quotes"],
                "summary": "Quote a fare",
                "parameters": [
                    {"description": "Quote request", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.QuoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "Fare quote", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Invalid JSON or missing field", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        }
    },
    "definitions": {
        "handler.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"$ref": "#/definitions/handler.APIError"}
            }
        },
        "handler.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "data": {}
            }
        },
        "handler.ParseRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"}
            }
        },
        "handler.QuoteRequest": {
            "type": "object",
            "properties": {
                "carrier": {"type": "string", "example": "PX"},
                "origin": {"type": "string", "example": "POM"},
                "dest": {"type": "string", "example": "LAE"},
                "base_fare": {"type": "number", "example": 238},
                "currency": {"type": "string", "example": "PGK"},
                "pos": {"type": "string", "example": "PG"},
                "markup_pct": {"type": "number", "example": 8.8}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Fare Rules API",
	Description:      "Ticket ingestion, rule store and fare quoting.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
