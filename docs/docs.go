// Package docs registers the OpenAPI description served at /swagger/*.
// Regenerate with: swag init -g cmd/server/main.go -o docs --outputTypes go
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorBody"}}
                }
            }
        },
        "/v1/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Who am I",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.whoAmIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorBody"}}
                }
            }
        },
        "/v1/accounts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Create account",
                "parameters": [
                    {"description": "New account", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.accountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorBody"}}
                }
            }
        },
        "/v1/accounts/{username}/password": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Set password",
                "parameters": [
                    {"type": "string", "description": "Account", "name": "username", "in": "path", "required": true},
                    {"description": "New password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.setPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.accountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorBody"}}
                }
            }
        },
        "/v1/accounts/{username}/blacklist": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Blacklist account",
                "parameters": [
                    {"type": "string", "description": "Account", "name": "username", "in": "path", "required": true},
                    {"description": "Flag value", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.flagRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.accountResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorBody"}}
                }
            }
        },
        "/v1/accounts/{username}/disable": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Disable account",
                "parameters": [
                    {"type": "string", "description": "Account", "name": "username", "in": "path", "required": true},
                    {"description": "Flag value", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.flagRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.accountResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorBody"}}
                }
            }
        },
        "/v1/accounts/{username}/timeslot": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["timeslots"],
                "summary": "Allocate timeslot",
                "parameters": [
                    {"type": "string", "description": "Account", "name": "username", "in": "path", "required": true},
                    {"description": "Resource and window (RFC 3339)", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.allocateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.accountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorBody"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["timeslots"],
                "summary": "Revoke timeslot",
                "parameters": [
                    {"type": "string", "description": "Account", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.accountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorBody"}}
                }
            }
        },
        "/v1/robots/{resource}/access": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["robots"],
                "summary": "Probe robot access",
                "parameters": [
                    {"type": "string", "description": "ros or iot", "name": "resource", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.accessResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorBody"}}
                }
            }
        },
        "/v1/robots/{resource}/code": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["robots"],
                "summary": "Push code",
                "parameters": [
                    {"type": "string", "description": "ros or iot", "name": "resource", "in": "path", "required": true},
                    {"type": "file", "description": "Program", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.pushResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorBody"}}
                }
            }
        },
        "/v1/robots/{resource}/output": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["robots"],
                "summary": "Relay robot output",
                "parameters": [
                    {"type": "string", "description": "ros or iot", "name": "resource", "in": "path", "required": true},
                    {"type": "string", "description": "Shared device key", "name": "X-Device-Key", "in": "header"},
                    {"description": "Line", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.telemetryRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorBody"}}
                }
            }
        },
        "/v1/robots/{resource}/fault": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["robots"],
                "summary": "Relay robot fault",
                "parameters": [
                    {"type": "string", "description": "ros or iot", "name": "resource", "in": "path", "required": true},
                    {"type": "string", "description": "Shared device key", "name": "X-Device-Key", "in": "header"},
                    {"description": "Error text", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.telemetryRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "resource": {"type": "string"},
                "window_start": {"type": "string"},
                "window_end": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_at": {"type": "string"},
                "username": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "handler.windowResponse": {
            "type": "object",
            "properties": {"start": {"type": "string"}, "end": {"type": "string"}}
        },
        "handler.whoAmIResponse": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "role": {"type": "string"},
                "resource": {"type": "string"},
                "window": {"$ref": "#/definitions/handler.windowResponse"}
            }
        },
        "handler.createAccountRequest": {
            "type": "object",
            "required": ["date_of_birth", "username"],
            "properties": {
                "username": {"type": "string", "maxLength": 32, "minLength": 3},
                "date_of_birth": {"type": "string"},
                "disabled": {"type": "boolean"},
                "blacklisted": {"type": "boolean"}
            }
        },
        "handler.setPasswordRequest": {
            "type": "object",
            "required": ["date_of_birth", "password"],
            "properties": {"password": {"type": "string"}, "date_of_birth": {"type": "string"}}
        },
        "handler.flagRequest": {
            "type": "object",
            "required": ["value"],
            "properties": {"value": {"type": "boolean"}}
        },
        "handler.allocateRequest": {
            "type": "object",
            "required": ["resource"],
            "properties": {
                "resource": {"type": "string", "enum": ["ros", "iot"]},
                "start": {"type": "string"},
                "end": {"type": "string"}
            }
        },
        "handler.accountResponse": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "role": {"type": "string"},
                "disabled": {"type": "boolean"},
                "blacklisted": {"type": "boolean"},
                "date_of_birth": {"type": "string"},
                "bound_resource": {"type": "string"},
                "window": {"$ref": "#/definitions/handler.windowResponse"}
            }
        },
        "handler.accessResponse": {
            "type": "object",
            "properties": {"resource": {"type": "string"}, "allowed": {"type": "boolean"}}
        },
        "handler.pushResponse": {
            "type": "object",
            "properties": {"resource": {"type": "string"}, "filename": {"type": "string"}}
        },
        "handler.telemetryRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {"text": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Robot Access API",
	Description:      "Session and timeslot access authority for the shared lab robots.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
