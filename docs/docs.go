// Package docs registers the swagger document served at /swagger.
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
        "/v1/auth/login": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "login with an identity provider token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Resp"}},
                    "403": {"description": "account pending approval", "schema": {"$ref": "#/definitions/common.Resp"}}
                }
            }
        },
        "/v1/chemicals": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "create chemical",
                "parameters": [{"description": "chemical", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Resp"}}}
            }
        },
        "/v1/chemicals/{id}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "update chemical fields allowed for the caller's role",
                "parameters": [
                    {"type": "integer", "description": "chemical id", "name": "id", "in": "path", "required": true},
                    {"description": "fields", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Resp"}}}
            }
        },
        "/v1/account/transactions/{id}/approve": {
            "put": {
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "approve a pending transaction",
                "parameters": [{"type": "integer", "description": "transaction id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Resp"}},
                    "400": {"description": "not pending", "schema": {"$ref": "#/definitions/common.Resp"}}
                }
            }
        },
        "/v1/account/purchase-orders": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "create a purchase order with its items atomically",
                "parameters": [{"description": "order", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Resp"}}}
            }
        },
        "/v1/notifications/{id}": {
            "delete": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["notification"],
                "summary": "delete a notification; non-admin recipients must leave a comment",
                "parameters": [
                    {"type": "integer", "description": "notification id", "name": "id", "in": "path", "required": true},
                    {"description": "delete comment", "name": "body", "in": "body", "schema": {"type": "object", "properties": {"delete_comment": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Resp"}},
                    "400": {"description": "comment required", "schema": {"$ref": "#/definitions/common.Resp"}}
                }
            }
        }
    },
    "definitions": {
        "common.Resp": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "detail": {"type": "string"}
            }
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "chemtrack API",
	Description:      "Chemical inventory, account transactions, notifications and alerts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
