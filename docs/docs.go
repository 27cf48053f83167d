// Package docs registers the OpenAPI document served at /swagger.
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
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.UserResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login with email or username", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Refresh access token", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.RefreshRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}}}},
        "/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Logout user", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}}}},
        "/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Current user profile", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserResponse"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update username and email", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Delete account", "responses": {"204": {"description": "No Content"}}}
        },
        "/me/password": {"put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Change password", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}}}},
        "/users/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get user by id", "produces": ["application/json"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserResponse"}}}}},
        "/users/{id}/posts": {"get": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Posts of one user", "produces": ["application/json"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/rewards": {"get": {"security": [{"BearerAuth": []}], "tags": ["rewards"], "summary": "Reward balances of the caller", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/rewards/pull": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["rewards"], "summary": "Pull cooldown status", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["rewards"], "summary": "Pull a random reward", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}}}
        },
        "/rewards/history": {"get": {"security": [{"BearerAuth": []}], "tags": ["rewards"], "summary": "Past pulls, newest first", "produces": ["application/json"], "parameters": [{"type": "integer", "default": 50, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/posts": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Feed, newest first", "produces": ["application/json"], "parameters": [{"type": "string", "name": "tags", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Publish a post", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "402": {"description": "Payment Required", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}}}
        },
        "/posts/unseen": {"get": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Posts the caller has not seen yet", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/posts/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Get post by id", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Edit own post", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Delete own post", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/posts/{id}/like": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Like a post", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Remove a like", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/posts/{id}/like/toggle": {"post": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Like or unlike a post", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/posts/{id}/seen": {"post": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Mark a post as seen", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}},
        "/posts/{id}/comments": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Comments of a post, oldest first", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Comment on a post", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}
        },
        "/comments/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Edit own comment", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Delete own comment", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/comments/{id}/like": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Like a comment", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Remove a comment like", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "errors.ErrorResponse": {"type": "object", "properties": {"code": {"type": "string"}, "error": {"type": "string"}}},
        "handler.MessageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "handler.RegisterRequest": {"type": "object", "properties": {"confirm_password": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}, "username": {"type": "string"}}},
        "handler.LoginRequest": {"type": "object", "properties": {"identifier": {"type": "string"}, "password": {"type": "string"}}},
        "handler.RefreshRequest": {"type": "object", "required": ["refresh_token"], "properties": {"refresh_token": {"type": "string"}}},
        "handler.AuthResponse": {"type": "object", "properties": {"access_token": {"type": "string"}, "refresh_token": {"type": "string"}, "user": {"$ref": "#/definitions/handler.UserResponse"}}},
        "handler.UserResponse": {"type": "object", "properties": {"created_at": {"type": "string"}, "email": {"type": "string"}, "id": {"type": "string"}, "rewards": {"type": "object", "additionalProperties": {"type": "integer"}}, "username": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Glaminator API",
	Description:      "Social feed where posting, liking and commenting spend rewards won from gacha pulls.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
