// Package docs 由 swag 生成的接口文档注册信息
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
        "/api/v1/auth/register": {
            "post": {"tags": ["认证"], "summary": "用户注册", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.RegisterRequest"}}],
                "responses": {"200": {"description": "注册成功"}, "400": {"description": "请求参数错误"}, "409": {"description": "用户名已存在"}}}
        },
        "/api/v1/auth/login": {
            "post": {"tags": ["认证"], "summary": "用户登录", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.LoginRequest"}}],
                "responses": {"200": {"description": "登录成功"}, "401": {"description": "用户名或密码错误"}}}
        },
        "/api/v1/auth/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["认证"], "summary": "获取当前用户信息", "produces": ["application/json"],
                "responses": {"200": {"description": "获取成功"}, "401": {"description": "未授权"}}}
        },
        "/api/v1/wallet": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["钱包"], "summary": "查询钱包", "produces": ["application/json"],
                "responses": {"200": {"description": "获取成功"}, "404": {"description": "钱包不存在"}}}
        },
        "/api/v1/wallet/transactions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["钱包"], "summary": "交易列表", "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "name": "page_size", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "name": "type", "in": "query"},
                    {"type": "string", "name": "start_time", "in": "query"},
                    {"type": "string", "name": "end_time", "in": "query"}
                ],
                "responses": {"200": {"description": "获取成功"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["钱包"], "summary": "记账", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.TransactionRequest"}}],
                "responses": {"200": {"description": "记账成功"}, "400": {"description": "参数错误或余额不足"}, "404": {"description": "钱包不存在"}}}
        },
        "/api/v1/wallet/statistics": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["钱包"], "summary": "收支统计", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "categories", "in": "query"},
                    {"type": "string", "name": "start_time", "in": "query"},
                    {"type": "string", "name": "end_time", "in": "query"}
                ],
                "responses": {"200": {"description": "获取成功"}}}
        },
        "/api/v1/budgets": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["预算"], "summary": "预算列表", "produces": ["application/json"],
                "responses": {"200": {"description": "获取成功"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["预算"], "summary": "设置预算", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.BudgetRequest"}}],
                "responses": {"200": {"description": "设置成功"}, "400": {"description": "请求参数错误"}}}
        },
        "/api/v1/budgets/batch": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["预算"], "summary": "批量设置预算", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"200": {"description": "设置成功"}, "400": {"description": "部分失败"}}}
        },
        "/api/v1/budgets/{category}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["预算"], "summary": "删除预算", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "category", "in": "path", "required": true}],
                "responses": {"200": {"description": "删除成功"}, "404": {"description": "预算不存在"}}}
        },
        "/api/v1/transfers": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["转账"], "summary": "转账", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.TransferRequest"}}],
                "responses": {"200": {"description": "转账成功"}, "400": {"description": "参数错误或余额不足"}, "404": {"description": "用户不存在"}}}
        },
        "/api/v1/export/json": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["导出"], "summary": "导出统计报告", "produces": ["application/json"],
                "responses": {"200": {"description": "导出成功"}}}
        },
        "/api/v1/export/csv": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["导出"], "summary": "导出交易明细", "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV 文件"}}}
        },
        "/api/v1/export/excel": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["导出"], "summary": "导出 Excel",
                "responses": {"200": {"description": "Excel 文件"}}}
        }
    },
    "definitions": {
        "api.RegisterRequest": {"type": "object", "required": ["password", "username"], "properties": {
            "email": {"type": "string", "example": "alice@example.com"},
            "password": {"type": "string", "example": "password123"},
            "username": {"type": "string", "example": "alice"}}},
        "api.LoginRequest": {"type": "object", "required": ["password", "username"], "properties": {
            "password": {"type": "string", "example": "password123"},
            "username": {"type": "string", "example": "alice"}}},
        "api.TransactionRequest": {"type": "object", "required": ["category", "type"], "properties": {
            "amount": {"type": "number", "example": 45.5},
            "category": {"type": "string", "example": "Food"},
            "description": {"type": "string", "example": "午餐"},
            "type": {"type": "string", "example": "EXPENSE"}}},
        "api.BudgetRequest": {"type": "object", "required": ["category"], "properties": {
            "category": {"type": "string", "example": "Food"},
            "limit_amount": {"type": "number", "example": 500}}},
        "api.TransferRequest": {"type": "object", "required": ["to_user"], "properties": {
            "amount": {"type": "number", "example": 30},
            "description": {"type": "string", "example": "lunch"},
            "to_user": {"type": "string", "example": "bob"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "钱包账本 API",
	Description:      "钱包记账服务：收支记录、分类预算、统计与转账",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
