// Package docs holds the OpenAPI document generated from the handler
// annotations with swag init.
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
        "/catalog/sync": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Upserts every engine workflow tagged \"library\" whose name has no tenant prefix. Requires global_admin.",
                "produces": ["application/json"],
                "tags": ["Catalog"],
                "summary": "Sync the template catalog",
                "operationId": "syncCatalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SyncResult"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/catalog/templates": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Catalog"],
                "summary": "List catalog templates",
                "operationId": "listTemplates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.itemsResponse-model_WorkflowTemplate"}}
                }
            }
        },
        "/tenants": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Tenants"],
                "summary": "List tenants",
                "operationId": "listTenants",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.itemsResponse-model_Tenant"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/tenants/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Tenants"],
                "summary": "Get a tenant",
                "operationId": "getTenant",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Tenant"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/workflows": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Workflows"],
                "summary": "List workflows",
                "operationId": "listWorkflows",
                "parameters": [
                    {"type": "string", "description": "Only this tenant", "name": "tenant_id", "in": "query"},
                    {"type": "boolean", "description": "Only active or inactive workflows", "name": "active", "in": "query"},
                    {"type": "string", "description": "Name contains", "name": "search", "in": "query"},
                    {"type": "integer", "description": "Page size (max 200)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Cursor from the previous page", "name": "cursor", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/response.PaginatedResponse"},
                                {"type": "object", "properties": {"items": {"type": "array", "items": {"$ref": "#/definitions/model.TenantWorkflow"}}}}
                            ]
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/workflows/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Workflows"],
                "summary": "Get a workflow",
                "operationId": "getWorkflow",
                "parameters": [
                    {"type": "string", "description": "Tenant workflow ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TenantWorkflow"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/workflows/{id}/audit": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Workflows"],
                "summary": "Workflow activation history",
                "operationId": "workflowHistory",
                "parameters": [
                    {"type": "string", "description": "Tenant workflow ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.itemsResponse-model_AuditEntry"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/workflows/{id}/provision": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Clones the template into the tenant's engine folder and records it inactive. An inactive existing copy is reactivated with a fresh clone; an active one is a conflict. tenant_id defaults to the caller's tenant.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Workflows"],
                "summary": "Provision a workflow",
                "operationId": "provisionWorkflow",
                "parameters": [
                    {"type": "string", "description": "Template ID or engine workflow ID", "name": "id", "in": "path", "required": true},
                    {"description": "Target tenant", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/request.ProvisionWorkflow"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.TenantWorkflow"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/workflows/{id}/retire": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Workflows"],
                "summary": "Retire a workflow",
                "operationId": "retireWorkflow",
                "parameters": [
                    {"type": "string", "description": "Tenant workflow ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/workflows/{id}/start": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Workflows"],
                "summary": "Start a workflow",
                "operationId": "startWorkflow",
                "parameters": [
                    {"type": "string", "description": "Tenant workflow ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TenantWorkflow"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/workflows/{id}/stop": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Workflows"],
                "summary": "Stop a workflow",
                "operationId": "stopWorkflow",
                "parameters": [
                    {"type": "string", "description": "Tenant workflow ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TenantWorkflow"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.itemsResponse-model_AuditEntry": {
            "type": "object",
            "properties": {"items": {"type": "array", "items": {"$ref": "#/definitions/model.AuditEntry"}}}
        },
        "handler.itemsResponse-model_Tenant": {
            "type": "object",
            "properties": {"items": {"type": "array", "items": {"$ref": "#/definitions/model.Tenant"}}}
        },
        "handler.itemsResponse-model_WorkflowTemplate": {
            "type": "object",
            "properties": {"items": {"type": "array", "items": {"$ref": "#/definitions/model.WorkflowTemplate"}}}
        },
        "model.AuditEntry": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "created_at": {"type": "string"},
                "engine_workflow_id": {"type": "string"},
                "folder_name": {"type": "string"},
                "id": {"type": "string"},
                "tenant_id": {"type": "string"},
                "tenant_workflow_id": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "model.SyncResult": {
            "type": "object",
            "properties": {
                "created": {"type": "integer"},
                "updated": {"type": "integer"}
            }
        },
        "model.Tenant": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "domain": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "parent_tenant_id": {"type": "string"},
                "status": {"type": "string"},
                "tenant_type": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "model.TenantWorkflow": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "created_at": {"type": "string"},
                "definition": {"type": "object"},
                "engine_workflow_id": {"type": "string"},
                "folder_name": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "parent_workflow_id": {"type": "string"},
                "tenant_id": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "model.WorkflowTemplate": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "definition": {"type": "object"},
                "engine_workflow_id": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "request.ProvisionWorkflow": {
            "type": "object",
            "properties": {
                "tenant_id": {"type": "string"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "kind": {"type": "string"},
                "retryable": {"type": "boolean"}
            }
        },
        "response.PaginatedResponse": {
            "type": "object",
            "properties": {
                "has_more": {"type": "boolean"},
                "items": {},
                "next_cursor": {"type": "string"}
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Flowplane API",
	Description:      "Provisions per-tenant copies of catalog workflows into the workflow engine and controls their activation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
