// Package docs registers the OpenAPI description of the progress API with
// swag so gin-swagger can serve it.
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
        "/habits": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["habits"],
                "summary": "List the caller's habits",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Habit"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["habits"],
                "summary": "Create a habit",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "habit", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.createHabitRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Habit"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/events": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Log a tracking event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "event", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.logEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.TrackingEvent"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/progress/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["progress"],
                "summary": "Lifetime stats across all habits of the caller",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.LifetimeStats"}}
                }
            }
        },
        "/progress/{habit_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["progress"],
                "summary": "Progress series of a habit",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Habit ID", "name": "habit_id", "in": "path", "required": true},
                    {"type": "string", "default": "1w", "description": "1w, 1m, YTD, 1y or All", "name": "time_frame", "in": "query"},
                    {"type": "string", "description": "Reference date (YYYY-MM-DD), defaults to today", "name": "reference", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ProgressSeries"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/progress/{habit_id}/heatmap": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["progress"],
                "summary": "Five-week heatmap of a habit",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Habit ID", "name": "habit_id", "in": "path", "required": true},
                    {"type": "string", "description": "Reference date (YYYY-MM-DD)", "name": "reference", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.HeatmapGrid"}}
                }
            }
        },
        "/progress/{habit_id}/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["progress"],
                "summary": "Lifetime stats of a habit",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Habit ID", "name": "habit_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.LifetimeStats"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Habit": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "title": {"type": "string"},
                "color": {"type": "string"},
                "icon": {"type": "string"},
                "sort_order": {"type": "integer"},
                "target_value": {"type": "integer"},
                "frequency_period": {"type": "string", "enum": ["daily", "weekly", "biweekly"]},
                "version": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "archived_at": {"type": "string"}
            }
        },
        "domain.TrackingEvent": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "habit_id": {"type": "string"},
                "user_id": {"type": "string"},
                "occurred_at": {"type": "string"},
                "period_start": {"type": "string"},
                "period_end": {"type": "string"},
                "count": {"type": "integer"},
                "goal": {"type": "integer"},
                "frequency_period": {"type": "string"},
                "version": {"type": "integer"},
                "deleted_at": {"type": "string"}
            }
        },
        "domain.Bucket": {
            "type": "object",
            "properties": {
                "index": {"type": "integer"},
                "start": {"type": "string"},
                "end": {"type": "string"},
                "achieved": {"type": "integer"},
                "goal": {"type": "number"},
                "ratio": {"type": "number"}
            }
        },
        "domain.ProgressSeries": {
            "type": "object",
            "properties": {
                "habit_id": {"type": "string"},
                "habit_title": {"type": "string"},
                "time_frame": {"type": "string", "enum": ["1w", "1m", "YTD", "1y", "All"]},
                "granularity": {"type": "string", "enum": ["day", "week", "month"]},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "buckets": {"type": "array", "items": {"$ref": "#/definitions/domain.Bucket"}},
                "ratios": {"type": "array", "items": {"type": "number"}},
                "baseline": {"type": "array", "items": {"type": "number"}},
                "cumulative": {"type": "array", "items": {"type": "integer"}},
                "stale": {"type": "boolean"}
            }
        },
        "domain.HeatmapGrid": {
            "type": "object",
            "properties": {
                "habit_id": {"type": "string"},
                "window_start": {"type": "string"},
                "reference_date": {"type": "string"},
                "weeks": {"type": "array", "items": {"type": "array", "items": {"type": "object"}}},
                "stale": {"type": "boolean"}
            }
        },
        "domain.LifetimeStats": {
            "type": "object",
            "properties": {
                "habit_id": {"type": "string"},
                "total_days_tracked": {"type": "integer"},
                "total_achieved": {"type": "integer"},
                "total_goal": {"type": "number"},
                "completion_rate": {"type": "number"},
                "longest_streak": {"type": "integer"},
                "current_streak": {"type": "integer"},
                "most_consistent_habit_id": {"type": "string"},
                "join_date": {"type": "string"},
                "stale": {"type": "boolean"}
            }
        },
        "http.createHabitRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "color": {"type": "string"},
                "icon": {"type": "string"},
                "frequency_period": {"type": "string"},
                "target_value": {"type": "integer"}
            }
        },
        "http.logEventRequest": {
            "type": "object",
            "required": ["habit_id", "count"],
            "properties": {
                "id": {"type": "string"},
                "habit_id": {"type": "string"},
                "occurred_at": {"type": "string"},
                "count": {"type": "integer"}
            }
        },
        "http.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kanso Progress Engine API",
	Description:      "Habit tracking with live progress series, heatmaps and lifetime stats.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
