// Package docs registers the OpenAPI document served under /swagger/.
// Regenerate with `swag init -g docs/swagger.go` after changing handler annotations.
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
    "paths": {
        "/health": {
            "get": {"tags": ["Health"], "summary": "Health Check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/ws": {
            "get": {"tags": ["Realtime"], "summary": "WebSocket endpoint",
                "description": "Upgrades to a WebSocket. Inbound: auth, location_update, sos, anomaly_alert. Outbound: nearby_kekes, safety_alert, sos_alert, error.",
                "responses": {"101": {"description": "Switching Protocols"}}}
        },
        "/api/reports/safety": {
            "post": {"tags": ["Reports"], "summary": "File a safety report", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "report", "required": true, "schema": {"$ref": "#/definitions/dto.SafetyReportRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "422": {"description": "Unprocessable Entity"}, "429": {"description": "Too Many Requests"}}}
        },
        "/api/reports/hotspots": {
            "get": {"tags": ["Reports"], "summary": "Safety hotspots of the last 24 hours", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/reports/route-feedback": {
            "post": {"tags": ["Reports"], "summary": "Submit route feedback", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "feedback", "required": true, "schema": {"$ref": "#/definitions/dto.RouteFeedbackRequest"}}],
                "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}, "429": {"description": "Too Many Requests"}}}
        },
        "/api/reports/route-intelligence": {
            "get": {"tags": ["Reports"], "summary": "Latest route feedback", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/fares/estimate": {
            "post": {"tags": ["Fares"], "summary": "Estimate a fare", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "trip", "required": true, "schema": {"$ref": "#/definitions/dto.FareEstimateRequest"}}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/api/trips/start": {
            "post": {"tags": ["Trips"], "summary": "Start a trip", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "trip", "required": true, "schema": {"$ref": "#/definitions/dto.StartTripRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "422": {"description": "Unprocessable Entity"}, "429": {"description": "Too Many Requests"}}}
        },
        "/api/trips/complete": {
            "post": {"tags": ["Trips"], "summary": "Complete a trip", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "trip", "required": true, "schema": {"$ref": "#/definitions/dto.CompleteTripRequest"}}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/api/admin/safety-analytics": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Safety analytics", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/api/admin/driver-stats": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Per-driver statistics", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/api/admin/kekes/live": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Live kekes", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/api/admin/kekes/nearby": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Kekes near a point", "produces": ["application/json"],
                "parameters": [
                    {"type": "number", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "name": "lng", "in": "query", "required": true},
                    {"type": "number", "name": "radius_km", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/api/admin/alerts/safety": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Broadcast a safety alert", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "alert", "required": true, "schema": {"$ref": "#/definitions/dto.SafetyAlertRequest"}}],
                "responses": {"202": {"description": "Accepted"}, "422": {"description": "Unprocessable Entity"}}}
        }
    },
    "definitions": {
        "dto.SafetyReportRequest": {"type": "object", "properties": {
            "user_id": {"type": "integer"}, "trip_id": {"type": "integer"},
            "type": {"type": "string", "enum": ["incident", "lost_found", "safety_report", "route_feedback"]},
            "category": {"type": "string"}, "risk_level": {"type": "string", "enum": ["low", "medium", "high"]},
            "content": {"type": "string"}, "location": {"type": "string"}, "audio_url": {"type": "string"}}},
        "dto.RouteFeedbackRequest": {"type": "object", "properties": {
            "driver_id": {"type": "integer"}, "route_name": {"type": "string"}, "origin": {"type": "string"},
            "destination": {"type": "string"}, "rating": {"type": "integer", "minimum": 1, "maximum": 5},
            "comments": {"type": "string"}, "safety_concerns": {"type": "string"},
            "traffic_level": {"type": "string", "enum": ["low", "medium", "high"]}}},
        "dto.FareEstimateRequest": {"type": "object", "properties": {
            "origin": {"type": "string"}, "destination": {"type": "string"}, "time_of_day": {"type": "string"},
            "demand_level": {"type": "string", "enum": ["low", "medium", "high"]}}},
        "dto.StartTripRequest": {"type": "object", "properties": {
            "passenger_id": {"type": "integer"}, "driver_id": {"type": "integer"}, "keke_id": {"type": "integer"},
            "start_lat": {"type": "number"}, "start_lng": {"type": "number"}}},
        "dto.CompleteTripRequest": {"type": "object", "properties": {
            "trip_id": {"type": "integer"}, "end_lat": {"type": "number"}, "end_lng": {"type": "number"},
            "fare": {"type": "number", "minimum": 0}, "distance": {"type": "number", "minimum": 0},
            "safety_score": {"type": "integer", "minimum": 0, "maximum": 100}}},
        "dto.SafetyAlertRequest": {"type": "object", "properties": {
            "category": {"type": "string"}, "location": {"type": "string"}, "summary": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and the admin access token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "KekeLink Safety Hub API",
	Description:      "Realtime safety coordination for keke passengers and drivers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
