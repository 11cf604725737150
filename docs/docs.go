// Package docs holds the OpenAPI description served at /swagger.
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
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/capabilities": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "List analysis capabilities",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/analysis/{capability}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Run one analysis capability for a ticker",
                "parameters": [
                    {"type": "string", "description": "Capability", "name": "capability", "in": "path", "required": true},
                    {"description": "Ticker and capability parameters", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AnalysisBody"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AnalysisResult"}},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"},
                    "502": {"description": "Bad Gateway"},
                    "504": {"description": "Gateway Timeout"}
                }
            }
        },
        "/api/backtest": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Backtest a strategy over a date range",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AnalysisBody"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AnalysisResult"}}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/ml/predict": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Simulate model training and forecast prices",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AnalysisBody"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AnalysisResult"}}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/community": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Retail and institutional sentiment for a ticker",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AnalysisBody"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AnalysisResult"}}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/institutions/deep-dive": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Profile an institution's holdings and moves",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AnalysisBody"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AnalysisResult"}}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/portfolio/optimize": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Optimize a portfolio of holdings",
                "parameters": [{"name": "body", "in": "body", "schema": {"$ref": "#/definitions/handler.AnalysisBody"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AnalysisResult"}}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/fuzzy": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Fuzzy correlation of a ticker against peers",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AnalysisBody"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AnalysisResult"}}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/market/ribbon": {
            "get": {"produces": ["application/json"], "tags": ["market"], "summary": "Regional index ribbon", "responses": {"200": {"description": "OK"}}}
        },
        "/api/market/surfaces/{surface}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Quotes of one market surface",
                "parameters": [{"type": "string", "name": "surface", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/market/surfaces/{surface}/symbols": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Add a symbol to a surface",
                "parameters": [{"type": "string", "name": "surface", "in": "path", "required": true}],
                "responses": {"200": {"description": "Already present"}, "201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/market/surfaces/{surface}/symbols/{symbol}": {
            "delete": {
                "tags": ["market"],
                "summary": "Remove a symbol from a surface",
                "parameters": [{"type": "string", "name": "surface", "in": "path", "required": true}, {"type": "string", "name": "symbol", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/market/anomalies": {
            "get": {"produces": ["application/json"], "tags": ["market"], "summary": "Isolation-forest anomaly scores of the screener surface", "responses": {"200": {"description": "OK"}}}
        },
        "/api/market/stream": {
            "get": {"tags": ["market"], "summary": "Live market snapshots over WebSocket", "responses": {"101": {"description": "Switching Protocols"}}}
        },
        "/api/portfolio/holdings": {
            "get": {"produces": ["application/json"], "tags": ["portfolio"], "summary": "Portfolio holdings", "responses": {"200": {"description": "OK"}}}
        },
        "/api/portfolio/holdings/{ticker}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["portfolio"],
                "summary": "Create or replace a holding",
                "parameters": [{"type": "string", "name": "ticker", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "delete": {
                "tags": ["portfolio"],
                "summary": "Remove a holding",
                "parameters": [{"type": "string", "name": "ticker", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/portfolio/history": {
            "get": {"produces": ["application/json"], "tags": ["portfolio"], "summary": "Portfolio value history with summary statistics", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "handler.AnalysisBody": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "view": {"type": "string"},
                "params": {"type": "object"}
            }
        },
        "domain.AnalysisResult": {
            "type": "object",
            "properties": {
                "requestId": {"type": "string"},
                "ticker": {"type": "string"},
                "capability": {"type": "string"},
                "content": {"type": "string"},
                "generatedAt": {"type": "string"},
                "sentiment": {"type": "string"},
                "score": {"type": "number"},
                "sources": {"type": "array", "items": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Trading Insight API",
	Description:      "AI-generated equity analyses over a simulated market.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
