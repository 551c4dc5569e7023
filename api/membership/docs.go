// Package membership holds the OpenAPI document served under /swagger/.
package membership

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {
			"name": "AussieBroadWAN Team",
			"url": "https://github.com/aussiebroadwan/membership"
		},
		"license": {
			"name": "MIT",
			"url": "https://opensource.org/licenses/MIT"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/v1/bootstrap": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Bootstrap"
				],
				"summary": "Bootstrap the membership system",
				"responses": {
					"201": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/auth/login": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Log in",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/auth/register": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Register",
				"responses": {
					"201": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/auth/reset-password": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Reset password with an OTP",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/auth/is-login": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Check session",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				}
			}
		},
		"/v1/auth/verify-token": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Verify token",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				}
			}
		},
		"/v1/auth/send/forgot-mail": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Send forgot-password mail",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/auth/send/forgot-mail/verify": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Verify forgot-password key",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/auth/send/forgot-mail/reset-password": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Reset password with a forgot-password key",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/auth/transaction/login": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "List login transactions",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"401": {
						"description": "Missing or invalid token",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"403": {
						"description": "Missing permission",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/otp": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"OTP"
				],
				"summary": "Request an OTP",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/otp/verify": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"OTP"
				],
				"summary": "Verify an OTP",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/member/send/invite": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Invitations"
				],
				"summary": "Send an invitation",
				"responses": {
					"201": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"401": {
						"description": "Missing or invalid token",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"403": {
						"description": "Missing permission",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/member/invite": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Invitations"
				],
				"summary": "List invitations",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"401": {
						"description": "Missing or invalid token",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"403": {
						"description": "Missing permission",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/member/invite/verify": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Invitations"
				],
				"summary": "Verify an invitation",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/member/invite/accept": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Invitations"
				],
				"summary": "Accept an invitation",
				"responses": {
					"201": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/member/invite/reject/{id}": {
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Invitations"
				],
				"summary": "Reject an invitation",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"401": {
						"description": "Missing or invalid token",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"403": {
						"description": "Missing permission",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/member/{id}/status": {
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Members"
				],
				"summary": "Change member status",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"401": {
						"description": "Missing or invalid token",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"403": {
						"description": "Missing permission",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/member/{id}/role": {
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Members"
				],
				"summary": "Assign role",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"401": {
						"description": "Missing or invalid token",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"403": {
						"description": "Missing permission",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/member/{id}": {
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Members"
				],
				"summary": "Delete member",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"401": {
						"description": "Missing or invalid token",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"403": {
						"description": "Missing permission",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/user/me": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Members"
				],
				"summary": "Current member",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"401": {
						"description": "Missing or invalid token",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"403": {
						"description": "Missing permission",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/my-member/avatar": {
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Members"
				],
				"summary": "Update own avatar",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"401": {
						"description": "Missing or invalid token",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"403": {
						"description": "Missing permission",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/roles": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Roles"
				],
				"summary": "List roles",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"401": {
						"description": "Missing or invalid token",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"403": {
						"description": "Missing permission",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/permissions": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Roles"
				],
				"summary": "List permissions",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"401": {
						"description": "Missing or invalid token",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					},
					"403": {
						"description": "Missing permission",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/livez": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Health"
				],
				"summary": "Health Check Endpoint",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				}
			}
		},
		"/readyz": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Health"
				],
				"summary": "Readiness Check Endpoint",
				"responses": {
					"200": {
						"description": "success",
						"schema": {
							"$ref": "#/definitions/httpx.Envelope"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"httpx.Envelope": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean"
				},
				"message": {
					"type": "string"
				},
				"data": {}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "JWT session token. Format: \"Bearer {token}\".",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Membership Service API",
	Description:      "Member registration, login sessions, one-time codes, password recovery and role-based invitations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
