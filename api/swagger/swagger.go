package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "College Event Registration API",
        "description": "Event listings, registrations and the admin dashboard.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Auth",
            "description": "Sessions issued by the identity provider"
        },
        {
            "name": "Events",
            "description": "Student facing listings"
        },
        {
            "name": "Registrations",
            "description": "Event registrations"
        },
        {
            "name": "Profile",
            "description": "One-time profile setup"
        },
        {
            "name": "Admin",
            "description": "Dashboard: stats, manage, students"
        },
        {
            "name": "Exports",
            "description": "Signed roster downloads"
        }
    ],
    "paths": {
        "/auth/login": {
            "get": {
                "tags": [
                    "Auth"
                ],
                "summary": "Start sign-in with the identity provider",
                "parameters": [
                    {
                        "name": "provider",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "302": {
                        "description": "Redirect to provider"
                    }
                }
            }
        },
        "/auth/callback": {
            "get": {
                "tags": [
                    "Auth"
                ],
                "summary": "Resolve where to go after sign-in",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/auth/logout": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Sign out",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/auth/events": {
            "get": {
                "tags": [
                    "Auth"
                ],
                "summary": "Stream session changes as server-sent events",
                "responses": {
                    "200": {
                        "description": "text/event-stream"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/me": {
            "get": {
                "tags": [
                    "Auth"
                ],
                "summary": "Current session for the navigation bar",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/events": {
            "get": {
                "tags": [
                    "Events"
                ],
                "summary": "Home listing with the caller's registration state",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/events/{id}": {
            "get": {
                "tags": [
                    "Events"
                ],
                "summary": "Event detail",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/events/{id}/registration": {
            "get": {
                "tags": [
                    "Registrations"
                ],
                "summary": "Registration state of the caller",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Registrations"
                ],
                "summary": "Register for an event",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RegistrationForm"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Closed or already registered",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/my/events": {
            "get": {
                "tags": [
                    "Registrations"
                ],
                "summary": "Events the caller registered for",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/profile": {
            "get": {
                "tags": [
                    "Profile"
                ],
                "summary": "Caller's profile",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Profile"
                ],
                "summary": "Complete the one-time profile setup",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/StudentSetupRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Profile exists",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/profile/options": {
            "get": {
                "tags": [
                    "Profile"
                ],
                "summary": "Department, year and gender choices",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/admin/stats": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "Registrations per event by gender",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/admin/students": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "Filter the student directory",
                "parameters": [
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "year",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "department",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "gender",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/admin/events": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "Events ordered by date",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Create an event",
                "parameters": [
                    {
                        "name": "title",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "date",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "time",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "venue",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "description",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "image",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "registration_deadline",
                        "in": "formData",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "rules",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "instructions",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "image_file",
                        "in": "formData",
                        "type": "file"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "multipart/form-data",
                    "application/json"
                ]
            }
        },
        "/admin/events/{id}": {
            "put": {
                "tags": [
                    "Admin"
                ],
                "summary": "Update an event",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "confirm",
                        "in": "query",
                        "required": true,
                        "type": "boolean"
                    },
                    {
                        "name": "title",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "date",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "time",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "venue",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "description",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "image",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "registration_deadline",
                        "in": "formData",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "rules",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "instructions",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "image_file",
                        "in": "formData",
                        "type": "file"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "428": {
                        "description": "Confirmation required",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "multipart/form-data",
                    "application/json"
                ]
            },
            "delete": {
                "tags": [
                    "Admin"
                ],
                "summary": "Delete an event",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "confirm",
                        "in": "query",
                        "required": true,
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "428": {
                        "description": "Confirmation required",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/admin/events/{id}/form": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "Event loaded into the edit form",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/admin/events/{id}/registrations": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "Participants of one event",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/admin/events/{id}/registrations/export": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Render the roster and return a signed download link",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf"
                        ]
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/admin/registrations/{id}": {
            "delete": {
                "tags": [
                    "Admin"
                ],
                "summary": "Delete a registration",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "confirm",
                        "in": "query",
                        "required": true,
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "428": {
                        "description": "Confirmation required",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
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
        "/exports/download": {
            "get": {
                "tags": [
                    "Exports"
                ],
                "summary": "Download an export through its signed token",
                "parameters": [
                    {
                        "name": "token",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File"
                    }
                }
            }
        }
    },
    "definitions": {
        "RegistrationForm": {
            "type": "object",
            "properties": {
                "year": {
                    "type": "string"
                },
                "department": {
                    "type": "string"
                },
                "gender": {
                    "type": "string"
                }
            },
            "required": [
                "year",
                "department",
                "gender"
            ]
        },
        "StudentSetupRequest": {
            "type": "object",
            "properties": {
                "first_name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                },
                "college": {
                    "type": "string"
                },
                "department": {
                    "type": "string"
                },
                "year": {
                    "type": "string"
                },
                "gender": {
                    "type": "string"
                },
                "register_number": {
                    "type": "string"
                },
                "mobile": {
                    "type": "string"
                }
            },
            "required": [
                "first_name",
                "last_name",
                "college",
                "department",
                "year",
                "gender",
                "register_number",
                "mobile"
            ]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object",
                    "properties": {
                        "state": {
                            "type": "string",
                            "enum": [
                                "error",
                                "empty",
                                "ready"
                            ]
                        },
                        "message": {
                            "type": "string"
                        },
                        "redirect": {
                            "type": "string"
                        },
                        "count": {
                            "type": "integer"
                        }
                    }
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
