package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Management API",
        "description": "Admin API for managing student and course registrations.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Student roster management"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Unavailable"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List active students with their courses",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/StudentDetail"}}
                    }
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register a student with courses",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentDetailForm"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/StudentDetail"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update a student and the linked courses",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentDetailForm"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentDetail"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Student or course not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/students/{studentId}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get one student with courses",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentDetail"}},
                    "400": {"description": "Malformed identifier", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Logically delete a student",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Export the active roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "Student": {
            "type": "object",
            "properties": {
                "studentId": {"type": "integer"},
                "fullname": {"type": "string"},
                "kanaName": {"type": "string"},
                "nickname": {"type": "string"},
                "email": {"type": "string"},
                "area": {"type": "string"},
                "telephone": {"type": "string"},
                "age": {"type": "integer"},
                "sex": {"type": "string", "enum": ["男", "女", "その他"]},
                "remark": {"type": "string"},
                "isDeleted": {"type": "boolean"}
            }
        },
        "StudentCourse": {
            "type": "object",
            "properties": {
                "courseId": {"type": "integer"},
                "studentId": {"type": "integer"},
                "courseName": {"type": "string"},
                "courseStartAt": {"type": "string", "format": "date"},
                "courseEndAt": {"type": "string", "format": "date"}
            }
        },
        "StudentDetail": {
            "type": "object",
            "properties": {
                "student": {"$ref": "#/definitions/Student"},
                "studentCourseList": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/StudentCourse"}
                }
            }
        },
        "StudentDetailForm": {
            "type": "object",
            "properties": {
                "student": {"$ref": "#/definitions/Student"},
                "studentCourseList": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/StudentCourse"}
                }
            },
            "required": ["student", "studentCourseList"]
        },
        "Violation": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "status": {"type": "integer"},
                "message": {"type": "string"},
                "errors": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Violation"}
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
