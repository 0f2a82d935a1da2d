// Package response writes the JSON envelope shared by every API endpoint:
// {"success": bool, "code": string, "message": string, ...payload}.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Shared codes used outside a single module.
const (
	CodeAllFieldsRequired = "ALL_FIELDS_REQUIRED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeTooManyRequests   = "TOO_MANY_REQUESTS"
	CodeInternalError     = "INTERNAL_SERVER_ERROR"
	CodeNotFound          = "NOT_FOUND"
)

// Envelope is the decoded form of a response, used by tests and clients.
type Envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func body(success bool, code, message string, payload gin.H) gin.H {
	out := gin.H{
		"success": success,
		"message": message,
	}
	if code != "" {
		out["code"] = code
	}
	for k, v := range payload {
		out[k] = v
	}
	return out
}

// Success writes a 200 envelope with the payload keys merged in.
func Success(c *gin.Context, code, message string, payload gin.H) {
	c.JSON(http.StatusOK, body(true, code, message, payload))
}

// Fail writes a failure envelope with the given status.
func Fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, body(false, code, message, nil))
}

// AbortFail writes a failure envelope and stops the handler chain.
func AbortFail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, body(false, code, message, nil))
}

// FieldsRequired answers a request whose body or query is missing required fields.
func FieldsRequired(c *gin.Context) {
	Fail(c, http.StatusBadRequest, CodeAllFieldsRequired, "Please enter all fields")
}

// Internal answers an unexpected failure without exposing its detail.
func Internal(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, CodeInternalError, "Internal server error")
}
