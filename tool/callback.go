package tool

import (
	"github.com/gin-gonic/gin"
)

// Control API bodies are {"data": ...} on success and {"error": "..."} on
// failure, optionally with extra context fields next to the error.
const (
	respKeyData   = "data"
	respKeyError  = "error"
	respKeyStatus = "status"
)

func FastReturnError(msg string) gin.H {
	return gin.H{respKeyError: msg}
}

// FastReturnSuccess answers requests that have nothing to return.
func FastReturnSuccess() gin.H {
	return gin.H{respKeyStatus: "ok"}
}

func FastReturnSuccessWithData(data any) gin.H {
	return gin.H{respKeyData: data}
}

// FastReturnErrorWithData adds context fields to an error body. A field
// named "error" in fields cannot replace msg.
func FastReturnErrorWithData(msg string, fields gin.H) gin.H {
	resp := make(gin.H, len(fields)+1)
	for k, v := range fields {
		resp[k] = v
	}
	resp[respKeyError] = msg
	return resp
}
