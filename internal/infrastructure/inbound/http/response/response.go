package response

import "github.com/gin-gonic/gin"

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Error aborts the request with a JSON error body.
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Message: message})
}
