package response

import "github.com/gin-gonic/gin"

// Success writes the payload as-is. Response bodies are part of the API
// contract consumed by existing clients, so no envelope is added.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

// Error writes {"detail": "..."} with the given status. The detail text for
// conflict/unauthorized/not-found is a contractual literal and must not be
// rephrased.
func Error(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}
