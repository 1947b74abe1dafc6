package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// The JSON endpoints use nested error/response objects, e.g.
// {"error": {"Not Found": "..."}} and {"response": {"success": "..."}}.
// Existing API consumers depend on these exact shapes.

// respondNotFoundJSON sends a 404 with a structured error body.
func respondNotFoundJSON(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"Not Found": message}})
}

// respondBadRequestJSON sends a 400 with a structured error body.
func respondBadRequestJSON(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"Bad Request": message}})
}

// respondInternalError logs the error and sends a 500 response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"Internal": "internal server error"}})
}

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequestJSON(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseRating validates a rating form/query value as a float.
func parseRating(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	rating, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return rating, true
}
