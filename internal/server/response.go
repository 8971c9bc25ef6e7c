package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func parsePagination(c *gin.Context, limit, offset *int) {
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		*limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		*offset = v
	}
}
