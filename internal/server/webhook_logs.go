package server

import (
	"net/http"

	auditdomain "github.com/brightframelabs/portal/internal/audit/domain"
	"github.com/gin-gonic/gin"
)

// ListWebhookLogs is the operator's window into true delivery outcomes:
// the HTTP status returned to the provider deliberately hides them.
// GET /api/admin/webhook-logs
func (s *Server) ListWebhookLogs(c *gin.Context) {
	req := auditdomain.ListRequest{
		Status: auditdomain.LogStatus(c.Query("status")),
	}
	parsePagination(c, &req.Limit, &req.Offset)

	entries, err := s.logs.List(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list webhook logs"})
		return
	}
	respondData(c, entries)
}
