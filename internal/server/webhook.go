package server

import (
	"errors"
	"net/http"
	"strings"

	paymentdomain "github.com/brightframelabs/portal/internal/payment/domain"
	"github.com/gin-gonic/gin"
)

// HandleProviderWebhook ingests one provider delivery. The body is passed
// through untouched; parsing happens after signature verification. By
// contract with the provider every internal failure still answers 200 —
// only trust failures (401), malformed payloads (400), and missing server
// configuration (500) surface as non-200, so the provider never retries
// storms against domain errors.
//
// POST /webhooks/:provider
func (s *Server) HandleProviderWebhook(c *gin.Context) {
	provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))
	if provider != "razorpay" {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	delivery := paymentdomain.Delivery{
		Body:      body,
		Signature: c.GetHeader("X-Razorpay-Signature"),
		EventID:   c.GetHeader("X-Razorpay-Event-Id"),
		SourceIP:  sourceIP(c),
	}

	result, err := s.ingest.Ingest(c.Request.Context(), delivery)
	switch {
	case errors.Is(err, paymentdomain.ErrSecretNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook secret not configured"})
	case errors.Is(err, paymentdomain.ErrInvalidSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
	case errors.Is(err, paymentdomain.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
	default:
		c.JSON(http.StatusOK, result)
	}
}

// sourceIP is recorded for audit only; it is never part of the trust
// decision.
func sourceIP(c *gin.Context) string {
	if xff := strings.TrimSpace(c.GetHeader("X-Forwarded-For")); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-Ip")); realIP != "" {
		return realIP
	}
	return c.ClientIP()
}
