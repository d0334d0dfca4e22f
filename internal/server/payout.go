package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	payoutdomain "github.com/smcatl/skyyield-backend/internal/payout/domain"
)

// HandlePayoutWebhook receives provider payout notifications. The raw body is
// read before any parsing so signature verification sees the exact bytes sent.
func (s *Server) HandlePayoutWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		AbortWithError(c, payoutdomain.ErrInvalidPayload)
		return
	}

	if err := s.payoutSvc.HandleWebhook(c.Request.Context(), provider, payload, c.Request.Header); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
