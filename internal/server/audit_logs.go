package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/smcatl/skyyield-backend/internal/audit/domain"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query struct {
		Action     string `form:"action"`
		TargetType string `form:"target_type"`
		Limit      int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListAuditLogRequest{
		Action:     strings.TrimSpace(query.Action),
		TargetType: strings.TrimSpace(query.TargetType),
		Limit:      query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
