package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pipelinedomain "github.com/smcatl/skyyield-backend/internal/pipeline/domain"
)

type submitApplicationRequest struct {
	PartnerType string `json:"partner_type"`
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Message     string `json:"message"`
}

func (s *Server) SubmitApplication(c *gin.Context) {
	var req submitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.pipelineSvc.Submit(c.Request.Context(), pipelinedomain.SubmitRequest{
		PartnerType: strings.TrimSpace(req.PartnerType),
		CompanyName: strings.TrimSpace(req.CompanyName),
		ContactName: strings.TrimSpace(req.ContactName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Message:     strings.TrimSpace(req.Message),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListApplications(c *gin.Context) {
	resp, err := s.pipelineSvc.List(c.Request.Context(), pipelinedomain.ListRequest{
		Stage: strings.TrimSpace(c.Query("stage")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetApplicationByID(c *gin.Context) {
	resp, err := s.pipelineSvc.GetByID(c.Request.Context(), pipelinedomain.GetRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type transitionApplicationRequest struct {
	Stage           string `json:"stage"`
	RejectionReason string `json:"rejection_reason"`
}

func (s *Server) TransitionApplication(c *gin.Context) {
	var req transitionApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.pipelineSvc.Transition(c.Request.Context(), pipelinedomain.TransitionRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		Stage:           strings.TrimSpace(req.Stage),
		RejectionReason: strings.TrimSpace(req.RejectionReason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "admin", "application.transition", "application", &targetID, map[string]any{
			"stage": resp.Stage,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
