package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	commissiondomain "github.com/smcatl/skyyield-backend/internal/commission/domain"
	commissionservice "github.com/smcatl/skyyield-backend/internal/commission/service"
)

// createCommissionRequest covers both shapes accepted on POST /api/commissions.
// Computed requests carry action=calculate with the camelCase operands; direct
// inserts carry the snake_case record fields verbatim.
type createCommissionRequest struct {
	Action string `json:"action"`

	// computed
	PartnerID    string           `json:"partnerId"`
	PartnerType  string           `json:"partnerType"`
	Month        string           `json:"month"`
	RevenueBasis *decimal.Decimal `json:"revenueBasis"`

	// direct insert
	RecipientType      string           `json:"recipient_type"`
	DirectPartnerID    string           `json:"partner_id"`
	CommissionMonth    string           `json:"commission_month"`
	CommissionAmount   *decimal.Decimal `json:"commission_amount"`
	CalculationMethod  string           `json:"calculation_method"`
	CalculationDetails string           `json:"calculation_details"`
	DirectRevenueBasis *decimal.Decimal `json:"revenue_basis"`
	Notes              string           `json:"notes"`
}

func (s *Server) CreateCommission(c *gin.Context) {
	var req createCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if strings.EqualFold(strings.TrimSpace(req.Action), "calculate") {
		rec, err := s.commissionSvc.Calculate(c.Request.Context(), commissiondomain.CalculateRequest{
			PartnerID:    strings.TrimSpace(req.PartnerID),
			PartnerType:  strings.TrimSpace(req.PartnerType),
			Month:        strings.TrimSpace(req.Month),
			RevenueBasis: req.RevenueBasis,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}

		s.auditCommission(c, "commission.calculate", rec)
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"commission": rec,
			"message":    fmt.Sprintf("Commission calculated: $%s", rec.Amount.StringFixed(2)),
		})
		return
	}

	amount := decimal.Zero
	if req.CommissionAmount != nil {
		amount = *req.CommissionAmount
	}

	rec, err := s.commissionSvc.Create(c.Request.Context(), commissiondomain.CreateRecordRequest{
		RecipientType:      strings.TrimSpace(req.RecipientType),
		PartnerID:          strings.TrimSpace(req.DirectPartnerID),
		CommissionMonth:    strings.TrimSpace(req.CommissionMonth),
		CommissionAmount:   amount,
		CalculationMethod:  strings.TrimSpace(req.CalculationMethod),
		CalculationDetails: req.CalculationDetails,
		RevenueBasis:       req.DirectRevenueBasis,
		Notes:              req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditCommission(c, "commission.create", rec)
	c.JSON(http.StatusOK, gin.H{"success": true, "commission": rec})
}

func (s *Server) ListCommissions(c *gin.Context) {
	var query struct {
		Month       string `form:"month"`
		Status      string `form:"status"`
		PartnerType string `form:"partner_type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.commissionSvc.List(c.Request.Context(), commissiondomain.ListRecordsRequest{
		Month:         strings.TrimSpace(query.Month),
		Status:        strings.TrimSpace(query.Status),
		RecipientType: strings.TrimSpace(query.PartnerType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"records": resp.Records,
		"summary": resp.Summary,
	})
}

func (s *Server) GetCommissionByDisplayID(c *gin.Context) {
	rec, err := s.commissionSvc.GetByDisplayID(c.Request.Context(), commissiondomain.GetRecordRequest{
		DisplayID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "commission": rec})
}

type updateCommissionStatusRequest struct {
	ID               string `json:"id"`
	PaymentStatus    string `json:"payment_status"`
	PaymentDate      string `json:"payment_date"`
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`
}

func (s *Server) UpdateCommissionStatus(c *gin.Context) {
	var req updateCommissionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	displayID := strings.TrimSpace(c.Param("id"))
	if displayID == "" {
		displayID = strings.TrimSpace(req.ID)
	}

	rec, err := s.commissionSvc.UpdateStatus(c.Request.Context(), commissiondomain.UpdateStatusRequest{
		DisplayID:        displayID,
		PaymentStatus:    strings.TrimSpace(req.PaymentStatus),
		PaymentDate:      strings.TrimSpace(req.PaymentDate),
		PaymentMethod:    strings.TrimSpace(req.PaymentMethod),
		PaymentReference: strings.TrimSpace(req.PaymentReference),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditCommission(c, "commission.status_update", rec)
	c.JSON(http.StatusOK, gin.H{"success": true, "commission": rec})
}

type runCommissionMonthRequest struct {
	Month string `json:"month"`
}

// RunCommissionMonth is the manual trigger for the monthly batch. Without a
// month it targets the previous calendar month.
func (s *Server) RunCommissionMonth(c *gin.Context) {
	var req runCommissionMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var month time.Time
	if raw := strings.TrimSpace(req.Month); raw != "" {
		parsed, err := commissionservice.ParseMonth(raw)
		if err != nil {
			AbortWithError(c, commissiondomain.ErrInvalidMonth)
			return
		}
		month = parsed
	} else {
		now := s.clock.Now()
		month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	}

	summary, err := s.scheduler.ComputeMonth(c.Request.Context(), month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "run": summary})
}

func (s *Server) auditCommission(c *gin.Context, action string, rec commissiondomain.Record) {
	if s.auditSvc == nil {
		return
	}
	targetID := rec.DisplayID
	_ = s.auditSvc.AuditLog(c.Request.Context(), "admin", action, "commission", &targetID, map[string]any{
		"display_id":     rec.DisplayID,
		"recipient_type": rec.RecipientType,
		"amount":         rec.Amount.String(),
		"payment_status": rec.PaymentStatus,
	})
}
