package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	partnerdomain "github.com/smcatl/skyyield-backend/internal/partner/domain"
)

type createPartnerRequest struct {
	PartnerType         string `json:"partner_type"`
	CompanyName         string `json:"company_name"`
	ContactName         string `json:"contact_name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	ReferredByPartnerID string `json:"referred_by_partner_id"`
}

func (s *Server) CreatePartner(c *gin.Context) {
	var req createPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	kind, ok := partnerdomain.ParseKind(strings.TrimSpace(req.PartnerType))
	if !ok {
		AbortWithError(c, partnerdomain.ErrInvalidKind)
		return
	}

	resp, err := s.partnerSvc.Create(c.Request.Context(), partnerdomain.CreatePartnerRequest{
		Kind:                kind,
		CompanyName:         strings.TrimSpace(req.CompanyName),
		ContactName:         strings.TrimSpace(req.ContactName),
		Email:               strings.TrimSpace(req.Email),
		Phone:               strings.TrimSpace(req.Phone),
		ReferredByPartnerID: strings.TrimSpace(req.ReferredByPartnerID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "admin", "partner.create", string(kind), &targetID, map[string]any{
			"company_name": resp.CompanyName,
			"email":        resp.Email,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPartners(c *gin.Context) {
	var query struct {
		PartnerType string `form:"partner_type"`
		Status      string `form:"status"`
		PageToken   string `form:"page_token"`
		PageSize    int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	kind, ok := partnerdomain.ParseKind(strings.TrimSpace(query.PartnerType))
	if !ok {
		AbortWithError(c, partnerdomain.ErrInvalidKind)
		return
	}

	resp, err := s.partnerSvc.List(c.Request.Context(), partnerdomain.ListPartnerRequest{
		Kind:      kind,
		Status:    strings.TrimSpace(query.Status),
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPartnerByID(c *gin.Context) {
	kind, ok := partnerdomain.ParseKind(strings.TrimSpace(c.Query("partner_type")))
	if !ok {
		AbortWithError(c, partnerdomain.ErrInvalidKind)
		return
	}

	resp, err := s.partnerSvc.GetByID(c.Request.Context(), partnerdomain.GetPartnerRequest{
		Kind: kind,
		ID:   strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setStructureRequest struct {
	PartnerType       string           `json:"partner_type"`
	StructureType     string           `json:"structure_type"`
	FlatFeeMonthly    *decimal.Decimal `json:"flat_fee_monthly"`
	Percentage        *decimal.Decimal `json:"percentage"`
	PerReferralAmount *decimal.Decimal `json:"per_referral_amount"`
}

func (s *Server) SetPartnerStructure(c *gin.Context) {
	var req setStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	kind, ok := partnerdomain.ParseKind(strings.TrimSpace(req.PartnerType))
	if !ok {
		AbortWithError(c, partnerdomain.ErrInvalidKind)
		return
	}

	resp, err := s.partnerSvc.SetStructure(c.Request.Context(), partnerdomain.SetStructureRequest{
		Kind:              kind,
		ID:                strings.TrimSpace(c.Param("id")),
		StructureType:     strings.TrimSpace(req.StructureType),
		FlatFeeMonthly:    decimalOrZero(req.FlatFeeMonthly),
		Percentage:        decimalOrZero(req.Percentage),
		PerReferralAmount: decimalOrZero(req.PerReferralAmount),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "admin", "partner.set_structure", string(kind), &targetID, map[string]any{
			"structure_type": resp.StructureType,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
