package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	venuedomain "github.com/smcatl/skyyield-backend/internal/venue/domain"
)

type createVenueRequest struct {
	LocationPartnerID string `json:"location_partner_id"`
	Name              string `json:"name"`
	Address           string `json:"address"`
	City              string `json:"city"`
	State             string `json:"state"`
}

func (s *Server) CreateVenue(c *gin.Context) {
	var req createVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.venueSvc.CreateVenue(c.Request.Context(), venuedomain.CreateVenueRequest{
		LocationPartnerID: strings.TrimSpace(req.LocationPartnerID),
		Name:              strings.TrimSpace(req.Name),
		Address:           strings.TrimSpace(req.Address),
		City:              strings.TrimSpace(req.City),
		State:             strings.TrimSpace(req.State),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListVenues(c *gin.Context) {
	resp, err := s.venueSvc.ListVenues(c.Request.Context(), venuedomain.ListVenuesRequest{
		LocationPartnerID: strings.TrimSpace(c.Query("location_partner_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetVenueByID(c *gin.Context) {
	resp, err := s.venueSvc.GetVenue(c.Request.Context(), venuedomain.GetVenueRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createDeviceRequest struct {
	Serial string `json:"serial"`
	Model  string `json:"model"`
}

func (s *Server) CreateDevice(c *gin.Context) {
	var req createDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.venueSvc.CreateDevice(c.Request.Context(), venuedomain.CreateDeviceRequest{
		VenueID: strings.TrimSpace(c.Param("id")),
		Serial:  strings.TrimSpace(req.Serial),
		Model:   strings.TrimSpace(req.Model),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setDeviceStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) SetDeviceStatus(c *gin.Context) {
	var req setDeviceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.venueSvc.SetDeviceStatus(c.Request.Context(), venuedomain.SetDeviceStatusRequest{
		DeviceID: strings.TrimSpace(c.Param("id")),
		Status:   strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordRevenueRequest struct {
	Month  string           `json:"month"`
	Amount *decimal.Decimal `json:"amount"`
}

func (s *Server) RecordDeviceRevenue(c *gin.Context) {
	var req recordRevenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.Amount == nil {
		AbortWithError(c, venuedomain.ErrInvalidAmount)
		return
	}

	resp, err := s.venueSvc.RecordRevenue(c.Request.Context(), venuedomain.RecordRevenueRequest{
		DeviceID: strings.TrimSpace(c.Param("id")),
		Month:    strings.TrimSpace(req.Month),
		Amount:   *req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
