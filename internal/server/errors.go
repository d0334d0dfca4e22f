package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	auditdomain "github.com/smcatl/skyyield-backend/internal/audit/domain"
	commissiondomain "github.com/smcatl/skyyield-backend/internal/commission/domain"
	partnerdomain "github.com/smcatl/skyyield-backend/internal/partner/domain"
	payoutdomain "github.com/smcatl/skyyield-backend/internal/payout/domain"
	pipelinedomain "github.com/smcatl/skyyield-backend/internal/pipeline/domain"
	venuedomain "github.com/smcatl/skyyield-backend/internal/venue/domain"
)

// errorResponse is the envelope every failed request returns.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware turns errors recorded on the gin context into the
// JSON error envelope. Handlers call AbortWithError instead of writing
// status codes themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// errorMessages maps sentinel errors to the wording clients display.
var errorMessages = map[error]string{
	commissiondomain.ErrMissingRevenueBasis: "revenue basis required for percentage-based commission",
	commissiondomain.ErrNoStructure:         "partner has no commission structure configured",
	commissiondomain.ErrUnknownPartnerType:  "unknown partner type",
	commissiondomain.ErrInvalidMonth:        "invalid commission month",
	commissiondomain.ErrInvalidAmount:       "commission amount must be a non-negative number",
	commissiondomain.ErrInvalidStatus:       "payment status must be pending or paid",
	commissiondomain.ErrInvalidTransition:   "commission is already paid",
	commissiondomain.ErrMissingID:           "commission id required",
	commissiondomain.ErrInvalidPartnerID:    "invalid partner id",
	commissiondomain.ErrPartnerNotFound:     "partner not found",
	commissiondomain.ErrNotFound:            "commission record not found",

	partnerdomain.ErrInvalidKind:        "unknown partner type",
	partnerdomain.ErrInvalidCompanyName: "company name required",
	partnerdomain.ErrInvalidEmail:       "valid email required",
	partnerdomain.ErrInvalidID:          "invalid partner id",
	partnerdomain.ErrInvalidStructure:   "unknown commission structure type",
	partnerdomain.ErrInvalidPercentage:  "percentage must be between 0 and 100",
	partnerdomain.ErrNotFound:           "partner not found",

	pipelinedomain.ErrInvalidRequest:    "company name, email and partner type required",
	pipelinedomain.ErrInvalidStage:      "unknown pipeline stage",
	pipelinedomain.ErrInvalidTransition: "stage transition not allowed",
	pipelinedomain.ErrInvalidID:         "invalid application id",
	pipelinedomain.ErrNotFound:          "application not found",

	venuedomain.ErrInvalidName:     "venue name required",
	venuedomain.ErrInvalidID:       "invalid id",
	venuedomain.ErrInvalidSerial:   "device serial required",
	venuedomain.ErrInvalidStatus:   "device status must be online, offline or retired",
	venuedomain.ErrInvalidAmount:   "revenue amount must be a non-negative number",
	venuedomain.ErrDuplicateSerial: "device serial already registered",
	venuedomain.ErrNotFound:        "venue not found",
	venuedomain.ErrDeviceNotFound:  "device not found",

	payoutdomain.ErrUnknownProvider:  "unknown payout provider",
	payoutdomain.ErrInvalidSignature: "invalid webhook signature",
	payoutdomain.ErrInvalidPayload:   "invalid webhook payload",

	auditdomain.ErrInvalidAction: "audit action required",
}

func mapError(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, "internal server error"
	}

	message := err.Error()
	for sentinel, msg := range errorMessages {
		if errors.Is(err, sentinel) {
			message = msg
			break
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, payoutdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, message

	case errors.Is(err, venuedomain.ErrDuplicateSerial):
		return http.StatusConflict, message

	case isNotFoundError(err):
		return http.StatusNotFound, message

	case isValidationError(err):
		return http.StatusBadRequest, message

	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, commissiondomain.ErrNotFound),
		errors.Is(err, commissiondomain.ErrPartnerNotFound),
		errors.Is(err, partnerdomain.ErrNotFound),
		errors.Is(err, pipelinedomain.ErrNotFound),
		errors.Is(err, venuedomain.ErrNotFound),
		errors.Is(err, venuedomain.ErrDeviceNotFound),
		errors.Is(err, payoutdomain.ErrUnknownProvider),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, commissiondomain.ErrMissingRevenueBasis),
		errors.Is(err, commissiondomain.ErrNoStructure),
		errors.Is(err, commissiondomain.ErrUnknownPartnerType),
		errors.Is(err, commissiondomain.ErrInvalidMonth),
		errors.Is(err, commissiondomain.ErrInvalidAmount),
		errors.Is(err, commissiondomain.ErrInvalidStatus),
		errors.Is(err, commissiondomain.ErrInvalidTransition),
		errors.Is(err, commissiondomain.ErrMissingID),
		errors.Is(err, commissiondomain.ErrInvalidPartnerID),
		errors.Is(err, partnerdomain.ErrInvalidKind),
		errors.Is(err, partnerdomain.ErrInvalidCompanyName),
		errors.Is(err, partnerdomain.ErrInvalidEmail),
		errors.Is(err, partnerdomain.ErrInvalidID),
		errors.Is(err, partnerdomain.ErrInvalidStructure),
		errors.Is(err, partnerdomain.ErrInvalidPercentage),
		errors.Is(err, pipelinedomain.ErrInvalidRequest),
		errors.Is(err, pipelinedomain.ErrInvalidStage),
		errors.Is(err, pipelinedomain.ErrInvalidTransition),
		errors.Is(err, pipelinedomain.ErrInvalidID),
		errors.Is(err, venuedomain.ErrInvalidName),
		errors.Is(err, venuedomain.ErrInvalidID),
		errors.Is(err, venuedomain.ErrInvalidSerial),
		errors.Is(err, venuedomain.ErrInvalidStatus),
		errors.Is(err, venuedomain.ErrInvalidAmount),
		errors.Is(err, payoutdomain.ErrInvalidPayload),
		errors.Is(err, auditdomain.ErrInvalidAction):
		return true
	default:
		return false
	}
}
