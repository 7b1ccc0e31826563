package entitlement

import (
	"net/http"
	"strconv"
	"time"

	"github.com/LabelNest/NestHR/internal/shared/apperror"
	"github.com/LabelNest/NestHR/internal/shared/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("entitlement.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("entitlement.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("entitlement request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// GetSummary serves the per-type balance list. Employees without an explicit
// employee_id query see their own balances.
func (h *Handler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")

	employeeID := c.Query("employee_id")
	if employeeID == "" {
		employeeID = c.GetString("employee_id")
	}

	year := time.Now().UTC().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2200 {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid year", nil)
			return
		}
		year = parsed
	}

	resp, err := h.service.GetSummary(ctx, companyID, employeeID, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
