package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
)

// SMSHandler relays admin-composed text messages to clients.
type SMSHandler struct {
	gateway ports.SMSGateway
}

func NewSMSHandler(gateway ports.SMSGateway) *SMSHandler {
	return &SMSHandler{gateway: gateway}
}

type sendSMSRequest struct {
	To      string `json:"to"      validate:"required,max=32"`
	Message string `json:"message" validate:"required,max=1600"`
}

type sendSMSResponse struct {
	Success bool   `json:"success"`
	Details string `json:"details"`
}

type smsErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Send handles POST /api/sms.
//
// @Summary      Relay an SMS
// @Tags         sms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sendSMSRequest  true  "Recipient and text"
// @Success      200   {object}  sendSMSResponse
// @Failure      401   {object}  errorResponse
// @Failure      501   {object}  errorResponse
// @Failure      502   {object}  smsErrorResponse
// @Router       /api/sms [post]
func (h *SMSHandler) Send(c echo.Context) error {
	var req sendSMSRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	details, err := h.gateway.Send(c.Request().Context(), req.To, req.Message)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return c.JSON(http.StatusBadGateway, smsErrorResponse{Error: "sms gateway error", Details: upstream.Details})
		}
		return err
	}
	return c.JSON(http.StatusOK, sendSMSResponse{Success: true, Details: details})
}
