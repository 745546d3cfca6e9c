package api

import (
	"io"
	"log/slog"
	"net/http"

	"mentor-booking/internal/domain/payment"
	resdto "mentor-booking/internal/handler/dto/response"
	"mentor-booking/internal/handler/httperr"
	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	settlement commands.SettlementCommands
	cfg        config.WebhookConfig
}

func NewWebhookHandler(settlement commands.SettlementCommands, cfg config.WebhookConfig) *WebhookHandler {
	return &WebhookHandler{settlement: settlement, cfg: cfg}
}

// @Summary Payment gateway callback
// @Description Accepts an event envelope or a bare order object; signed with HMAC-SHA256 when a secret is configured
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Webhook-Signature header string false "hex HMAC-SHA256 of the raw body"
// @Success 200 {object} resdto.WebhookResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /payments/webhook [post]
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeInvalidRequest, "Unreadable body", nil)
		return
	}

	// Verification is against the exact bytes received, before any parsing.
	if h.cfg.Secret != "" {
		if err := payment.VerifySignature(h.cfg.Secret, body, c.GetHeader(h.cfg.SignatureHeader)); err != nil {
			slog.Warn("rejecting payment callback", "reason", err.Error(), "client_ip", c.ClientIP())
			httperr.AbortWithError(c, http.StatusUnauthorized, err, httperr.CodeSignatureInvalid, "Invalid signature", nil)
			return
		}
	}

	result, err := h.settlement.HandleCallback(c.Request.Context(), body)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resdto.FromReconciliationResult(result))
	case errs.Is(err, commands.ErrMalformedCallback):
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeInvalidRequest, "Malformed payload", nil)
	case errs.Is(err, commands.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Booking not found", nil)
	default:
		// Non-2xx makes the gateway redeliver.
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
	}
}
