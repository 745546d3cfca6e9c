package httperr

import (
	"github.com/gin-gonic/gin"
)

// Stable machine-readable codes; clients branch on these, not on messages.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeSlotUnavailable  = "SLOT_UNAVAILABLE"
	CodeIdempotency      = "IDEMPOTENCY_CONFLICT"
	CodeNotPayable       = "BOOKING_NOT_PAYABLE"
	CodeGatewayFailure   = "PAYMENT_GATEWAY_FAILURE"
	CodeSignatureInvalid = "SIGNATURE_INVALID"
	CodeInternal         = "INTERNAL"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

func NewResponse(status int, code, msg string, detail any) Response {
	resp := Response{Status: status, Detail: detail}
	resp.Error.Code = code
	resp.Error.Message = msg
	return resp
}

// AbortWithError records err on the gin context for the logging middleware and writes resp.
func AbortWithError(c *gin.Context, status int, err error, code, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := NewResponse(status, code, msg, detail)
	_ = c.Error(&gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
