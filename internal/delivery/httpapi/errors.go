package httpapi

import (
	"errors"
	"net/http"

	"github.com/crestline-media/fulfillment-service/internal/domain"
)

// statusFor maps the domain error taxonomy onto HTTP codes. Messages for
// bearer-facing failures stay generic so dispute state never leaks.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return http.StatusUnauthorized, "authentication failed"
	case errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusBadRequest, "malformed payload"
	case errors.Is(err, domain.ErrUnknownOrder):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusGone, "confirmation link expired, request a new one"
	case errors.Is(err, domain.ErrTokenAlreadyConsumed):
		return http.StatusConflict, "confirmation link already used"
	case errors.Is(err, domain.ErrTokenUnknown):
		return http.StatusNotFound, "confirmation link invalid, request a new one"
	case errors.Is(err, domain.ErrConfirmationPending):
		return http.StatusConflict, "confirmation already pending"
	case errors.Is(err, domain.ErrOrderNotCleared):
		return http.StatusConflict, "order is not cleared for fulfillment"
	case errors.Is(err, domain.ErrAlreadyReleased):
		return http.StatusConflict, "hold already resolved"
	case errors.Is(err, domain.ErrUnlockTokenUnknown):
		return http.StatusNotFound, "access no longer valid"
	case errors.Is(err, domain.ErrUnlockTokenRevoked):
		return http.StatusForbidden, "access no longer valid"
	case errors.Is(err, domain.ErrTxnNotSettled):
		return http.StatusConflict, "order has no settled transaction"
	case errors.Is(err, domain.ErrProviderCallFailure):
		return http.StatusBadGateway, "provider call failed"
	}
	return http.StatusInternalServerError, "internal error"
}
