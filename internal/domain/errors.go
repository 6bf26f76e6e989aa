package domain

import "errors"

var (
	ErrAuthenticationFailed  = errors.New("webhook authentication failed")
	ErrMalformedPayload      = errors.New("malformed provider payload")
	ErrUnknownOrder          = errors.New("order not found")
	ErrIllegalTransition     = errors.New("illegal order status transition")
	ErrTokenExpired          = errors.New("confirmation token expired")
	ErrTokenUnknown          = errors.New("confirmation token unknown")
	ErrTokenAlreadyConsumed  = errors.New("confirmation token already consumed")
	ErrConfirmationPending   = errors.New("active confirmation already pending")
	ErrOrderNotCleared       = errors.New("order not cleared for fulfillment")
	ErrAlreadyReleased       = errors.New("hold already released")
	ErrProviderCallFailure   = errors.New("provider call failed")
	ErrDuplicateEvent        = errors.New("provider event already recorded")
	ErrFulfillmentExists     = errors.New("fulfillment already issued")
	ErrUnlockTokenUnknown    = errors.New("unlock token unknown")
	ErrUnlockTokenRevoked    = errors.New("unlock token revoked")
	ErrTxnNotSettled         = errors.New("order has no provider transaction id")
)
