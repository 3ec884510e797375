package domain

import "errors"

var (
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidOrder            = errors.New("invalid order")
	ErrExpired                 = errors.New("order expired")
	ErrWrongAmount             = errors.New("sent value does not match order price")
	ErrDuplicateSale           = errors.New("sale already recorded")
	ErrWrongState              = errors.New("record not in required state")
	ErrAlreadyRefunded         = errors.New("sale already refunded")
	ErrInsufficientPoolBalance = errors.New("insufficient pool balance")
	ErrNotAnchored             = errors.New("ticket commitment not anchored")
	ErrTicketRevoked           = errors.New("ticket commitment revoked")
	ErrTransferFailed          = errors.New("transfer failed")
	ErrNotFound                = errors.New("not found")
	ErrConflict                = errors.New("conflict")
	ErrUnsupportedEventType    = errors.New("unsupported event type")
	ErrUnsupportedEventClass   = errors.New("unsupported event class")
)
