package services

import "errors"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNoRecipients      = errors.New("no recipients selected")
	ErrInvalidRecipient  = errors.New("invalid recipient")
	ErrSelfPayment       = errors.New("cannot pay yourself")
	ErrForbidden         = errors.New("not allowed for this user")
	ErrNotFound          = errors.New("not found")
	ErrNotCompany        = errors.New("business account required")
	ErrInvalidFeedback   = errors.New("invalid feedback")
	ErrFeedbackRecorded  = errors.New("feedback already recorded")
	ErrInvalidDeal       = errors.New("invalid hot deal")
	ErrInvalidTreasure   = errors.New("invalid treasure")
	ErrOwnTreasure       = errors.New("cannot claim your own treasure")
	ErrInvalidProfile    = errors.New("invalid business profile")
	ErrDuplicateRequest  = errors.New("request id already used")
	ErrInvalidImage      = errors.New("invalid image")
)
