package core

import "errors"

// Authentication failures. Every one of them is terminal for the request.
var (
	ErrMissingHeaders          = errors.New("missing authentication headers")
	ErrMalformedHeader         = errors.New("malformed authentication header")
	ErrLegacySignatureFormat   = errors.New("legacy signature format, please re-authenticate")
	ErrTimestampExpired        = errors.New("authentication timestamp expired")
	ErrInvalidSignature        = errors.New("invalid wallet signature")
	ErrNotAuthorized           = errors.New("wallet not authorized")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoRequestIdentity  = errors.New("no request identity established")
	ErrSessionInvalid     = errors.New("session is invalid")
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrSignatureRejected  = errors.New("signature request rejected")
)
