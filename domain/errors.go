package domain

import "errors"

var (
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")
	// ErrForbidden will throw if the caller is not allowed to perform the action
	ErrForbidden = errors.New("Forbidden access")

	// auction lifecycle
	ErrAlreadyCompleted  = errors.New("auction is already completed")
	ErrInvalidTransition = errors.New("invalid auction status transition")
	ErrAuctionEnded      = errors.New("auction has ended")
	ErrBidTooLow         = errors.New("bid must be higher than current price")

	// external collaborators
	ErrUpstreamFailure = errors.New("upstream service failed")
)
