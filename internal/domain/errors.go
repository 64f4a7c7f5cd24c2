package domain

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrEventNotActive  = errors.New("event is not active")
	ErrBettingClosed   = errors.New("betting is closed")
	ErrBetExists       = errors.New("user already has a bet on this event")
	ErrBetNotFound     = errors.New("bet not found")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidDeadline = errors.New("deadlines must be ordered and in the future")

	ErrProposalExists        = errors.New("outcome already proposed")
	ErrNoProposal            = errors.New("no outcome proposed")
	ErrEventNotEnded         = errors.New("event deadline has not passed")
	ErrResolutionExpired     = errors.New("resolution deadline has passed")
	ErrInsufficientEvidence  = errors.New("insufficient resolution evidence")
	ErrInsufficientApprovals = errors.New("insufficient multi-sig approvals")

	ErrDisputeWindowClosed = errors.New("dispute window has closed")
	ErrInsufficientStake   = errors.New("dispute stake below minimum")
	ErrOpenDisputeExists   = errors.New("user already has an open dispute on this event")
	ErrDisputeNotFound     = errors.New("dispute not found")
	ErrDisputeNotOpen      = errors.New("dispute is not open for review")
	ErrNotEscalatable      = errors.New("dispute cannot be escalated")

	ErrInsufficientBalance = errors.New("insufficient balance")
)
