package model

import "errors"

// Domain conflicts reported by the data layer and mapped to HTTP errors by
// the services.
var (
	ErrStudentHasPayments     = errors.New("student has recorded payments")
	ErrEventHasTransactions   = errors.New("event has recorded transactions")
	ErrParticipantHasPayments = errors.New("participant has recorded payments")
	ErrAccountHasBalance      = errors.New("account balance is not zero")
	ErrAccountInactive        = errors.New("account is inactive")
	ErrEventNotActive         = errors.New("event is not active")
	ErrEventClosedForEnroll   = errors.New("event does not accept enrollment")
)
