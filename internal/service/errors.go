package service

import (
	"errors"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/model"
)

// domainError maps the sentinel errors of the model and repository layers.
// Anything else is returned unchanged for the global error handler.
func domainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNonPositiveAmount):
		return errs.NewBadRequestError("Amount must be greater than 0", true, errs.Code("INVALID_AMOUNT"), nil, nil)
	case errors.Is(err, model.ErrOverpayment):
		return errs.NewUnprocessableError("Payment exceeds the outstanding balance", errs.Code("OVERPAYMENT"))
	case errors.Is(err, model.ErrRefundExceedsPaid):
		return errs.NewUnprocessableError("Refund exceeds the paid amount", errs.Code("REFUND_EXCEEDS_PAID"))
	case errors.Is(err, model.ErrEventNotActive):
		return errs.NewUnprocessableError("Event is not active", errs.Code("EVENT_NOT_ACTIVE"))
	case errors.Is(err, model.ErrEventClosedForEnroll):
		return errs.NewUnprocessableError("Only draft or active events accept participants", errs.Code("EVENT_CLOSED"))
	case errors.Is(err, model.ErrAccountInactive):
		return errs.NewUnprocessableError("Account is inactive", errs.Code("ACCOUNT_INACTIVE"))
	case errors.Is(err, model.ErrStudentHasPayments):
		return errs.NewConflictError("Student has recorded payments and cannot be deleted", errs.Code("STUDENT_HAS_PAYMENTS"))
	case errors.Is(err, model.ErrEventHasTransactions):
		return errs.NewConflictError("Event has recorded transactions; cancel it instead", errs.Code("EVENT_HAS_TRANSACTIONS"))
	case errors.Is(err, model.ErrParticipantHasPayments):
		return errs.NewConflictError("Participant has recorded payments", errs.Code("PARTICIPANT_HAS_PAYMENTS"))
	case errors.Is(err, model.ErrAccountHasBalance):
		return errs.NewConflictError("Account balance must be zero before deleting it", errs.Code("ACCOUNT_HAS_BALANCE"))
	}
	return err
}
