package model

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/edufinance/internal/validation"
)

type ParticipationStatus string

const (
	ParticipationPending ParticipationStatus = "pending"
	ParticipationPartial ParticipationStatus = "partial"
	ParticipationPaid    ParticipationStatus = "paid"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be greater than 0")
	ErrOverpayment       = errors.New("payment exceeds the outstanding balance")
	ErrRefundExceedsPaid = errors.New("refund exceeds the paid amount")
)

type EventParticipation struct {
	Base
	InstitutionID  uuid.UUID           `json:"institution_id" db:"institution_id"`
	EventID        uuid.UUID           `json:"event_id" db:"event_id"`
	StudentID      uuid.UUID           `json:"student_id" db:"student_id"`
	ExpectedAmount decimal.Decimal     `json:"expected_amount" db:"expected_amount"`
	PaidAmount     decimal.Decimal     `json:"paid_amount" db:"paid_amount"`
	Status         ParticipationStatus `json:"status" db:"status"`
}

// Outstanding is never negative.
func (p *EventParticipation) Outstanding() decimal.Decimal {
	out := p.ExpectedAmount.Sub(p.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// DeriveParticipationStatus maps the paid and expected amounts onto a status.
// A participation that owes nothing is paid.
func DeriveParticipationStatus(paid, expected decimal.Decimal) ParticipationStatus {
	switch {
	case paid.GreaterThanOrEqual(expected):
		return ParticipationPaid
	case paid.IsPositive():
		return ParticipationPartial
	default:
		return ParticipationPending
	}
}

// ApplyPayment adds amount to the paid total and updates the status.
func (p *EventParticipation) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	paid := p.PaidAmount.Add(amount)
	if paid.GreaterThan(p.ExpectedAmount) {
		return ErrOverpayment
	}
	p.PaidAmount = paid
	p.Status = DeriveParticipationStatus(paid, p.ExpectedAmount)
	return nil
}

// ApplyRefund subtracts amount from the paid total and updates the status.
func (p *EventParticipation) ApplyRefund(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if amount.GreaterThan(p.PaidAmount) {
		return ErrRefundExceedsPaid
	}
	p.PaidAmount = p.PaidAmount.Sub(amount)
	p.Status = DeriveParticipationStatus(p.PaidAmount, p.ExpectedAmount)
	return nil
}

// Participant is a participation joined with its student, used by listings.
type Participant struct {
	EventParticipation
	DocumentNumber string  `json:"document_number" db:"document_number"`
	FirstName      string  `json:"first_name" db:"first_name"`
	LastName       string  `json:"last_name" db:"last_name"`
	Grade          string  `json:"grade" db:"grade"`
	Section        *string `json:"section" db:"section"`
}

// EnrollRequest either lists students explicitly or selects every active
// student, optionally restricted to one grade.
type EnrollRequest struct {
	IDParam
	StudentIDs     []string         `json:"student_ids" validate:"omitempty,max=5000,dive,uuid"`
	AllActive      bool             `json:"all_active"`
	Grade          *string          `json:"grade" validate:"omitempty,max=30"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount"`
}

func (r *EnrollRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	var errs validation.CustomValidationErrors
	if !r.AllActive && len(r.StudentIDs) == 0 {
		errs = errs.Add("student_ids", "is required unless all_active is set")
	}
	if r.AllActive && len(r.StudentIDs) > 0 {
		errs = errs.Add("student_ids", "must be empty when all_active is set")
	}
	if r.ExpectedAmount != nil {
		errs = checkMoney(errs, "expected_amount", *r.ExpectedAmount, false)
	}
	return errs.OrNil()
}

// StudentUUIDs parses the validated ids, dropping duplicates.
func (r *EnrollRequest) StudentUUIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(r.StudentIDs))
	ids := make([]uuid.UUID, 0, len(r.StudentIDs))
	for _, s := range r.StudentIDs {
		id := uuid.MustParse(s)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// EnrollResult reports an enrollment. Skipped students were already
// enrolled; Unknown lists requested ids that match no student of the
// institution.
type EnrollResult struct {
	Enrolled int         `json:"enrolled"`
	Skipped  int         `json:"skipped"`
	Unknown  []uuid.UUID `json:"unknown_student_ids"`
}

// TallyEnrollment builds the result from the requested ids, the students
// that matched the selection and the number of rows inserted.
func TallyEnrollment(requested, matched []uuid.UUID, enrolled int) EnrollResult {
	found := make(map[uuid.UUID]struct{}, len(matched))
	for _, id := range matched {
		found[id] = struct{}{}
	}

	result := EnrollResult{
		Enrolled: enrolled,
		Skipped:  len(matched) - enrolled,
		Unknown:  []uuid.UUID{},
	}
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			result.Unknown = append(result.Unknown, id)
		}
	}
	return result
}

type ListParticipantsRequest struct {
	IDParam
	ListParams
	Status string `query:"status" validate:"omitempty,oneof=pending partial paid"`
}

func (r *ListParticipantsRequest) Validate() error {
	return validateStruct(r)
}

// ParticipationParam addresses one participant of an event.
type ParticipationParam struct {
	IDParam
	ParticipationID string `param:"participation_id" json:"-" validate:"required,uuid"`
}

func (r *ParticipationParam) Validate() error {
	return validateStruct(r)
}

func (r *ParticipationParam) ParticipationUUID() uuid.UUID {
	return uuid.MustParse(r.ParticipationID)
}
