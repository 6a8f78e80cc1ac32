package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/edufinance/internal/validation"
)

type TransactionType string

const (
	TransactionPayment TransactionType = "payment"
	TransactionRefund  TransactionType = "refund"
)

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodCard     PaymentMethod = "card"
	MethodOther    PaymentMethod = "other"
)

// EventTransaction is an append-only audit row of the ledger.
type EventTransaction struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	InstitutionID   uuid.UUID       `json:"institution_id" db:"institution_id"`
	EventID         uuid.UUID       `json:"event_id" db:"event_id"`
	ParticipationID uuid.UUID       `json:"participation_id" db:"participation_id"`
	StudentID       uuid.UUID       `json:"student_id" db:"student_id"`
	AccountID       *uuid.UUID      `json:"account_id" db:"account_id"`
	Type            TransactionType `json:"type" db:"type"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Method          PaymentMethod   `json:"method" db:"method"`
	Reference       *string         `json:"reference" db:"reference"`
	Notes           *string         `json:"notes" db:"notes"`
	BalanceAfter    decimal.Decimal `json:"balance_after" db:"balance_after"`
	RecordedBy      *uuid.UUID      `json:"recorded_by" db:"recorded_by"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// PaymentRequest is shared by payments and refunds.
type PaymentRequest struct {
	ParticipationParam
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"omitempty,oneof=cash transfer card other"`
	Reference *string         `json:"reference" validate:"omitempty,max=100"`
	Notes     *string         `json:"notes" validate:"omitempty,max=1000"`
	AccountID *string         `json:"account_id" validate:"omitempty,uuid"`
}

func (r *PaymentRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	var errs validation.CustomValidationErrors
	errs = checkMoney(errs, "amount", r.Amount, true)
	return errs.OrNil()
}

// Movement converts the request into a ledger movement.
func (r *PaymentRequest) Movement(kind TransactionType, recordedBy uuid.UUID) LedgerMovement {
	m := LedgerMovement{
		EventID:         r.UUID(),
		ParticipationID: r.ParticipationUUID(),
		Type:            kind,
		Amount:          r.Amount,
		Method:          PaymentMethod(r.Method),
		Reference:       CleanOptional(r.Reference),
		Notes:           CleanOptional(r.Notes),
		RecordedBy:      recordedBy,
	}
	if m.Method == "" {
		m.Method = MethodCash
	}
	if r.AccountID != nil && *r.AccountID != "" {
		id := uuid.MustParse(*r.AccountID)
		m.AccountID = &id
	}
	return m
}

// LedgerMovement is a validated payment or refund ready to be applied.
type LedgerMovement struct {
	InstitutionID   uuid.UUID
	EventID         uuid.UUID
	ParticipationID uuid.UUID
	AccountID       *uuid.UUID
	Type            TransactionType
	Amount          decimal.Decimal
	Method          PaymentMethod
	Reference       *string
	Notes           *string
	RecordedBy      uuid.UUID
}

// LedgerReceipt is returned after a movement is committed.
type LedgerReceipt struct {
	Transaction   EventTransaction   `json:"transaction"`
	Participation EventParticipation `json:"participation"`
	EventTotal    decimal.Decimal    `json:"event_total_collected"`
	Event         *Event             `json:"-"`
	Student       *Student           `json:"-"`
}

type ListTransactionsRequest struct {
	IDParam
	ListParams
	Type string `query:"type" validate:"omitempty,oneof=payment refund"`
}

func (r *ListTransactionsRequest) Validate() error {
	return validateStruct(r)
}

// ReconcileReport summarizes a total_collected recomputation.
type ReconcileReport struct {
	Events  int `json:"events"`
	Drifted int `json:"drifted"`
}
