package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/edufinance/internal/validation"
)

type EventType string

const (
	EventRaffle     EventType = "raffle"
	EventBingo      EventType = "bingo"
	EventGraduation EventType = "graduation"
	EventFee        EventType = "fee"
	EventOther      EventType = "other"
)

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventActive    EventStatus = "active"
	EventClosed    EventStatus = "closed"
	EventCancelled EventStatus = "cancelled"
)

// AcceptsEnrollment is true while the roster of an event may change.
func (s EventStatus) AcceptsEnrollment() bool {
	return s == EventDraft || s == EventActive
}

// AcceptsPayments is true only for running events.
func (s EventStatus) AcceptsPayments() bool {
	return s == EventActive
}

const dateLayout = "2006-01-02"

type Event struct {
	Base
	InstitutionID        uuid.UUID       `json:"institution_id" db:"institution_id"`
	CategoryID           *uuid.UUID      `json:"category_id" db:"category_id"`
	Name                 string          `json:"name" db:"name"`
	Type                 EventType       `json:"type" db:"type"`
	Description          *string         `json:"description" db:"description"`
	EventDate            *time.Time      `json:"event_date" db:"event_date"`
	TargetAmount         decimal.Decimal `json:"target_amount" db:"target_amount"`
	AmountPerParticipant decimal.Decimal `json:"amount_per_participant" db:"amount_per_participant"`
	TotalCollected       decimal.Decimal `json:"total_collected" db:"total_collected"`
	Status               EventStatus     `json:"status" db:"status"`
	CreatedBy            *uuid.UUID      `json:"created_by" db:"created_by"`
}

type CreateEventRequest struct {
	Name                 string          `json:"name" validate:"required,max=200"`
	Type                 string          `json:"type" validate:"required,oneof=raffle bingo graduation fee other"`
	Description          *string         `json:"description" validate:"omitempty,max=2000"`
	EventDate            *string         `json:"event_date" validate:"omitempty,datetime=2006-01-02"`
	CategoryID           *string         `json:"category_id" validate:"omitempty,uuid"`
	TargetAmount         decimal.Decimal `json:"target_amount"`
	AmountPerParticipant decimal.Decimal `json:"amount_per_participant"`
	Status               string          `json:"status" validate:"omitempty,oneof=draft active"`
}

func (r *CreateEventRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	var errs validation.CustomValidationErrors
	errs = checkMoney(errs, "target_amount", r.TargetAmount, false)
	errs = checkMoney(errs, "amount_per_participant", r.AmountPerParticipant, false)
	return errs.OrNil()
}

// ToEvent builds the Event row; Validate must have passed.
func (r *CreateEventRequest) ToEvent(institutionID, createdBy uuid.UUID) *Event {
	status := EventStatus(r.Status)
	if status == "" {
		status = EventDraft
	}
	e := &Event{
		InstitutionID:        institutionID,
		Name:                 CleanString(r.Name),
		Type:                 EventType(r.Type),
		Description:          CleanOptional(r.Description),
		TargetAmount:         r.TargetAmount.Round(2),
		AmountPerParticipant: r.AmountPerParticipant.Round(2),
		TotalCollected:       decimal.Zero,
		Status:               status,
		CreatedBy:            &createdBy,
	}
	if r.EventDate != nil {
		d, _ := time.Parse(dateLayout, *r.EventDate)
		e.EventDate = &d
	}
	if r.CategoryID != nil {
		id := uuid.MustParse(*r.CategoryID)
		e.CategoryID = &id
	}
	return e
}

type UpdateEventRequest struct {
	IDParam
	Name                 *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Type                 *string          `json:"type" validate:"omitempty,oneof=raffle bingo graduation fee other"`
	Description          *string          `json:"description" validate:"omitempty,max=2000"`
	EventDate            *string          `json:"event_date"`
	CategoryID           *string          `json:"category_id"`
	TargetAmount         *decimal.Decimal `json:"target_amount"`
	AmountPerParticipant *decimal.Decimal `json:"amount_per_participant"`
	Status               *string          `json:"status" validate:"omitempty,oneof=draft active closed cancelled"`
}

func (r *UpdateEventRequest) Validate() error {
	trimSpace(r.EventDate, r.CategoryID)
	if err := validateStruct(r); err != nil {
		return err
	}
	var errs validation.CustomValidationErrors
	errs = checkOptional(errs, "event_date", r.EventDate, "datetime="+dateLayout, msgDate)
	errs = checkOptional(errs, "category_id", r.CategoryID, "uuid", msgUUID)
	if r.TargetAmount != nil {
		errs = checkMoney(errs, "target_amount", *r.TargetAmount, false)
	}
	if r.AmountPerParticipant != nil {
		errs = checkMoney(errs, "amount_per_participant", *r.AmountPerParticipant, false)
	}
	return errs.OrNil()
}

// ApplyTo merges the non-nil fields into e.
func (r *UpdateEventRequest) ApplyTo(e *Event) {
	if r.Name != nil {
		e.Name = CleanString(*r.Name)
	}
	if r.Type != nil {
		e.Type = EventType(*r.Type)
	}
	if r.Description != nil {
		e.Description = CleanOptional(r.Description)
	}
	if r.EventDate != nil {
		if *r.EventDate == "" {
			e.EventDate = nil
		} else {
			d, _ := time.Parse(dateLayout, *r.EventDate)
			e.EventDate = &d
		}
	}
	if r.CategoryID != nil {
		if *r.CategoryID == "" {
			e.CategoryID = nil
		} else {
			id := uuid.MustParse(*r.CategoryID)
			e.CategoryID = &id
		}
	}
	if r.TargetAmount != nil {
		e.TargetAmount = r.TargetAmount.Round(2)
	}
	if r.AmountPerParticipant != nil {
		e.AmountPerParticipant = r.AmountPerParticipant.Round(2)
	}
	if r.Status != nil {
		e.Status = EventStatus(*r.Status)
	}
}

type ListEventsRequest struct {
	ListParams
	Status string `query:"status" validate:"omitempty,oneof=draft active closed cancelled"`
	Type   string `query:"type" validate:"omitempty,oneof=raffle bingo graduation fee other"`
}

func (r *ListEventsRequest) Validate() error {
	return validateStruct(r)
}

type EventFilter struct {
	Status EventStatus
	Type   EventType
	Limit  int
	Offset int
}

// EventSummary aggregates the participations of one event.
type EventSummary struct {
	EventID        uuid.UUID       `json:"event_id" db:"event_id"`
	Participants   int             `json:"participants" db:"participants"`
	Pending        int             `json:"pending" db:"pending"`
	Partial        int             `json:"partial" db:"partial"`
	Paid           int             `json:"paid" db:"paid"`
	TotalExpected  decimal.Decimal `json:"total_expected" db:"total_expected"`
	TotalCollected decimal.Decimal `json:"total_collected" db:"total_collected"`
	Outstanding    decimal.Decimal `json:"outstanding" db:"-"`
	TargetAmount   decimal.Decimal `json:"target_amount" db:"-"`
	TargetProgress decimal.Decimal `json:"target_progress" db:"-"`
}

// Finish derives the computed fields from the aggregated columns.
func (s *EventSummary) Finish(target decimal.Decimal) {
	s.Outstanding = s.TotalExpected.Sub(s.TotalCollected)
	if s.Outstanding.IsNegative() {
		s.Outstanding = decimal.Zero
	}
	s.TargetAmount = target
	s.TargetProgress = Ratio(s.TotalCollected, target)
}

// Ratio returns part/whole rounded to four places, or zero when whole is zero.
func Ratio(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.DivRound(whole, 4)
}

// checkMoney validates an amount: at most two decimals, non-negative, and
// strictly positive when positive is set.
func checkMoney(errs validation.CustomValidationErrors, field string, v decimal.Decimal, positive bool) validation.CustomValidationErrors {
	switch {
	case v.IsNegative():
		return errs.Add(field, "must not be negative")
	case positive && !v.IsPositive():
		return errs.Add(field, "must be greater than 0")
	case !v.Equal(v.Round(2)):
		return errs.Add(field, "must have at most 2 decimal places")
	case v.GreaterThan(MaxAmount):
		return errs.Add(field, "is too large")
	}
	return errs
}

// MaxAmount fits NUMERIC(14,2).
var MaxAmount = decimal.RequireFromString("999999999999.99")
