package model

import (
	"strings"

	"github.com/deppfellow/edufinance/internal/validation"
	"github.com/google/uuid"
)

type StudentStatus string

const (
	StudentActive    StudentStatus = "active"
	StudentInactive  StudentStatus = "inactive"
	StudentGraduated StudentStatus = "graduated"
	StudentWithdrawn StudentStatus = "withdrawn"
)

type Student struct {
	Base
	InstitutionID  uuid.UUID     `json:"institution_id" db:"institution_id"`
	DocumentNumber string        `json:"document_number" db:"document_number"`
	FirstName      string        `json:"first_name" db:"first_name"`
	LastName       string        `json:"last_name" db:"last_name"`
	Grade          string        `json:"grade" db:"grade"`
	Section        *string       `json:"section" db:"section"`
	GuardianName   *string       `json:"guardian_name" db:"guardian_name"`
	GuardianPhone  *string       `json:"guardian_phone" db:"guardian_phone"`
	GuardianEmail  *string       `json:"guardian_email" db:"guardian_email"`
	Status         StudentStatus `json:"status" db:"status"`
}

func (s *Student) FullName() string {
	return CleanString(s.FirstName + " " + s.LastName)
}

// NormalizeDocument strips spaces, dots and dashes so "1.234.567-8" and
// "12345678" are the same document.
func NormalizeDocument(doc string) string {
	r := strings.NewReplacer(" ", "", ".", "", "-", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(doc)))
}

type CreateStudentRequest struct {
	DocumentNumber string  `json:"document_number" validate:"required,max=30"`
	FirstName      string  `json:"first_name" validate:"required,max=100"`
	LastName       string  `json:"last_name" validate:"required,max=100"`
	Grade          string  `json:"grade" validate:"required,max=30"`
	Section        *string `json:"section" validate:"omitempty,max=30"`
	GuardianName   *string `json:"guardian_name" validate:"omitempty,max=200"`
	GuardianPhone  *string `json:"guardian_phone" validate:"omitempty,max=30"`
	GuardianEmail  *string `json:"guardian_email"`
	Status         string  `json:"status" validate:"omitempty,oneof=active inactive graduated withdrawn"`
}

func (r *CreateStudentRequest) Validate() error {
	trimSpace(r.GuardianEmail)
	if err := validateStruct(r); err != nil {
		return err
	}
	var errs validation.CustomValidationErrors
	errs = checkOptional(errs, "guardian_email", r.GuardianEmail, "email", msgEmail)
	return errs.OrNil()
}

// ToStudent builds a normalized Student for institutionID.
func (r *CreateStudentRequest) ToStudent(institutionID uuid.UUID) *Student {
	status := StudentStatus(r.Status)
	if status == "" {
		status = StudentActive
	}
	s := &Student{
		InstitutionID:  institutionID,
		DocumentNumber: NormalizeDocument(r.DocumentNumber),
		FirstName:      CleanString(r.FirstName),
		LastName:       CleanString(r.LastName),
		Grade:          CleanString(r.Grade),
		Section:        CleanOptional(r.Section),
		GuardianName:   CleanOptional(r.GuardianName),
		GuardianPhone:  CleanOptional(r.GuardianPhone),
		Status:         status,
	}
	s.GuardianEmail = normalizeOptionalEmail(r.GuardianEmail)
	return s
}

type UpdateStudentRequest struct {
	IDParam
	DocumentNumber *string `json:"document_number" validate:"omitempty,min=1,max=30"`
	FirstName      *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName       *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Grade          *string `json:"grade" validate:"omitempty,min=1,max=30"`
	Section        *string `json:"section" validate:"omitempty,max=30"`
	GuardianName   *string `json:"guardian_name" validate:"omitempty,max=200"`
	GuardianPhone  *string `json:"guardian_phone" validate:"omitempty,max=30"`
	GuardianEmail  *string `json:"guardian_email"`
	Status         *string `json:"status" validate:"omitempty,oneof=active inactive graduated withdrawn"`
}

func (r *UpdateStudentRequest) Validate() error {
	trimSpace(r.GuardianEmail)
	if err := validateStruct(r); err != nil {
		return err
	}
	var errs validation.CustomValidationErrors
	errs = checkOptional(errs, "guardian_email", r.GuardianEmail, "email", msgEmail)
	return errs.OrNil()
}

// ApplyTo merges the non-nil fields into s.
func (r *UpdateStudentRequest) ApplyTo(s *Student) {
	if r.DocumentNumber != nil {
		s.DocumentNumber = NormalizeDocument(*r.DocumentNumber)
	}
	if r.FirstName != nil {
		s.FirstName = CleanString(*r.FirstName)
	}
	if r.LastName != nil {
		s.LastName = CleanString(*r.LastName)
	}
	if r.Grade != nil {
		s.Grade = CleanString(*r.Grade)
	}
	if r.Section != nil {
		s.Section = CleanOptional(r.Section)
	}
	if r.GuardianName != nil {
		s.GuardianName = CleanOptional(r.GuardianName)
	}
	if r.GuardianPhone != nil {
		s.GuardianPhone = CleanOptional(r.GuardianPhone)
	}
	if r.GuardianEmail != nil {
		s.GuardianEmail = normalizeOptionalEmail(r.GuardianEmail)
	}
	if r.Status != nil {
		s.Status = StudentStatus(*r.Status)
	}
}

type ListStudentsRequest struct {
	ListParams
	Search string `query:"search" validate:"omitempty,max=100"`
	Grade  string `query:"grade" validate:"omitempty,max=30"`
	Status string `query:"status" validate:"omitempty,oneof=active inactive graduated withdrawn"`
}

func (r *ListStudentsRequest) Validate() error {
	return validateStruct(r)
}

// StudentFilter is the repository-level query.
type StudentFilter struct {
	Search string
	Grade  string
	Status StudentStatus
	Limit  int
	Offset int
}

// ImportResult is returned by the CSV roster import.
type ImportResult struct {
	Imported int        `json:"imported"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors"`
}

// RowError addresses a CSV failure by 1-based data row.
type RowError struct {
	Row   int    `json:"row"`
	Field string `json:"field"`
	Error string `json:"error"`
}
