package model

import (
	"testing"

	"github.com/deppfellow/edufinance/internal/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDocument(t *testing.T) {
	assert.Equal(t, "12345678", NormalizeDocument(" 1.234.567-8 "))
	assert.Equal(t, "AB12", NormalizeDocument("ab 12"))
}

func TestCreateStudentRequest_ToStudent(t *testing.T) {
	section := "  "
	email := " Parent@Example.COM "
	r := &CreateStudentRequest{
		DocumentNumber: "1.234.567",
		FirstName:      "  Ana   Maria ",
		LastName:       "Lopez",
		Grade:          "5",
		Section:        &section,
		GuardianEmail:  &email,
	}
	require.NoError(t, r.Validate())

	inst := uuid.New()
	s := r.ToStudent(inst)

	assert.Equal(t, inst, s.InstitutionID)
	assert.Equal(t, "1234567", s.DocumentNumber)
	assert.Equal(t, "Ana Maria", s.FirstName)
	assert.Equal(t, "Ana Maria Lopez", s.FullName())
	assert.Nil(t, s.Section)
	require.NotNil(t, s.GuardianEmail)
	assert.Equal(t, "parent@example.com", *s.GuardianEmail)
	assert.Equal(t, StudentActive, s.Status)
}

func TestCreateStudentRequest_Validate(t *testing.T) {
	bad := "not-an-email"
	r := &CreateStudentRequest{DocumentNumber: "1", FirstName: "A", LastName: "B", Grade: "1", GuardianEmail: &bad}
	assert.Error(t, r.Validate())

	missing := &CreateStudentRequest{FirstName: "A"}
	assert.Error(t, missing.Validate())

	blank := "   "
	r = &CreateStudentRequest{DocumentNumber: "1", FirstName: "A", LastName: "B", Grade: "1", GuardianEmail: &blank}
	require.NoError(t, r.Validate())
	assert.Nil(t, r.ToStudent(uuid.New()).GuardianEmail)
}

func TestUpdateStudentRequest_ApplyTo(t *testing.T) {
	id := uuid.NewString()

	t.Run("blank guardian email clears it", func(t *testing.T) {
		email := "old@example.com"
		s := &Student{FirstName: "Ana", GuardianEmail: &email, Status: StudentActive}

		empty := ""
		status := "graduated"
		r := &UpdateStudentRequest{IDParam: IDParam{ID: id}, GuardianEmail: &empty, Status: &status}
		require.NoError(t, r.Validate())
		r.ApplyTo(s)

		assert.Nil(t, s.GuardianEmail)
		assert.Equal(t, StudentGraduated, s.Status)
		assert.Equal(t, "Ana", s.FirstName)
	})

	t.Run("guardian email is trimmed and lowercased", func(t *testing.T) {
		s := &Student{}
		email := " New@Example.com "
		r := &UpdateStudentRequest{IDParam: IDParam{ID: id}, GuardianEmail: &email}
		require.NoError(t, r.Validate())
		r.ApplyTo(s)

		require.NotNil(t, s.GuardianEmail)
		assert.Equal(t, "new@example.com", *s.GuardianEmail)
	})

	t.Run("invalid guardian email", func(t *testing.T) {
		bad := "nope"
		r := &UpdateStudentRequest{IDParam: IDParam{ID: id}, GuardianEmail: &bad}
		err := r.Validate()
		require.Error(t, err)
		assert.Equal(t, "guardian_email", validation.FieldErrors(err)[0].Field)
	})
}

func TestEventSummary_Finish(t *testing.T) {
	s := &EventSummary{TotalExpected: dec("200"), TotalCollected: dec("50")}
	s.Finish(dec("400"))

	assert.True(t, s.Outstanding.Equal(dec("150")))
	assert.True(t, s.TargetProgress.Equal(dec("0.125")))

	empty := &EventSummary{}
	empty.Finish(dec("0"))
	assert.True(t, empty.TargetProgress.IsZero())
}

func TestDashboardStats_Finish(t *testing.T) {
	s := &DashboardStats{
		StudentsByStatus: map[string]int{"active": 3, "graduated": 1},
		EventsByStatus:   map[string]int{"active": 2},
		TotalExpected:    dec("0"),
		TotalCollected:   dec("0"),
	}
	s.Finish()

	assert.Equal(t, 4, s.TotalStudents)
	assert.Equal(t, 2, s.TotalEvents)
	assert.True(t, s.CollectionRate.IsZero())
}
