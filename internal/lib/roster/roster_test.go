package roster

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/deppfellow/edufinance/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "document_number,first_name,last_name,grade,section,guardian_name,guardian_phone,guardian_email\n"

func TestParse_ValidRows(t *testing.T) {
	inst := uuid.New()
	in := header +
		"1.234.567-8,  Ana ,Pérez,5th,A,María Pérez,099123456,Maria@Example.com\n" +
		"7654321,Luis,Gómez,6th,,,,\n"

	b, err := Parse(strings.NewReader(in), inst)
	require.NoError(t, err)

	assert.Equal(t, 2, b.Rows)
	assert.Empty(t, b.Errors)
	require.Len(t, b.Students, 2)

	s := b.Students[0]
	assert.Equal(t, inst, s.InstitutionID)
	assert.Equal(t, "12345678", s.DocumentNumber)
	assert.Equal(t, "Ana", s.FirstName)
	assert.Equal(t, model.StudentActive, s.Status)
	require.NotNil(t, s.GuardianEmail)
	assert.Equal(t, "maria@example.com", *s.GuardianEmail)

	assert.Nil(t, b.Students[1].Section)
	assert.Nil(t, b.Students[1].GuardianEmail)
	assert.Equal(t, []string{"12345678", "7654321"}, b.Documents())
}

func TestParse_RowErrors(t *testing.T) {
	in := header +
		",Ana,Pérez,5th,,,,\n" +
		"222,Luis,Gómez,6th,,,,not-an-email\n" +
		"333,Eva,Ruiz,6th\n" +
		"444,Sol,Díaz,4th,,,,\n" +
		"4.4.4,Sol,Díaz,4th,,,,\n"

	b, err := Parse(strings.NewReader(in), uuid.New())
	require.NoError(t, err)

	require.Len(t, b.Students, 1)
	assert.Equal(t, "444", b.Students[0].DocumentNumber)

	res := b.Result(len(b.Students))
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 4, res.Failed)
	require.Len(t, res.Errors, 4)

	assert.Equal(t, model.RowError{Row: 1, Field: "document_number", Error: "is required"}, res.Errors[0])
	assert.Equal(t, model.RowError{Row: 2, Field: "guardian_email", Error: "must be a valid email address"}, res.Errors[1])
	assert.Equal(t, 3, res.Errors[2].Row)
	assert.Contains(t, res.Errors[2].Error, "expected 8 columns")
	assert.Equal(t, model.RowError{Row: 5, Field: "document_number", Error: "duplicates row 4"}, res.Errors[3])
}

func TestParse_HeaderIsCaseInsensitiveAndTrimmed(t *testing.T) {
	in := "\ufeffDocument_Number, FIRST_NAME,last_name,grade,section,guardian_name,guardian_phone,guardian_email\n" +
		"1,A,B,1st,,,,\n"

	b, err := Parse(strings.NewReader(in), uuid.New())
	require.NoError(t, err)
	assert.Len(t, b.Students, 1)
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{name: "empty", in: "", want: ErrEmptyFile},
		{name: "header only", in: header, want: ErrEmptyFile},
		{name: "wrong header", in: "doc,name\n1,a\n", want: ErrBadHeader},
		{name: "reordered header", in: "first_name,document_number,last_name,grade,section,guardian_name,guardian_phone,guardian_email\n", want: ErrBadHeader},
		{name: "bad quoting", in: header + "1,\"A,B,1st,,,,\n", want: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in), uuid.New())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_TooManyRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(header)
	for i := 0; i <= MaxRows; i++ {
		fmt.Fprintf(&sb, "%d,A,B,1st,,,,\n", i)
	}

	_, err := Parse(strings.NewReader(sb.String()), uuid.New())
	assert.ErrorIs(t, err, ErrTooManyRows)
}

func TestBatch_DropExisting(t *testing.T) {
	in := header + "111,A,B,1st,,,,\n222,C,D,1st,,,,\n333,E,F,1st,,,,\n"

	b, err := Parse(strings.NewReader(in), uuid.New())
	require.NoError(t, err)

	b.DropExisting(map[string]bool{"222": true})

	assert.Equal(t, []string{"111", "333"}, b.Documents())
	res := b.Result(2)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []model.RowError{{Row: 2, Field: "document_number", Error: "student already exists"}}, res.Errors)
}

func TestResult_NeverNilErrors(t *testing.T) {
	b, err := Parse(strings.NewReader(header+"1,A,B,1st,,,,\n"), uuid.New())
	require.NoError(t, err)

	res := b.Result(1)
	assert.NotNil(t, res.Errors)
	assert.Empty(t, res.Errors)
}

func TestWrite_RoundTrip(t *testing.T) {
	section := "B"
	email := "guardian@example.com"
	students := []model.Student{
		{DocumentNumber: "111", FirstName: "Ana", LastName: "Pérez, Jr", Grade: "5th", Section: &section, GuardianEmail: &email},
		{DocumentNumber: "222", FirstName: "Luis", LastName: "Gómez", Grade: "6th"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, students))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.TrimSpace(header), lines[0])
	assert.Equal(t, `111,Ana,"Pérez, Jr",5th,B,,,guardian@example.com`, lines[1])

	b, err := Parse(&buf, uuid.New())
	require.NoError(t, err)
	assert.Len(t, b.Students, 2)
	assert.Empty(t, b.Errors)
}
