// Package roster reads and writes the student roster CSV.
//
// The layout is fixed; the header row is required on import and always
// written on export.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/validation"
	"github.com/google/uuid"
)

// Header is the column layout shared by import and export.
var Header = []string{
	"document_number",
	"first_name",
	"last_name",
	"grade",
	"section",
	"guardian_name",
	"guardian_phone",
	"guardian_email",
}

// MaxRows caps the data rows of one import.
const MaxRows = 5000

var (
	ErrEmptyFile   = errors.New("file is empty")
	ErrBadHeader   = errors.New("unexpected header")
	ErrTooManyRows = fmt.Errorf("file has more than %d rows", MaxRows)
	ErrMalformed   = errors.New("malformed csv")
)

// Batch is the outcome of parsing one file. Students holds the rows that
// passed validation, in file order.
type Batch struct {
	Students []*model.Student
	Errors   []model.RowError
	Rows     int

	lines  []int
	failed map[int]struct{}
}

// Parse validates every data row of r and normalizes the valid ones into
// students of institutionID. Row-level problems are collected in the batch;
// only structural problems are returned as errors.
func Parse(r io.Reader, institutionID uuid.UUID) (*Batch, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true

	header, err := rd.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	b := &Batch{failed: map[int]struct{}{}}
	seen := map[string]int{}

	for {
		record, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		b.Rows++
		if b.Rows > MaxRows {
			return nil, ErrTooManyRows
		}
		line := b.Rows

		if len(record) != len(Header) {
			b.fail(line, "", fmt.Sprintf("expected %d columns, got %d", len(Header), len(record)))
			continue
		}

		req := rowRequest(record)
		if err := req.Validate(); err != nil {
			for _, fe := range validation.FieldErrors(err) {
				b.fail(line, fe.Field, fe.Error)
			}
			continue
		}

		student := req.ToStudent(institutionID)
		if first, ok := seen[student.DocumentNumber]; ok {
			b.fail(line, "document_number", fmt.Sprintf("duplicates row %d", first))
			continue
		}
		seen[student.DocumentNumber] = line

		b.Students = append(b.Students, student)
		b.lines = append(b.lines, line)
	}

	if b.Rows == 0 {
		return nil, ErrEmptyFile
	}
	return b, nil
}

func checkHeader(header []string) error {
	if len(header) != len(Header) {
		return fmt.Errorf("%w: want %s", ErrBadHeader, strings.Join(Header, ","))
	}
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		if !strings.EqualFold(strings.TrimSpace(col), Header[i]) {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i+1, col, Header[i])
		}
	}
	return nil
}

func rowRequest(record []string) *model.CreateStudentRequest {
	return &model.CreateStudentRequest{
		DocumentNumber: strings.TrimSpace(record[0]),
		FirstName:      strings.TrimSpace(record[1]),
		LastName:       strings.TrimSpace(record[2]),
		Grade:          strings.TrimSpace(record[3]),
		Section:        optional(record[4]),
		GuardianName:   optional(record[5]),
		GuardianPhone:  optional(record[6]),
		GuardianEmail:  optional(record[7]),
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func (b *Batch) fail(line int, field, msg string) {
	b.Errors = append(b.Errors, model.RowError{Row: line, Field: field, Error: msg})
	b.failed[line] = struct{}{}
}

// Documents lists the document numbers of the valid rows.
func (b *Batch) Documents() []string {
	docs := make([]string, len(b.Students))
	for i, s := range b.Students {
		docs[i] = s.DocumentNumber
	}
	return docs
}

// DropExisting turns rows whose document is already registered into row
// errors.
func (b *Batch) DropExisting(existing map[string]bool) {
	if len(existing) == 0 {
		return
	}
	students := b.Students[:0]
	lines := b.lines[:0]
	for i, s := range b.Students {
		if existing[s.DocumentNumber] {
			b.fail(b.lines[i], "document_number", "student already exists")
			continue
		}
		students = append(students, s)
		lines = append(lines, b.lines[i])
	}
	b.Students = students
	b.lines = lines
}

// Result reports the import; errors are ordered by row.
func (b *Batch) Result(imported int) model.ImportResult {
	errs := b.Errors
	if errs == nil {
		errs = []model.RowError{}
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Row < errs[j].Row })
	return model.ImportResult{
		Imported: imported,
		Failed:   len(b.failed),
		Errors:   errs,
	}
}

// Write exports students in the import layout.
func Write(w io.Writer, students []model.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, s := range students {
		record := []string{
			s.DocumentNumber,
			s.FirstName,
			s.LastName,
			s.Grade,
			deref(s.Section),
			deref(s.GuardianName),
			deref(s.GuardianPhone),
			deref(s.GuardianEmail),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
