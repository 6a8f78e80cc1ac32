package service

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/deppfellow/edufinance/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoster struct {
	existing map[string]bool
	inserted []*model.Student
	all      []model.Student
}

func (f *fakeRoster) ListAll(context.Context, uuid.UUID) ([]model.Student, error) {
	return f.all, nil
}

func (f *fakeRoster) ExistingDocuments(_ context.Context, _ uuid.UUID, docs []string) (map[string]bool, error) {
	found := map[string]bool{}
	for _, d := range docs {
		if f.existing[d] {
			found[d] = true
		}
	}
	return found, nil
}

func (f *fakeRoster) InsertMany(_ context.Context, students []*model.Student) (int, error) {
	f.inserted = append(f.inserted, students...)
	return len(students), nil
}

const rosterHeader = "document_number,first_name,last_name,grade,section,guardian_name,guardian_phone,guardian_email\n"

func TestRosterImport_OnlyValidRowsAreInserted(t *testing.T) {
	store := &fakeRoster{existing: map[string]bool{"300": true}}
	c := newFakeCache()
	svc := NewRosterService(testServer(t), store)
	svc.cache = c
	inst := uuid.New()

	in := rosterHeader +
		"100,Ana,Pérez,5th,A,,,\n" +
		"200,,Gómez,5th,,,,\n" +
		"300,Eva,Ruiz,6th,,,,\n" +
		"400,Sol,Díaz,6th,,,,bad-email\n" +
		"500,Leo,Sosa,6th,,,,\n"

	res, err := svc.Import(context.Background(), inst, strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 3, res.Failed)
	require.Len(t, res.Errors, 3)
	assert.Equal(t, []int{2, 3, 4}, []int{res.Errors[0].Row, res.Errors[1].Row, res.Errors[2].Row})
	assert.Equal(t, "student already exists", res.Errors[1].Error)

	require.Len(t, store.inserted, 2)
	assert.Equal(t, "100", store.inserted[0].DocumentNumber)
	assert.Equal(t, inst, store.inserted[0].InstitutionID)
	assert.Len(t, c.deleted, 1)
}

func TestRosterImport_StructuralErrors(t *testing.T) {
	svc := NewRosterService(testServer(t), &fakeRoster{})

	_, err := svc.Import(context.Background(), uuid.New(), strings.NewReader("name,grade\nAna,5th\n"))
	httpErr := requireHTTPError(t, err, http.StatusBadRequest)
	assert.Equal(t, "INVALID_HEADER", httpErr.Code)

	_, err = svc.Import(context.Background(), uuid.New(), strings.NewReader(""))
	httpErr = requireHTTPError(t, err, http.StatusBadRequest)
	assert.Equal(t, "EMPTY_FILE", httpErr.Code)
}

func TestRosterExport(t *testing.T) {
	store := &fakeRoster{all: []model.Student{{DocumentNumber: "100", FirstName: "Ana", LastName: "Pérez", Grade: "5th"}}}
	svc := NewRosterService(testServer(t), store)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), uuid.New(), &buf))
	assert.Equal(t, rosterHeader+"100,Ana,Pérez,5th,,,,\n", buf.String())
}
