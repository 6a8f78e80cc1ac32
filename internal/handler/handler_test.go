package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deppfellow/edufinance/internal/config"
	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/middleware"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/service"
	"github.com/deppfellow/edufinance/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Logger: &logger,
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
		},
	}
}

type fakeStudents struct {
	byID map[uuid.UUID]*model.Student
	all  []model.Student
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{byID: map[uuid.UUID]*model.Student{}}
}

func (f *fakeStudents) Create(_ context.Context, s *model.Student) (*model.Student, error) {
	s.ID = uuid.New()
	f.byID[s.ID] = s
	return s, nil
}

func (f *fakeStudents) GetByID(_ context.Context, institutionID, id uuid.UUID) (*model.Student, error) {
	s, ok := f.byID[id]
	if !ok || s.InstitutionID != institutionID {
		return nil, sqlerr.NotFound("students")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStudents) List(_ context.Context, institutionID uuid.UUID, _ model.StudentFilter) ([]model.Student, int, error) {
	var out []model.Student
	for _, s := range f.byID {
		if s.InstitutionID == institutionID {
			out = append(out, *s)
		}
	}
	return out, len(out), nil
}

func (f *fakeStudents) Update(_ context.Context, s *model.Student) (*model.Student, error) {
	f.byID[s.ID] = s
	return s, nil
}

func (f *fakeStudents) Delete(_ context.Context, _, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeStudents) ListAll(context.Context, uuid.UUID) ([]model.Student, error) {
	return f.all, nil
}

func (f *fakeStudents) ExistingDocuments(context.Context, uuid.UUID, []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (f *fakeStudents) InsertMany(_ context.Context, students []*model.Student) (int, error) {
	for _, s := range students {
		s.ID = uuid.New()
		f.byID[s.ID] = s
	}
	return len(students), nil
}

// withCaller stands in for RequireAuth and RequireTenant.
func withCaller(p model.Principal, inst *uuid.UUID) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.PrincipalKey, p)
			if inst != nil {
				c.Set(middleware.InstitutionIDKey, *inst)
			}
			return next(c)
		}
	}
}

func newEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	return e
}

func studentRoutes(t *testing.T, inst *uuid.UUID) (*echo.Echo, *fakeStudents) {
	t.Helper()
	s := testServer()
	store := newFakeStudents()
	h := NewStudentHandler(s, service.NewStudentService(s, store), service.NewRosterService(s, store))

	p := model.Principal{UserID: uuid.New(), InstitutionID: inst, Role: model.RoleAccountant}
	e := newEcho(s)
	g := e.Group("/students", withCaller(p, inst))
	g.POST("", Handle(h.Handler, h.Create, http.StatusCreated, &model.CreateStudentRequest{}))
	g.PUT("/:id", Handle(h.Handler, h.Update, http.StatusOK, &model.UpdateStudentRequest{}))
	g.GET("/:id", Handle(h.Handler, h.Get, http.StatusOK, &model.IDParam{}))
	g.POST("/import", Handle(h.Handler, h.Import, http.StatusOK, &model.EmptyRequest{}))
	g.GET("/export", HandleFile(h.Handler, h.Export, http.StatusOK, &model.EmptyRequest{}, "students.csv", "text/csv; charset=utf-8"))
	return e, store
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandle_CreatesWithinResolvedTenant(t *testing.T) {
	inst := uuid.New()
	e, store := studentRoutes(t, &inst)

	rec := serve(e, jsonRequest(http.MethodPost, "/students",
		`{"document_number":" 1001 ","first_name":"Ana","last_name":"Pérez","grade":"5th"}`))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got model.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, inst, got.InstitutionID)
	assert.Len(t, store.byID, 1)
}

func TestHandle_ValidationErrorsAreListed(t *testing.T) {
	inst := uuid.New()
	e, store := studentRoutes(t, &inst)

	rec := serve(e, jsonRequest(http.MethodPost, "/students", `{"document_number":"1001"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)

	fields := make([]string, 0, len(body.Errors))
	for _, fe := range body.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"first_name", "last_name", "grade"}, fields)
	assert.Empty(t, store.byID)
}

func TestHandle_MalformedJSON(t *testing.T) {
	inst := uuid.New()
	e, _ := studentRoutes(t, &inst)

	rec := serve(e, jsonRequest(http.MethodPost, "/students", `{"first_name":`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_InvalidPathID(t *testing.T) {
	inst := uuid.New()
	e, _ := studentRoutes(t, &inst)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/students/not-a-uuid", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "id", decodeError(t, rec).Errors[0].Field)
}

func TestHandle_NotFoundFromStore(t *testing.T) {
	inst := uuid.New()
	e, _ := studentRoutes(t, &inst)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/students/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandle_MissingTenantFailsClosed(t *testing.T) {
	e, store := studentRoutes(t, nil)

	rec := serve(e, jsonRequest(http.MethodPost, "/students",
		`{"document_number":"1","first_name":"Ana","last_name":"Pérez","grade":"5th"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, store.byID)
}

func TestHandle_RequestsDoNotShareState(t *testing.T) {
	inst := uuid.New()
	e, store := studentRoutes(t, &inst)
	id := uuid.New()
	store.byID[id] = &model.Student{Base: model.Base{ID: id}, InstitutionID: inst, FirstName: "Ana", LastName: "Pérez"}

	rec := serve(e, jsonRequest(http.MethodPut, "/students/"+id.String(), `{"first_name":"Eva"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	store.byID[id].FirstName = "Zoe"

	rec = serve(e, jsonRequest(http.MethodPut, "/students/"+id.String(), `{"last_name":"Ruiz"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "Zoe", store.byID[id].FirstName)
	assert.Equal(t, "Ruiz", store.byID[id].LastName)
}

func TestNewRequest_AllocatesZeroValue(t *testing.T) {
	template := &model.IDParam{ID: "x"}

	got := newRequest(template)

	assert.NotSame(t, template, got)
	assert.Empty(t, got.ID)
}

func multipartCSV(t *testing.T, field, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, "roster.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/students/import", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestImport(t *testing.T) {
	inst := uuid.New()
	e, store := studentRoutes(t, &inst)

	csv := "document_number,first_name,last_name,grade,section,guardian_name,guardian_phone,guardian_email\n" +
		"100,Ana,Pérez,5th,A,,,\n" +
		"200,,Gómez,5th,,,,\n"

	rec := serve(e, multipartCSV(t, ImportFormField, csv))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res model.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, store.byID, 1)
}

func TestImport_RequiresFileField(t *testing.T) {
	inst := uuid.New()
	e, _ := studentRoutes(t, &inst)

	rec := serve(e, multipartCSV(t, "upload", "document_number\n"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE_REQUIRED", decodeError(t, rec).Code)
}

func TestImport_BadHeader(t *testing.T) {
	inst := uuid.New()
	e, _ := studentRoutes(t, &inst)

	rec := serve(e, multipartCSV(t, ImportFormField, "name,grade\nAna,5th\n"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_HEADER", decodeError(t, rec).Code)
}

func TestExport(t *testing.T) {
	inst := uuid.New()
	e, store := studentRoutes(t, &inst)
	store.all = []model.Student{{InstitutionID: inst, DocumentNumber: "100", FirstName: "Ana", LastName: "Pérez", Grade: "5th"}}

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/students/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="students.csv"`, rec.Header().Get(echo.HeaderContentDisposition))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "document_number,first_name"))
	assert.True(t, strings.HasPrefix(lines[1], "100,Ana,Pérez,5th"))
}

func TestHandleNoContent(t *testing.T) {
	s := testServer()
	e := newEcho(s)
	var got string
	e.DELETE("/things/:id", HandleNoContent(NewHandler(s), func(c echo.Context, req *model.IDParam) error {
		got = req.ID
		return nil
	}, http.StatusNoContent, &model.IDParam{}))

	id := uuid.NewString()
	rec := serve(e, httptest.NewRequest(http.MethodDelete, "/things/"+id, nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, id, got)
}

func TestCheckHealth(t *testing.T) {
	failing := func(context.Context) error { return errors.New("connection refused") }
	passing := func(context.Context) error { return nil }

	tests := []struct {
		name   string
		checks []dependencyCheck
		status int
		redis  string
	}{
		{
			name: "all healthy",
			checks: []dependencyCheck{
				{name: "database", required: true, ping: passing},
				{name: "redis", ping: passing},
			},
			status: http.StatusOK,
			redis:  "healthy",
		},
		{
			name: "redis down degrades only",
			checks: []dependencyCheck{
				{name: "database", required: true, ping: passing},
				{name: "redis", ping: failing},
			},
			status: http.StatusOK,
			redis:  "unhealthy",
		},
		{
			name: "database down",
			checks: []dependencyCheck{
				{name: "database", required: true, ping: failing},
				{name: "redis", ping: passing},
			},
			status: http.StatusServiceUnavailable,
			redis:  "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HealthHandler{Handler: NewHandler(testServer()), checks: tt.checks}
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)

			require.NoError(t, h.CheckHealth(c))
			assert.Equal(t, tt.status, rec.Code)

			var body struct {
				Status string                       `json:"status"`
				Checks map[string]map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.redis, body.Checks["redis"]["status"])
		})
	}
}

func TestServeOpenAPIUI(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openapi.html"), []byte("<html>docs</html>"), 0o644))

	h := &OpenAPIHandler{Handler: NewHandler(testServer()), dir: dir}
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/docs", nil), rec)

	require.NoError(t, h.ServeOpenAPIUI(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "docs")

	h.dir = filepath.Join(dir, "missing")
	assert.Error(t, h.ServeOpenAPIUI(e.NewContext(httptest.NewRequest(http.MethodGet, "/docs", nil), httptest.NewRecorder())))
}
