package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	ID       string   `param:"id" json:"-" validate:"required,uuid"`
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"name" validate:"required,max=5"`
	Role     string   `json:"role" validate:"omitempty,oneof=rector accountant"`
	GroupIDs []string `json:"group_ids" validate:"omitempty,max=2"`
}

func (r *signupRequest) Validate() error {
	if err := Struct(r); err != nil {
		return err
	}
	var errs CustomValidationErrors
	if r.Name == "admin" {
		errs = errs.Add("name", "is reserved")
	}
	return errs.OrNil()
}

func bind(t *testing.T, id, body string, payload Validatable) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(id)
	return BindAndValidate(c, payload)
}

func TestBindAndValidate(t *testing.T) {
	const id = "7f8c1d9e-3a4b-4c5d-8e6f-0a1b2c3d4e5f"

	tests := []struct {
		name   string
		id     string
		body   string
		fields map[string]string
	}{
		{
			name: "valid",
			id:   id,
			body: `{"email":"a@b.co","name":"Ana"}`,
		},
		{
			name: "tag failures use json names",
			id:   "nope",
			body: `{"email":"x","name":"Annabelle","role":"janitor","group_ids":["a","b","c"]}`,
			fields: map[string]string{
				"id":        "must be a valid UUID",
				"email":     "must be a valid email address",
				"name":      "must not exceed 5 characters",
				"role":      "must be one of: rector accountant",
				"group_ids": "must not contain more than 2 items",
			},
		},
		{
			name:   "custom rule",
			id:     id,
			body:   `{"email":"a@b.co","name":"admin"}`,
			fields: map[string]string{"name": "is reserved"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := &signupRequest{}
			err := bind(t, tt.id, tt.body, payload)

			if tt.fields == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.id, payload.ID)
				return
			}

			var httpErr *errs.HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, http.StatusBadRequest, httpErr.Status)
			assert.True(t, httpErr.Override)

			got := map[string]string{}
			for _, fe := range httpErr.Errors {
				got[fe.Field] = fe.Error
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	err := bind(t, "x", `{"email":`, &signupRequest{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Empty(t, httpErr.Errors)
}

func TestFieldErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(nil))

	fe := FieldErrors(CustomValidationErrors{}.Add("amount", "must be positive"))
	assert.Equal(t, []errs.FieldError{{Field: "amount", Error: "must be positive"}}, fe)

	fe = FieldErrors(errors.New("boom"))
	require.Len(t, fe, 1)
	assert.Equal(t, "boom", fe[0].Error)
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "document_number", toSnakeCase("DocumentNumber"))
	assert.Equal(t, "student_ids", toSnakeCase("StudentIDs"))
	assert.Equal(t, "id", toSnakeCase("ID"))
}
