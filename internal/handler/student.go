package handler

import (
	"bytes"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/service"
	"github.com/labstack/echo/v4"
)

// ImportFormField is the multipart field carrying the roster CSV.
const ImportFormField = "file"

type StudentHandler struct {
	Handler
	students *service.StudentService
	roster   *service.RosterService
}

func NewStudentHandler(s *server.Server, students *service.StudentService, roster *service.RosterService) *StudentHandler {
	return &StudentHandler{Handler: NewHandler(s), students: students, roster: roster}
}

func (h *StudentHandler) List(c echo.Context, req *model.ListStudentsRequest) (model.Page[model.Student], error) {
	inst, err := tenant(c)
	if err != nil {
		return model.Page[model.Student]{}, err
	}
	return h.students.List(c.Request().Context(), inst, req)
}

func (h *StudentHandler) Get(c echo.Context, req *model.IDParam) (*model.Student, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.students.Get(c.Request().Context(), inst, req.UUID())
}

func (h *StudentHandler) Create(c echo.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.students.Create(c.Request().Context(), inst, req)
}

func (h *StudentHandler) Update(c echo.Context, req *model.UpdateStudentRequest) (*model.Student, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.students.Update(c.Request().Context(), inst, req)
}

func (h *StudentHandler) Delete(c echo.Context, req *model.IDParam) error {
	inst, err := tenant(c)
	if err != nil {
		return err
	}
	return h.students.Delete(c.Request().Context(), inst, req.UUID())
}

// Import reads the roster CSV from the multipart "file" field.
func (h *StudentHandler) Import(c echo.Context, _ *model.EmptyRequest) (*model.ImportResult, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}

	header, err := c.FormFile(ImportFormField)
	if err != nil {
		code := "FILE_REQUIRED"
		return nil, errs.NewBadRequestError("A CSV file is required in the 'file' field", true, &code, nil, nil)
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return h.roster.Import(c.Request().Context(), inst, file)
}

func (h *StudentHandler) Export(c echo.Context, _ *model.EmptyRequest) ([]byte, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := h.roster.Export(c.Request().Context(), inst, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
