package service

import (
	"context"

	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
)

type studentStore interface {
	Create(ctx context.Context, s *model.Student) (*model.Student, error)
	GetByID(ctx context.Context, institutionID, id uuid.UUID) (*model.Student, error)
	List(ctx context.Context, institutionID uuid.UUID, f model.StudentFilter) ([]model.Student, int, error)
	Update(ctx context.Context, s *model.Student) (*model.Student, error)
	Delete(ctx context.Context, institutionID, id uuid.UUID) error
}

type StudentService struct {
	server   *server.Server
	students studentStore
	cache    dashboardCache
}

func NewStudentService(s *server.Server, students studentStore) *StudentService {
	return &StudentService{server: s, students: students, cache: s.Cache}
}

func (s *StudentService) List(ctx context.Context, institutionID uuid.UUID, req *model.ListStudentsRequest) (model.Page[model.Student], error) {
	params := req.ListParams.Normalize()

	items, total, err := s.students.List(ctx, institutionID, model.StudentFilter{
		Search: model.CleanString(req.Search),
		Grade:  model.CleanString(req.Grade),
		Status: model.StudentStatus(req.Status),
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		return model.Page[model.Student]{}, err
	}
	return model.NewPage(items, total, params), nil
}

func (s *StudentService) Get(ctx context.Context, institutionID, id uuid.UUID) (*model.Student, error) {
	return s.students.GetByID(ctx, institutionID, id)
}

// Create registers a student. A document already used in the institution
// is rejected by the unique constraint and reported as a conflict.
func (s *StudentService) Create(ctx context.Context, institutionID uuid.UUID, req *model.CreateStudentRequest) (*model.Student, error) {
	student, err := s.students.Create(ctx, req.ToStudent(institutionID))
	if err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.cache, s.server.Logger, institutionID)
	return student, nil
}

func (s *StudentService) Update(ctx context.Context, institutionID uuid.UUID, req *model.UpdateStudentRequest) (*model.Student, error) {
	student, err := s.students.GetByID(ctx, institutionID, req.UUID())
	if err != nil {
		return nil, err
	}
	req.ApplyTo(student)

	updated, err := s.students.Update(ctx, student)
	if err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.cache, s.server.Logger, institutionID)
	return updated, nil
}

func (s *StudentService) Delete(ctx context.Context, institutionID, id uuid.UUID) error {
	if err := s.students.Delete(ctx, institutionID, id); err != nil {
		return domainError(err)
	}
	invalidateDashboard(ctx, s.cache, s.server.Logger, institutionID)
	return nil
}
