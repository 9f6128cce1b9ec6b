package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kohei-dev/student-management-api/internal/converter"
	"github.com/kohei-dev/student-management-api/internal/domain"
	"github.com/kohei-dev/student-management-api/internal/dto"
	"github.com/kohei-dev/student-management-api/internal/repository"
	appErrors "github.com/kohei-dev/student-management-api/pkg/errors"
)

const (
	rosterListCacheKey   = "roster:list"
	rosterDetailCacheKey = "roster:detail:%d"
	rosterCachePattern   = "roster:*"
)

type studentRepository interface {
	ListActive(ctx context.Context) ([]domain.Student, error)
	FindByID(ctx context.Context, id int64) (domain.Student, error)
	ListAllCourses(ctx context.Context) ([]domain.StudentCourse, error)
	ListCoursesByStudentID(ctx context.Context, studentID int64) ([]domain.StudentCourse, error)
	Register(ctx context.Context, detail *domain.StudentDetail) error
	Update(ctx context.Context, detail *domain.StudentDetail) error
	LogicalDelete(ctx context.Context, id int64) error
}

// StudentService handles the student roster use cases: list, get, register,
// update (including logical delete) and delete.
type StudentService struct {
	repo      studentRepository
	converter *converter.StudentConverter
	cache     *CacheService
	logger    *zap.Logger
}

// NewStudentService constructs the student service from its collaborators.
func NewStudentService(repo studentRepository, conv *converter.StudentConverter, cache *CacheService, logger *zap.Logger) *StudentService {
	if conv == nil {
		conv = converter.NewStudentConverter(false)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, converter: conv, cache: cache, logger: logger}
}

// List returns every active student with its courses.
func (s *StudentService) List(ctx context.Context) ([]dto.StudentDetailResponse, error) {
	var cached []dto.StudentDetailResponse
	if s.cache.Get(ctx, rosterListCacheKey, &cached) {
		return cached, nil
	}

	students, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	courses, err := s.repo.ListAllCourses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	details := s.converter.AssembleDetails(students, courses)
	responses, err := s.converter.ToResponses(details)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, rosterListCacheKey, responses)
	return responses, nil
}

// Get returns one student detail by id.
func (s *StudentService) Get(ctx context.Context, id int64) (*dto.StudentDetailResponse, error) {
	cacheKey := fmt.Sprintf(rosterDetailCacheKey, id)
	var cached dto.StudentDetailResponse
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	resp, err := s.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cacheKey, resp)
	return resp, nil
}

// Register validates the aggregate under register mode and persists it as a
// single unit. The response carries the freshly assigned ids.
func (s *StudentService) Register(ctx context.Context, form dto.StudentDetailForm) (*dto.StudentDetailResponse, error) {
	detail, err := s.converter.ToDetail(form)
	if err != nil {
		return nil, err
	}

	if violations := domain.Validate(detail, domain.OnRegister); len(violations) > 0 {
		return nil, appErrors.Validation(violations)
	}

	if err := s.repo.Register(ctx, &detail); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register student")
	}

	s.cache.Invalidate(ctx, rosterCachePattern)
	s.logger.Info("student registered", zap.String("student_id", detail.Student.ID.String()))

	resp, err := s.converter.ToResponse(detail)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update validates the aggregate under update mode and rewrites the mutable
// fields. Course start dates and student linkage submitted by the caller are
// not honored; the persisted values win and the returned detail reflects
// them.
func (s *StudentService) Update(ctx context.Context, form dto.StudentDetailForm) (*dto.StudentDetailResponse, error) {
	detail, err := s.converter.ToDetail(form)
	if err != nil {
		return nil, err
	}

	if violations := domain.Validate(detail, domain.OnUpdate); len(violations) > 0 {
		return nil, appErrors.Validation(violations)
	}

	studentID, _ := detail.Student.ID.Value()
	if err := s.repo.Update(ctx, &detail); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrTargetNotFound, fmt.Sprintf("student %d not found", studentID))
		}
		var ownership *repository.CourseOwnershipError
		if errors.As(err, &ownership) {
			return nil, appErrors.Clone(appErrors.ErrInvalidIdentifier, fmt.Sprintf("course %d does not belong to student %d", ownership.CourseID, ownership.StudentID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.cache.Invalidate(ctx, rosterCachePattern)
	s.logger.Info("student updated", zap.Int64("student_id", studentID))

	return s.loadDetail(ctx, studentID)
}

// Delete marks the student as logically deleted.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.LogicalDelete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrTargetNotFound, fmt.Sprintf("student %d not found", id))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}

	s.cache.Invalidate(ctx, rosterCachePattern)
	s.logger.Info("student deleted", zap.Int64("student_id", id))
	return nil
}

func (s *StudentService) loadDetail(ctx context.Context, id int64) (*dto.StudentDetailResponse, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrTargetNotFound, fmt.Sprintf("student %d not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	courses, err := s.repo.ListCoursesByStudentID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}

	details := s.converter.AssembleDetails([]domain.Student{student}, courses)
	resp, err := s.converter.ToResponse(details[0])
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
