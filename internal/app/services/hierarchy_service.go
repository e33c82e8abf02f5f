package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yigit/examportal/internal/app/models"
	"github.com/yigit/examportal/internal/app/models/dto"
	"github.com/yigit/examportal/internal/app/repositories"
	"github.com/yigit/examportal/internal/pkg/apperrors"
)

// HierarchyService defines the interface for reading the stored hierarchy
type HierarchyService interface {
	ListColleges(ctx context.Context) ([]*models.College, error)
	GetCollegeTree(ctx context.Context, id string) (*dto.CollegeTree, error)
	ListDepartments(ctx context.Context, filter dto.HierarchyFilter) ([]*models.Department, error)
	ListPrograms(ctx context.Context, filter dto.HierarchyFilter) ([]*models.Program, error)
	ListLevels(ctx context.Context, filter dto.HierarchyFilter) ([]*models.Level, error)
	ListCourses(ctx context.Context, filter dto.HierarchyFilter) ([]*models.Course, error)
	Counts(ctx context.Context) (*dto.HierarchyCounts, error)
}

// hierarchyServiceImpl implements the HierarchyService interface
type hierarchyServiceImpl struct {
	store HierarchyStore
}

// NewHierarchyService creates a new hierarchy service instance
func NewHierarchyService(store HierarchyStore) HierarchyService {
	return &hierarchyServiceImpl{store: store}
}

// validateID rejects filter values that cannot be record identifiers
func validateID(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("%w: %s must be a valid identifier", apperrors.ErrBadRequest, field)
	}
	return nil
}

func (s *hierarchyServiceImpl) ListColleges(ctx context.Context) ([]*models.College, error) {
	return s.store.ListColleges(ctx)
}

func (s *hierarchyServiceImpl) GetCollegeTree(ctx context.Context, id string) (*dto.CollegeTree, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repositories.ErrCollegeNotFound
	}

	college, err := s.store.GetCollege(ctx, id)
	if err != nil {
		return nil, err
	}

	departments, err := s.store.ListDepartments(ctx, college.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}

	tree := &dto.CollegeTree{College: *college, Departments: make([]dto.DepartmentNode, 0, len(departments))}
	for _, d := range departments {
		node, err := s.departmentNode(ctx, d)
		if err != nil {
			return nil, err
		}
		tree.Departments = append(tree.Departments, node)
	}

	return tree, nil
}

func (s *hierarchyServiceImpl) departmentNode(ctx context.Context, d *models.Department) (dto.DepartmentNode, error) {
	programs, err := s.store.ListPrograms(ctx, d.ID)
	if err != nil {
		return dto.DepartmentNode{}, fmt.Errorf("failed to load programs: %w", err)
	}

	node := dto.DepartmentNode{Department: *d, Programs: make([]dto.ProgramNode, 0, len(programs))}
	for _, p := range programs {
		levels, err := s.store.ListLevels(ctx, p.ID)
		if err != nil {
			return dto.DepartmentNode{}, fmt.Errorf("failed to load levels: %w", err)
		}

		pn := dto.ProgramNode{Program: *p, Levels: make([]dto.LevelNode, 0, len(levels))}
		for _, l := range levels {
			courses, err := s.store.ListCourses(ctx, p.ID, l.ID)
			if err != nil {
				return dto.DepartmentNode{}, fmt.Errorf("failed to load courses: %w", err)
			}
			pn.Levels = append(pn.Levels, dto.LevelNode{Level: *l, Courses: courses})
		}
		node.Programs = append(node.Programs, pn)
	}

	return node, nil
}

func (s *hierarchyServiceImpl) ListDepartments(ctx context.Context, filter dto.HierarchyFilter) ([]*models.Department, error) {
	if err := validateID("collegeId", filter.CollegeID); err != nil {
		return nil, err
	}
	return s.store.ListDepartments(ctx, filter.CollegeID)
}

func (s *hierarchyServiceImpl) ListPrograms(ctx context.Context, filter dto.HierarchyFilter) ([]*models.Program, error) {
	if err := validateID("departmentId", filter.DepartmentID); err != nil {
		return nil, err
	}
	return s.store.ListPrograms(ctx, filter.DepartmentID)
}

func (s *hierarchyServiceImpl) ListLevels(ctx context.Context, filter dto.HierarchyFilter) ([]*models.Level, error) {
	if err := validateID("programId", filter.ProgramID); err != nil {
		return nil, err
	}
	return s.store.ListLevels(ctx, filter.ProgramID)
}

func (s *hierarchyServiceImpl) ListCourses(ctx context.Context, filter dto.HierarchyFilter) ([]*models.Course, error) {
	if err := validateID("programId", filter.ProgramID); err != nil {
		return nil, err
	}
	if err := validateID("levelId", filter.LevelID); err != nil {
		return nil, err
	}
	return s.store.ListCourses(ctx, filter.ProgramID, filter.LevelID)
}

func (s *hierarchyServiceImpl) Counts(ctx context.Context) (*dto.HierarchyCounts, error) {
	colleges, err := s.store.ListColleges(ctx)
	if err != nil {
		return nil, err
	}
	departments, err := s.store.ListDepartments(ctx, "")
	if err != nil {
		return nil, err
	}
	programs, err := s.store.ListPrograms(ctx, "")
	if err != nil {
		return nil, err
	}
	levels, err := s.store.ListLevels(ctx, "")
	if err != nil {
		return nil, err
	}
	courses, err := s.store.ListCourses(ctx, "", "")
	if err != nil {
		return nil, err
	}

	return &dto.HierarchyCounts{
		Colleges:    len(colleges),
		Departments: len(departments),
		Programs:    len(programs),
		Levels:      len(levels),
		Courses:     len(courses),
	}, nil
}
