package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classbook/classbook-api/internal/models"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
)

type planRepository interface {
	List(ctx context.Context) ([]models.Plan, error)
	FindByID(ctx context.Context, id string) (*models.Plan, error)
	Create(ctx context.Context, plan *models.Plan) error
	Update(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, id string) error
}

// PlanRequest is the payload for creating or updating a membership plan.
type PlanRequest struct {
	Name           string  `json:"name" validate:"required"`
	Price          float64 `json:"price" validate:"gte=0"`
	Description    string  `json:"description"`
	ClassesPerWeek int     `json:"classes_per_week" validate:"gte=0"`
}

// PlanService manages membership plans.
type PlanService struct {
	repo      planRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlanService instantiates PlanService.
func NewPlanService(repo planRepository, validate *validator.Validate, logger *zap.Logger) *PlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{repo: repo, validator: validate, logger: logger}
}

// List returns every plan.
func (s *PlanService) List(ctx context.Context) ([]models.Plan, error) {
	plans, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plans")
	}
	return plans, nil
}

// Get loads a plan by id.
func (s *PlanService) Get(ctx context.Context, id string) (*models.Plan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch plan")
	}
	return plan, nil
}

// Create inserts a new plan.
func (s *PlanService) Create(ctx context.Context, req PlanRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan payload")
	}
	plan := &models.Plan{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Price:          req.Price,
		Description:    req.Description,
		ClassesPerWeek: req.ClassesPerWeek,
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create plan")
	}
	return plan, nil
}

// Update modifies an existing plan.
func (s *PlanService) Update(ctx context.Context, id string, req PlanRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan payload")
	}
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	plan.Name = req.Name
	plan.Price = req.Price
	plan.Description = req.Description
	plan.ClassesPerWeek = req.ClassesPerWeek
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update plan")
	}
	return plan, nil
}

// Delete removes a plan.
func (s *PlanService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete plan")
	}
	return nil
}
