package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classbook/classbook-api/internal/models"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
)

type variableScheduleRepository interface {
	Create(ctx context.Context, record *models.VariableSchedule) error
	FindByID(ctx context.Context, id string) (*models.VariableSchedule, error)
	FindByDayHour(ctx context.Context, day, hour string) (*models.VariableSchedule, error)
	ListByDay(ctx context.Context, day string) ([]models.VariableSchedule, error)
	Delete(ctx context.Context, id string) error
	AddUser(ctx context.Context, scheduleID, email string) error
	RemoveUser(ctx context.Context, scheduleID, email string) error
}

type recoveryAdjuster interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	AdjustClassesToRecover(ctx context.Context, email string, delta int) error
}

// BookRequest is the payload for booking a one-off class on a specific date.
type BookRequest struct {
	Day          string `json:"day" validate:"required"`
	HourOfTheDay string `json:"hour_of_the_day" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
}

// VariableScheduleService handles one-off bookings that redeem banked
// classes.
type VariableScheduleService struct {
	repo      variableScheduleRepository
	users     recoveryAdjuster
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVariableScheduleService instantiates VariableScheduleService.
func NewVariableScheduleService(repo variableScheduleRepository, users recoveryAdjuster, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *VariableScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VariableScheduleService{repo: repo, users: users, cache: cache, validator: validate, logger: logger}
}

// Get loads a booking record by id.
func (s *VariableScheduleService) Get(ctx context.Context, id string) (*models.VariableSchedule, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch booking")
	}
	return record, nil
}

// ListByDay returns every booking record for a calendar date.
func (s *VariableScheduleService) ListByDay(ctx context.Context, day string) ([]models.VariableSchedule, error) {
	records, err := s.repo.ListByDay(ctx, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return records, nil
}

// Book registers a user on a date+hour booking record, creating the record
// if it is the first booking for that slot, and debits one banked class.
// A user already on the record is not added twice.
func (s *VariableScheduleService) Book(ctx context.Context, req BookRequest) (*models.VariableSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if _, err := s.users.FindByEmail(ctx, req.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	record, err := s.repo.FindByDayHour(ctx, req.Day, req.HourOfTheDay)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch booking")
		}
		record = &models.VariableSchedule{
			Day:          req.Day,
			HourOfTheDay: req.HourOfTheDay,
			UsersList:    []string{},
		}
		if err := s.repo.Create(ctx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
		}
	}

	if !slices.Contains(record.UsersList, req.Email) {
		if err := s.repo.AddUser(ctx, record.ID, req.Email); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to book user")
		}
		if err := s.users.AdjustClassesToRecover(ctx, req.Email, -1); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to debit recovered class")
		}
	}
	s.invalidateDay(ctx, req.Day)
	return s.Get(ctx, record.ID)
}

// Unbook pulls a user from a booking record and credits one banked class
// back. Removing a user that is not on the record is a no-op.
func (s *VariableScheduleService) Unbook(ctx context.Context, day, hour, email string) (*models.VariableSchedule, error) {
	record, err := s.repo.FindByDayHour(ctx, day, hour)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch booking")
	}
	if slices.Contains(record.UsersList, email) {
		if err := s.repo.RemoveUser(ctx, record.ID, email); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unbook user")
		}
		if err := s.users.AdjustClassesToRecover(ctx, email, 1); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to credit recovered class")
		}
	}
	s.invalidateDay(ctx, day)
	return s.Get(ctx, record.ID)
}

// Delete removes a booking record outright. Banked classes of the listed
// users are left untouched; bulk corrections go through Unbook.
func (s *VariableScheduleService) Delete(ctx context.Context, id string) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete booking")
	}
	s.invalidateDay(ctx, record.Day)
	return nil
}

func (s *VariableScheduleService) invalidateDay(ctx context.Context, day string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("availability:*:%s", day)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate availability cache", zap.String("pattern", pattern), zap.Error(err))
	}
}
