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

type canceledScheduleRepository interface {
	Create(ctx context.Context, record *models.CanceledSchedule) error
	FindByID(ctx context.Context, id string) (*models.CanceledSchedule, error)
	FindByDayHour(ctx context.Context, day, hour string) (*models.CanceledSchedule, error)
	ListByDay(ctx context.Context, day string) ([]models.CanceledSchedule, error)
	Delete(ctx context.Context, id string) error
	AddUser(ctx context.Context, scheduleID, email string) error
	RemoveUser(ctx context.Context, scheduleID, email string) error
}

// CancelRequest is the payload for cancelling one dated occurrence of a
// user's recurring class.
type CancelRequest struct {
	Day          string `json:"day" validate:"required"`
	HourOfTheDay string `json:"hour_of_the_day" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
}

// CanceledScheduleService handles per-date cancellations that bank classes
// to recover.
type CanceledScheduleService struct {
	repo      canceledScheduleRepository
	users     recoveryAdjuster
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCanceledScheduleService instantiates CanceledScheduleService.
func NewCanceledScheduleService(repo canceledScheduleRepository, users recoveryAdjuster, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *CanceledScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CanceledScheduleService{repo: repo, users: users, cache: cache, validator: validate, logger: logger}
}

// Get loads a cancellation record by id.
func (s *CanceledScheduleService) Get(ctx context.Context, id string) (*models.CanceledSchedule, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cancellation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch cancellation")
	}
	return record, nil
}

// ListByDay returns every cancellation record for a calendar date.
func (s *CanceledScheduleService) ListByDay(ctx context.Context, day string) ([]models.CanceledSchedule, error) {
	records, err := s.repo.ListByDay(ctx, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cancellations")
	}
	return records, nil
}

// Cancel registers a user on a date+hour cancellation record, creating the
// record if it is the first cancellation for that slot, and credits one
// class to recover. A user already on the record is not added twice.
func (s *CanceledScheduleService) Cancel(ctx context.Context, req CancelRequest) (*models.CanceledSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancellation payload")
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
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch cancellation")
		}
		record = &models.CanceledSchedule{
			Day:          req.Day,
			HourOfTheDay: req.HourOfTheDay,
			UsersList:    []string{},
		}
		if err := s.repo.Create(ctx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create cancellation")
		}
	}

	if !slices.Contains(record.UsersList, req.Email) {
		if err := s.repo.AddUser(ctx, record.ID, req.Email); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register cancellation")
		}
		if err := s.users.AdjustClassesToRecover(ctx, req.Email, 1); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to credit recovered class")
		}
	}
	s.invalidateDay(ctx, req.Day)
	return s.Get(ctx, record.ID)
}

// Revert pulls a user from a cancellation record and debits the class that
// was banked for it. Reverting a user that is not on the record is a no-op.
func (s *CanceledScheduleService) Revert(ctx context.Context, day, hour, email string) (*models.CanceledSchedule, error) {
	record, err := s.repo.FindByDayHour(ctx, day, hour)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cancellation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch cancellation")
	}
	if slices.Contains(record.UsersList, email) {
		if err := s.repo.RemoveUser(ctx, record.ID, email); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revert cancellation")
		}
		if err := s.users.AdjustClassesToRecover(ctx, email, -1); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to debit recovered class")
		}
	}
	s.invalidateDay(ctx, day)
	return s.Get(ctx, record.ID)
}

// Delete removes a cancellation record outright without touching banked
// classes.
func (s *CanceledScheduleService) Delete(ctx context.Context, id string) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete cancellation")
	}
	s.invalidateDay(ctx, record.Day)
	return nil
}

func (s *CanceledScheduleService) invalidateDay(ctx context.Context, day string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("availability:*:%s", day)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate availability cache", zap.String("pattern", pattern), zap.Error(err))
	}
}
