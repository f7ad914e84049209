package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classbook/classbook-api/internal/models"
	"github.com/classbook/classbook-api/internal/schedule"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
)

type fixedScheduleRepository interface {
	Create(ctx context.Context, slot *models.FixedSchedule) error
	FindByID(ctx context.Context, id string) (*models.FixedSchedule, error)
	ListByWeekDay(ctx context.Context, weekDay schedule.WeekDay) ([]models.FixedSchedule, error)
	Update(ctx context.Context, slot *models.FixedSchedule) error
	Delete(ctx context.Context, id string) error
	AddUser(ctx context.Context, scheduleID, email string) error
	RemoveUser(ctx context.Context, scheduleID, email string) error
}

type userFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateFixedScheduleRequest describes the payload for creating a weekly
// pattern.
type CreateFixedScheduleRequest struct {
	WeekDay       string `json:"week_day" validate:"required"`
	HourOfTheDay  string `json:"hour_of_the_day" validate:"required"`
	NumberOfSpots int    `json:"number_of_spots" validate:"gte=0"`
}

// UpdateFixedScheduleRequest updates an existing pattern.
type UpdateFixedScheduleRequest struct {
	WeekDay       string `json:"week_day" validate:"required"`
	HourOfTheDay  string `json:"hour_of_the_day" validate:"required"`
	NumberOfSpots int    `json:"number_of_spots" validate:"gte=0"`
}

// FixedScheduleService manages recurring weekly slots and enrollment.
type FixedScheduleService struct {
	repo      fixedScheduleRepository
	users     userFinder
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFixedScheduleService instantiates FixedScheduleService.
func NewFixedScheduleService(repo fixedScheduleRepository, users userFinder, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *FixedScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FixedScheduleService{repo: repo, users: users, cache: cache, validator: validate, logger: logger}
}

// Create inserts a new weekly pattern.
func (s *FixedScheduleService) Create(ctx context.Context, req CreateFixedScheduleRequest) (*models.FixedSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	slot := &models.FixedSchedule{
		WeekDay:       schedule.WeekDay(strings.ToUpper(req.WeekDay)),
		HourOfTheDay:  req.HourOfTheDay,
		NumberOfSpots: req.NumberOfSpots,
		UsersList:     []string{},
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	s.invalidateWeekDay(ctx, slot.WeekDay)
	return slot, nil
}

// ListByWeekDay returns the weekly patterns of a single weekday, ordered by
// hour.
func (s *FixedScheduleService) ListByWeekDay(ctx context.Context, weekDay schedule.WeekDay) ([]models.FixedSchedule, error) {
	slots, err := s.repo.ListByWeekDay(ctx, weekDay)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return slots, nil
}

// Get loads a pattern by id.
func (s *FixedScheduleService) Get(ctx context.Context, id string) (*models.FixedSchedule, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch schedule")
	}
	return slot, nil
}

// Update modifies a pattern.
func (s *FixedScheduleService) Update(ctx context.Context, id string, req UpdateFixedScheduleRequest) (*models.FixedSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	slot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previousDay := slot.WeekDay
	slot.WeekDay = schedule.WeekDay(strings.ToUpper(req.WeekDay))
	slot.HourOfTheDay = req.HourOfTheDay
	slot.NumberOfSpots = req.NumberOfSpots
	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	s.invalidateWeekDay(ctx, previousDay)
	s.invalidateWeekDay(ctx, slot.WeekDay)
	return slot, nil
}

// Delete removes a pattern and detaches every enrolled user.
func (s *FixedScheduleService) Delete(ctx context.Context, id string) error {
	slot, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	s.invalidateWeekDay(ctx, slot.WeekDay)
	return nil
}

// Enroll appends a user to the pattern's enrollment list. The spot cap is
// deliberately not checked here; overbooking a fixed slot is an upstream
// admin decision.
func (s *FixedScheduleService) Enroll(ctx context.Context, scheduleID, email string) (*models.FixedSchedule, error) {
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	slot, err := s.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddUser(ctx, scheduleID, email); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll user")
	}
	s.invalidateWeekDay(ctx, slot.WeekDay)
	return s.Get(ctx, scheduleID)
}

// Unenroll pulls a user from the pattern's enrollment list.
func (s *FixedScheduleService) Unenroll(ctx context.Context, scheduleID, email string) (*models.FixedSchedule, error) {
	slot, err := s.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveUser(ctx, scheduleID, email); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unenroll user")
	}
	s.invalidateWeekDay(ctx, slot.WeekDay)
	return s.Get(ctx, scheduleID)
}

func (s *FixedScheduleService) invalidateWeekDay(ctx context.Context, weekDay schedule.WeekDay) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("availability:%s:*", weekDay)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate availability cache", zap.String("pattern", pattern), zap.Error(err))
	}
}
