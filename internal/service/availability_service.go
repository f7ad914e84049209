package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/classbook/classbook-api/internal/models"
	"github.com/classbook/classbook-api/internal/schedule"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
)

type availabilityFixedRepository interface {
	ListByWeekDay(ctx context.Context, weekDay schedule.WeekDay) ([]models.FixedSchedule, error)
}

type availabilityVariableRepository interface {
	ListByDay(ctx context.Context, day string) ([]models.VariableSchedule, error)
}

type availabilityCanceledRepository interface {
	ListByDay(ctx context.Context, day string) ([]models.CanceledSchedule, error)
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AvailabilityConfig tunes the availability read path.
type AvailabilityConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// AvailabilityService computes per-day spot reports by folding the weekly
// patterns with the dated booking and cancellation records.
type AvailabilityService struct {
	fixed    availabilityFixedRepository
	variable availabilityVariableRepository
	canceled availabilityCanceledRepository
	cache    availabilityCache
	cfg      AvailabilityConfig
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(fixed availabilityFixedRepository, variable availabilityVariableRepository, canceled availabilityCanceledRepository, cache availabilityCache, cfg AvailabilityConfig, metrics *MetricsService, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		fixed:    fixed,
		variable: variable,
		canceled: canceled,
		cache:    cache,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// ForDay computes the availability report for a single weekday+date pair.
func (s *AvailabilityService) ForDay(ctx context.Context, day schedule.DayWithDate) (*schedule.DayAvailability, error) {
	key := availabilityCacheKey(day)
	if s.cacheable() {
		var cached schedule.DayAvailability
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheLookup(true)
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("availability cache read failed", zap.String("key", key), zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
	}

	fixedSlots, err := s.fixed.ListByWeekDay(ctx, day.WeekDay)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly patterns")
	}
	variableRecords, err := s.variable.ListByDay(ctx, day.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings")
	}
	canceledRecords, err := s.canceled.ListByDay(ctx, day.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cancellations")
	}

	report := schedule.BuildDayAvailability(day.Date, fixedSlotsOf(fixedSlots), usageOfVariable(variableRecords), usageOfCanceled(canceledRecords))

	if s.cacheable() {
		if err := s.cache.Set(ctx, key, report, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("availability cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return &report, nil
}

// ForDays computes reports for several weekday+date pairs concurrently.
// Results come back in input order.
func (s *AvailabilityService) ForDays(ctx context.Context, days []schedule.DayWithDate) ([]schedule.DayAvailability, error) {
	reports := make([]schedule.DayAvailability, len(days))
	errs := make([]error, len(days))

	var wg sync.WaitGroup
	for i, day := range days {
		wg.Add(1)
		go func(i int, day schedule.DayWithDate) {
			defer wg.Done()
			report, err := s.ForDay(ctx, day)
			if err != nil {
				errs[i] = err
				return
			}
			reports[i] = *report
		}(i, day)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return reports, nil
}

// WeekView returns the availability reports for today plus the following
// six days.
func (s *AvailabilityService) WeekView(ctx context.Context) ([]schedule.DayAvailability, error) {
	return s.ForDays(ctx, schedule.NextSevenDays(s.now()))
}

func (s *AvailabilityService) cacheable() bool {
	return s.cache != nil && s.cfg.CacheEnabled
}

func availabilityCacheKey(day schedule.DayWithDate) string {
	return fmt.Sprintf("availability:%s:%s", day.WeekDay, day.Date)
}

func fixedSlotsOf(records []models.FixedSchedule) []schedule.FixedSlot {
	slots := make([]schedule.FixedSlot, 0, len(records))
	for _, record := range records {
		slots = append(slots, schedule.FixedSlot{
			Hour:          record.HourOfTheDay,
			NumberOfSpots: record.NumberOfSpots,
			Enrolled:      len(record.UsersList),
		})
	}
	return slots
}

func usageOfVariable(records []models.VariableSchedule) []schedule.SlotUsage {
	usage := make([]schedule.SlotUsage, 0, len(records))
	for _, record := range records {
		usage = append(usage, schedule.SlotUsage{Hour: record.HourOfTheDay, Users: len(record.UsersList)})
	}
	return usage
}

func usageOfCanceled(records []models.CanceledSchedule) []schedule.SlotUsage {
	usage := make([]schedule.SlotUsage, 0, len(records))
	for _, record := range records {
		usage = append(usage, schedule.SlotUsage{Hour: record.HourOfTheDay, Users: len(record.UsersList)})
	}
	return usage
}
