package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classbook/classbook-api/internal/models"
	"github.com/classbook/classbook-api/internal/schedule"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
)

type fixedListStub struct {
	byWeekDay map[schedule.WeekDay][]models.FixedSchedule
	calls     int
}

func (s *fixedListStub) ListByWeekDay(ctx context.Context, weekDay schedule.WeekDay) ([]models.FixedSchedule, error) {
	s.calls++
	return s.byWeekDay[weekDay], nil
}

type variableListStub struct {
	byDay map[string][]models.VariableSchedule
}

func (s *variableListStub) ListByDay(ctx context.Context, day string) ([]models.VariableSchedule, error) {
	return s.byDay[day], nil
}

type canceledListStub struct {
	byDay map[string][]models.CanceledSchedule
}

func (s *canceledListStub) ListByDay(ctx context.Context, day string) ([]models.CanceledSchedule, error) {
	return s.byDay[day], nil
}

type reportCacheStub struct {
	entries map[string]schedule.DayAvailability
	sets    []string
}

func newReportCacheStub() *reportCacheStub {
	return &reportCacheStub{entries: map[string]schedule.DayAvailability{}}
}

func (s *reportCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	report, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*schedule.DayAvailability) = report
	return nil
}

func (s *reportCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.entries[key] = value.(schedule.DayAvailability)
	s.sets = append(s.sets, key)
	return nil
}

func availabilityFixture() (*fixedListStub, *variableListStub, *canceledListStub) {
	fixed := &fixedListStub{byWeekDay: map[schedule.WeekDay][]models.FixedSchedule{
		schedule.Saturday: {
			{WeekDay: schedule.Saturday, HourOfTheDay: "17:00", NumberOfSpots: 1, UsersList: []string{"ana@example.com"}},
			{WeekDay: schedule.Saturday, HourOfTheDay: "18:00", NumberOfSpots: 2, UsersList: []string{}},
		},
	}}
	variable := &variableListStub{byDay: map[string][]models.VariableSchedule{
		"2024-01-20": {{Day: "2024-01-20", HourOfTheDay: "18:00", UsersList: []string{"bia@example.com"}}},
	}}
	canceled := &canceledListStub{byDay: map[string][]models.CanceledSchedule{
		"2024-01-20": {{Day: "2024-01-20", HourOfTheDay: "17:00", UsersList: []string{"ana@example.com"}}},
	}}
	return fixed, variable, canceled
}

func TestAvailabilityServiceForDayComposesAllLayers(t *testing.T) {
	fixed, variable, canceled := availabilityFixture()
	svc := NewAvailabilityService(fixed, variable, canceled, nil, AvailabilityConfig{}, nil, nil)

	report, err := svc.ForDay(context.Background(), schedule.DayWithDate{WeekDay: schedule.Saturday, Date: "2024-01-20"})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-20", report.Day)
	// base 3 spots, 1 enrolled, minus one booking plus one cancellation
	assert.Equal(t, 3, report.NumberOfSpots)
	assert.Equal(t, 2, report.AvailableSpots)
	require.Len(t, report.Hours, 2)
	assert.Equal(t, "17:00", report.Hours[0].Hour)
	assert.Equal(t, "18:00", report.Hours[1].Hour)
}

func TestAvailabilityServiceForDaysPreservesInputOrder(t *testing.T) {
	fixed, variable, canceled := availabilityFixture()
	svc := NewAvailabilityService(fixed, variable, canceled, nil, AvailabilityConfig{}, nil, nil)

	days := []schedule.DayWithDate{
		{WeekDay: schedule.Saturday, Date: "2024-01-20"},
		{WeekDay: schedule.Sunday, Date: "2024-01-21"},
		{WeekDay: schedule.Monday, Date: "2024-01-22"},
	}
	reports, err := svc.ForDays(context.Background(), days)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "2024-01-20", reports[0].Day)
	assert.Equal(t, "2024-01-21", reports[1].Day)
	assert.Equal(t, "2024-01-22", reports[2].Day)
}

func TestAvailabilityServiceCachesComputedReports(t *testing.T) {
	fixed, variable, canceled := availabilityFixture()
	cache := newReportCacheStub()
	svc := NewAvailabilityService(fixed, variable, canceled, cache, AvailabilityConfig{CacheEnabled: true, CacheTTL: time.Minute}, nil, nil)

	day := schedule.DayWithDate{WeekDay: schedule.Saturday, Date: "2024-01-20"}
	first, err := svc.ForDay(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, 1, fixed.calls)
	assert.Contains(t, cache.sets, "availability:SATURDAY:2024-01-20")

	second, err := svc.ForDay(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed.calls, "second read must come from cache")
	assert.Equal(t, first, second)
}

func TestAvailabilityServiceWeekViewReturnsSevenDays(t *testing.T) {
	fixed, variable, canceled := availabilityFixture()
	svc := NewAvailabilityService(fixed, variable, canceled, nil, AvailabilityConfig{}, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC) }

	reports, err := svc.WeekView(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 7)
	assert.Equal(t, "2024-01-15", reports[0].Day)
	assert.Equal(t, "2024-01-21", reports[6].Day)
}
