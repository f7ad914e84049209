package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classbook/classbook-api/internal/models"
	"github.com/classbook/classbook-api/internal/schedule"
)

type fixedRepoStub struct {
	byID    map[string]*models.FixedSchedule
	created []*models.FixedSchedule
	deleted []string
}

func newFixedRepoStub(slots ...*models.FixedSchedule) *fixedRepoStub {
	stub := &fixedRepoStub{byID: map[string]*models.FixedSchedule{}}
	for _, slot := range slots {
		stub.byID[slot.ID] = slot
	}
	return stub
}

func (s *fixedRepoStub) Create(ctx context.Context, slot *models.FixedSchedule) error {
	slot.ID = "fs-" + string(slot.WeekDay) + "-" + slot.HourOfTheDay
	s.created = append(s.created, slot)
	s.byID[slot.ID] = slot
	return nil
}

func (s *fixedRepoStub) FindByID(ctx context.Context, id string) (*models.FixedSchedule, error) {
	if slot, ok := s.byID[id]; ok {
		copied := *slot
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *fixedRepoStub) ListByWeekDay(ctx context.Context, weekDay schedule.WeekDay) ([]models.FixedSchedule, error) {
	var out []models.FixedSchedule
	for _, slot := range s.byID {
		if slot.WeekDay == weekDay {
			out = append(out, *slot)
		}
	}
	return out, nil
}

func (s *fixedRepoStub) Update(ctx context.Context, slot *models.FixedSchedule) error {
	s.byID[slot.ID] = slot
	return nil
}

func (s *fixedRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.byID, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fixedRepoStub) AddUser(ctx context.Context, scheduleID, email string) error {
	slot := s.byID[scheduleID]
	slot.UsersList = append(slot.UsersList, email)
	return nil
}

func (s *fixedRepoStub) RemoveUser(ctx context.Context, scheduleID, email string) error {
	slot := s.byID[scheduleID]
	kept := slot.UsersList[:0]
	for _, existing := range slot.UsersList {
		if existing != email {
			kept = append(kept, existing)
		}
	}
	slot.UsersList = kept
	return nil
}

func TestFixedScheduleServiceCreateNormalizesWeekDay(t *testing.T) {
	repo := newFixedRepoStub()
	cache := &cacheStub{}
	svc := NewFixedScheduleService(repo, &recoveryStub{}, cache, nil, nil)

	slot, err := svc.Create(context.Background(), CreateFixedScheduleRequest{
		WeekDay:       "monday",
		HourOfTheDay:  "18:00",
		NumberOfSpots: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, schedule.Monday, slot.WeekDay)
	assert.Contains(t, cache.patterns, "availability:MONDAY:*")
}

func TestFixedScheduleServiceEnrollAddsUser(t *testing.T) {
	repo := newFixedRepoStub(&models.FixedSchedule{
		ID: "fs-1", WeekDay: schedule.Monday, HourOfTheDay: "18:00", NumberOfSpots: 2, UsersList: []string{},
	})
	users := &recoveryStub{users: map[string]*models.User{
		"ana@example.com": {Email: "ana@example.com"},
	}}
	svc := NewFixedScheduleService(repo, users, nil, nil, nil)

	slot, err := svc.Enroll(context.Background(), "fs-1", "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, slot.UsersList)
}

func TestFixedScheduleServiceEnrollUnknownUser(t *testing.T) {
	repo := newFixedRepoStub(&models.FixedSchedule{
		ID: "fs-1", WeekDay: schedule.Monday, HourOfTheDay: "18:00", NumberOfSpots: 2, UsersList: []string{},
	})
	svc := NewFixedScheduleService(repo, &recoveryStub{users: map[string]*models.User{}}, nil, nil, nil)

	_, err := svc.Enroll(context.Background(), "fs-1", "ghost@example.com")
	require.Error(t, err)
}

func TestFixedScheduleServiceEnrollDoesNotEnforceCapacity(t *testing.T) {
	repo := newFixedRepoStub(&models.FixedSchedule{
		ID: "fs-1", WeekDay: schedule.Monday, HourOfTheDay: "18:00", NumberOfSpots: 1,
		UsersList: []string{"ana@example.com"},
	})
	users := &recoveryStub{users: map[string]*models.User{
		"bia@example.com": {Email: "bia@example.com"},
	}}
	svc := NewFixedScheduleService(repo, users, nil, nil, nil)

	slot, err := svc.Enroll(context.Background(), "fs-1", "bia@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com", "bia@example.com"}, slot.UsersList)
}

func TestFixedScheduleServiceUnenrollRemovesUser(t *testing.T) {
	repo := newFixedRepoStub(&models.FixedSchedule{
		ID: "fs-1", WeekDay: schedule.Monday, HourOfTheDay: "18:00", NumberOfSpots: 2,
		UsersList: []string{"ana@example.com", "bia@example.com"},
	})
	svc := NewFixedScheduleService(repo, &recoveryStub{}, nil, nil, nil)

	slot, err := svc.Unenroll(context.Background(), "fs-1", "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"bia@example.com"}, slot.UsersList)
}
