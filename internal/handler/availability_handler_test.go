package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classbook/classbook-api/internal/models"
	"github.com/classbook/classbook-api/internal/schedule"
	"github.com/classbook/classbook-api/internal/service"
)

type fixedListMock struct {
	byWeekDay map[schedule.WeekDay][]models.FixedSchedule
}

func (m *fixedListMock) ListByWeekDay(ctx context.Context, weekDay schedule.WeekDay) ([]models.FixedSchedule, error) {
	return m.byWeekDay[weekDay], nil
}

type variableListMock struct{}

func (m *variableListMock) ListByDay(ctx context.Context, day string) ([]models.VariableSchedule, error) {
	return nil, nil
}

type canceledListMock struct{}

func (m *canceledListMock) ListByDay(ctx context.Context, day string) ([]models.CanceledSchedule, error) {
	return nil, nil
}

func newTestAvailabilityHandler() *AvailabilityHandler {
	fixed := &fixedListMock{byWeekDay: map[schedule.WeekDay][]models.FixedSchedule{
		schedule.Saturday: {
			{WeekDay: schedule.Saturday, HourOfTheDay: "18:00", NumberOfSpots: 2, UsersList: []string{"ana@example.com"}},
		},
	}}
	svc := service.NewAvailabilityService(fixed, &variableListMock{}, &canceledListMock{}, nil, service.AvailabilityConfig{}, nil, nil)
	return NewAvailabilityHandler(svc)
}

func TestAvailabilityHandlerForDays(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAvailabilityHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := bytes.NewBufferString(`{"days":["2024-01-20"]}`)
	req, _ := http.NewRequest(http.MethodPost, "/availability", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.ForDays(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []schedule.DayAvailability `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "2024-01-20", envelope.Data[0].Day)
	assert.Equal(t, 2, envelope.Data[0].NumberOfSpots)
	assert.Equal(t, 1, envelope.Data[0].AvailableSpots)
}

func TestAvailabilityHandlerForDaysRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAvailabilityHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := bytes.NewBufferString(`{"days":["20/01/2024"]}`)
	req, _ := http.NewRequest(http.MethodPost, "/availability", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.ForDays(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityHandlerForDaysRequiresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAvailabilityHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/availability", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.ForDays(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
