package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDayAvailabilityFixedOnly(t *testing.T) {
	report := BuildDayAvailability("2024-01-15", []FixedSlot{
		{Hour: "17:00", NumberOfSpots: 1, Enrolled: 1},
		{Hour: "17:30", NumberOfSpots: 1, Enrolled: 0},
		{Hour: "18:00", NumberOfSpots: 2, Enrolled: 0},
	}, nil, nil)

	assert.Equal(t, "2024-01-15", report.Day)
	assert.Equal(t, 4, report.NumberOfSpots)
	assert.Equal(t, 3, report.AvailableSpots)
	require.Len(t, report.Hours, 3)
	assert.Equal(t, HourAvailability{Hour: "17:00", NumberOfSpots: 1, AvailableSpots: 1}, report.Hours[0])
	assert.Equal(t, HourAvailability{Hour: "17:30", NumberOfSpots: 1, AvailableSpots: 1}, report.Hours[1])
	assert.Equal(t, HourAvailability{Hour: "18:00", NumberOfSpots: 2, AvailableSpots: 2}, report.Hours[2])
}

func TestBuildDayAvailabilityPassOrder(t *testing.T) {
	// One spot is consumed by a one-off booking and one freed by a
	// cancellation; variable subtracts before canceled adds, landing back
	// at full capacity.
	report := BuildDayAvailability("2024-01-15",
		[]FixedSlot{{Hour: "18:00", NumberOfSpots: 2, Enrolled: 0}},
		[]SlotUsage{{Hour: "18:00", Users: 1}},
		[]SlotUsage{{Hour: "18:00", Users: 1}},
	)

	require.Len(t, report.Hours, 1)
	assert.Equal(t, 2, report.Hours[0].AvailableSpots)
	assert.Equal(t, 2, report.AvailableSpots)
}

func TestBuildDayAvailabilityVariableConsumesSpots(t *testing.T) {
	report := BuildDayAvailability("2024-01-15",
		[]FixedSlot{{Hour: "18:00", NumberOfSpots: 3, Enrolled: 1}},
		[]SlotUsage{{Hour: "18:00", Users: 2}},
		nil,
	)

	assert.Equal(t, 3, report.NumberOfSpots)
	assert.Equal(t, 0, report.AvailableSpots)
	require.Len(t, report.Hours, 1)
	assert.Equal(t, 1, report.Hours[0].AvailableSpots)
}

func TestBuildDayAvailabilityCancellationFreesSpots(t *testing.T) {
	report := BuildDayAvailability("2024-01-15",
		[]FixedSlot{{Hour: "09:00", NumberOfSpots: 2, Enrolled: 2}},
		nil,
		[]SlotUsage{{Hour: "09:00", Users: 1}},
	)

	assert.Equal(t, 1, report.AvailableSpots)
	require.Len(t, report.Hours, 1)
	assert.Equal(t, 3, report.Hours[0].AvailableSpots)
}

func TestBuildDayAvailabilityDropsUnknownHours(t *testing.T) {
	report := BuildDayAvailability("2024-01-15",
		[]FixedSlot{{Hour: "18:00", NumberOfSpots: 2, Enrolled: 0}},
		[]SlotUsage{{Hour: "07:00", Users: 5}},
		[]SlotUsage{{Hour: "21:00", Users: 5}},
	)

	assert.Equal(t, 2, report.AvailableSpots)
	require.Len(t, report.Hours, 1)
	assert.Equal(t, 2, report.Hours[0].AvailableSpots)
}

func TestBuildDayAvailabilityEmptyDay(t *testing.T) {
	report := BuildDayAvailability("2024-01-15", nil,
		[]SlotUsage{{Hour: "18:00", Users: 1}},
		[]SlotUsage{{Hour: "18:00", Users: 1}},
	)

	assert.Equal(t, 0, report.NumberOfSpots)
	assert.Equal(t, 0, report.AvailableSpots)
	assert.Empty(t, report.Hours)
}

func TestBuildDayAvailabilitySortsHours(t *testing.T) {
	report := BuildDayAvailability("2024-01-15", []FixedSlot{
		{Hour: "18:00", NumberOfSpots: 2},
		{Hour: "07:30", NumberOfSpots: 1},
		{Hour: "12:00", NumberOfSpots: 4},
	}, nil, nil)

	require.Len(t, report.Hours, 3)
	assert.Equal(t, "07:30", report.Hours[0].Hour)
	assert.Equal(t, "12:00", report.Hours[1].Hour)
	assert.Equal(t, "18:00", report.Hours[2].Hour)
}

func TestBuildDayAvailabilityDoesNotMutateInputs(t *testing.T) {
	fixed := []FixedSlot{{Hour: "18:00", NumberOfSpots: 2}, {Hour: "07:00", NumberOfSpots: 1}}
	BuildDayAvailability("2024-01-15", fixed, nil, nil)
	assert.Equal(t, "18:00", fixed[0].Hour)
}
