package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingslot/internal/openslot"
	"pingslot/internal/schedule"
	"pingslot/internal/timegrid"
)

var testDate = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func mustSlot(t *testing.T, id string) timegrid.Slot {
	t.Helper()
	slot, ok := timegrid.SlotByID(id)
	require.True(t, ok, "catalog is missing slot %s", id)
	return slot
}

func TestClassifyBlockingTrainingWins(t *testing.T) {
	weekSlots := []schedule.WeekSlot{
		{Date: testDate, StartMin: 1140, EndMin: 1230, Name: "Training C", IsBlocking: true},
	}
	// An opened slot inside the training span loses to the training.
	opened := []openslot.OpenedSlot{
		{Date: testDate, SlotID: "19:00", Target: openslot.TargetAll},
	}

	cls := Classify(mustSlot(t, "19:00"), testDate, weekSlots, opened, nil)
	assert.Equal(t, CategoryTraining, cls.Category)
	assert.False(t, cls.Bookable)
	assert.Equal(t, ReasonBlocked, cls.Reason)
	require.NotNil(t, cls.WeekSlot)
	assert.Equal(t, "Training C", cls.WeekSlot.Name)
}

func TestClassifyCourseStaysBookable(t *testing.T) {
	weekSlots := []schedule.WeekSlot{
		{Date: testDate, StartMin: 600, EndMin: 690, Name: "Youth course", IsBlocking: false},
	}

	cls := Classify(mustSlot(t, "10:00"), testDate, weekSlots, nil, nil)
	assert.Equal(t, CategoryCourse, cls.Category)
	assert.True(t, cls.Bookable)
	assert.Equal(t, openslot.TargetAll, cls.Target)
	assert.Equal(t, ReasonCourse, cls.Reason)
}

func TestClassifySlotSpanContainment(t *testing.T) {
	// A 19:00-20:30 training covers 19:00, 19:30 and 20:00 but not 20:30.
	weekSlots := []schedule.WeekSlot{
		{Date: testDate, StartMin: 1140, EndMin: 1230, IsBlocking: true},
	}

	for _, id := range []string{"19:00", "19:30", "20:00"} {
		cls := Classify(mustSlot(t, id), testDate, weekSlots, nil, nil)
		assert.Equal(t, CategoryTraining, cls.Category, "slot %s", id)
	}

	cls := Classify(mustSlot(t, "20:30"), testDate, weekSlots, nil, nil)
	assert.NotEqual(t, CategoryTraining, cls.Category)
}

func TestClassifyAdHocOpened(t *testing.T) {
	opened := []openslot.OpenedSlot{
		{Date: testDate, SlotID: "22:00", Target: openslot.TargetCompetition},
	}
	// 22:00 sits outside a restricted opening window, so without the ad-hoc
	// opening it would be closed.
	hours := []schedule.WeekHour{
		{Date: testDate, StartMin: 480, EndMin: 1200},
	}

	cls := Classify(mustSlot(t, "22:00"), testDate, nil, opened, hours)
	assert.Equal(t, CategoryOpened, cls.Category)
	assert.True(t, cls.Bookable)
	assert.Equal(t, openslot.TargetCompetition, cls.Target)
	assert.Equal(t, ReasonAdHoc, cls.Reason)
	require.NotNil(t, cls.Opened)
}

func TestClassifyOpeningHours(t *testing.T) {
	hours := []schedule.WeekHour{
		{Date: testDate, StartMin: 600, EndMin: 1200},
	}

	in := Classify(mustSlot(t, "10:00"), testDate, nil, nil, hours)
	assert.Equal(t, CategoryOpened, in.Category)
	assert.Equal(t, ReasonOpeningHours, in.Reason)
	assert.Equal(t, openslot.TargetAll, in.Target)

	out := Classify(mustSlot(t, "8:00"), testDate, nil, nil, hours)
	assert.Equal(t, CategoryClosed, out.Category)
	assert.False(t, out.Bookable)
	assert.Equal(t, ReasonNotOpened, out.Reason)
}

func TestClassifyDefaultHoursWhenNoneConfigured(t *testing.T) {
	// Without configured windows the whole 08:00-23:00 day counts as open.
	first := Classify(mustSlot(t, "8:00"), testDate, nil, nil, nil)
	assert.True(t, first.Bookable)

	last := Classify(mustSlot(t, "22:30"), testDate, nil, nil, nil)
	assert.True(t, last.Bookable)
}

func TestLicenseMatches(t *testing.T) {
	tests := []struct {
		license string
		target  string
		want    bool
	}{
		{"L", openslot.TargetAll, true},
		{"C", openslot.TargetAll, true},
		{"", openslot.TargetAll, true},
		{"L", openslot.TargetLoisir, true},
		{"C", openslot.TargetLoisir, false},
		{"C", openslot.TargetCompetition, true},
		{"L", openslot.TargetCompetition, false},
		{"", openslot.TargetCompetition, false},
		{"L", "unknown", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LicenseMatches(tt.license, tt.target),
			"license=%q target=%q", tt.license, tt.target)
	}
}
