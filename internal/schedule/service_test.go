package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) CreateTemplate(ctx context.Context, name string) (*Template, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Template), args.Error(1)
}

func (m *MockRepo) GetTemplate(ctx context.Context, id int) (*Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Template), args.Error(1)
}

func (m *MockRepo) ListTemplates(ctx context.Context) ([]Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Template), args.Error(1)
}

func (m *MockRepo) DeleteTemplate(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepo) AddTemplateSlot(ctx context.Context, slot TemplateSlot) (*TemplateSlot, error) {
	args := m.Called(ctx, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TemplateSlot), args.Error(1)
}

func (m *MockRepo) DeleteTemplateSlot(ctx context.Context, templateID, slotID int) error {
	return m.Called(ctx, templateID, slotID).Error(0)
}

func (m *MockRepo) GetTemplateSlots(ctx context.Context, templateID int) ([]TemplateSlot, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TemplateSlot), args.Error(1)
}

func (m *MockRepo) AddTemplateHour(ctx context.Context, hour TemplateHour) (*TemplateHour, error) {
	args := m.Called(ctx, hour)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TemplateHour), args.Error(1)
}

func (m *MockRepo) DeleteTemplateHour(ctx context.Context, templateID, hourID int) error {
	return m.Called(ctx, templateID, hourID).Error(0)
}

func (m *MockRepo) GetTemplateHours(ctx context.Context, templateID int) ([]TemplateHour, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TemplateHour), args.Error(1)
}

func (m *MockRepo) GetWeekConfig(ctx context.Context, weekStart time.Time) (*WeekConfig, error) {
	args := m.Called(ctx, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WeekConfig), args.Error(1)
}

func (m *MockRepo) GetWeekSlots(ctx context.Context, weekConfigID int) ([]WeekSlot, error) {
	args := m.Called(ctx, weekConfigID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WeekSlot), args.Error(1)
}

func (m *MockRepo) GetWeekHours(ctx context.Context, weekConfigID int) ([]WeekHour, error) {
	args := m.Called(ctx, weekConfigID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WeekHour), args.Error(1)
}

func (m *MockRepo) GetWeekSlotsByDate(ctx context.Context, date time.Time) ([]WeekSlot, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WeekSlot), args.Error(1)
}

func (m *MockRepo) GetWeekHoursByDate(ctx context.Context, date time.Time) ([]WeekHour, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WeekHour), args.Error(1)
}

func (m *MockRepo) DeleteWeekConfig(ctx context.Context, weekStart time.Time) error {
	return m.Called(ctx, weekStart).Error(0)
}

func (m *MockRepo) DeleteWeekSlot(ctx context.Context, weekConfigID, slotID int) error {
	return m.Called(ctx, weekConfigID, slotID).Error(0)
}

func (m *MockRepo) ApplyWeekWrite(ctx context.Context, plan WeekWrite) (int64, error) {
	args := m.Called(ctx, plan)
	return args.Get(0).(int64), args.Error(1)
}

var monday = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func expectTemplate(repo *MockRepo, id int, name string, slots []TemplateSlot, hours []TemplateHour) {
	repo.On("GetTemplate", mock.Anything, id).Return(&Template{ID: id, Name: name}, nil)
	repo.On("GetTemplateSlots", mock.Anything, id).Return(slots, nil)
	repo.On("GetTemplateHours", mock.Anything, id).Return(hours, nil)
}

func TestApplyInvalidMode(t *testing.T) {
	svc := NewService(new(MockRepo))

	_, err := svc.ApplyTemplateToWeeks(context.Background(), 1, []time.Time{monday}, Mode("replace"))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestApplyRejectsNonMonday(t *testing.T) {
	repo := new(MockRepo)
	expectTemplate(repo, 1, "Base", nil, nil)
	svc := NewService(repo)

	tuesday := monday.AddDate(0, 0, 1)
	_, err := svc.ApplyTemplateToWeeks(context.Background(), 1, []time.Time{tuesday}, ModeOverwrite)
	assert.ErrorIs(t, err, ErrNotMondayAnchor)
}

func TestApplyToFreshWeekCreatesConfig(t *testing.T) {
	repo := new(MockRepo)
	expectTemplate(repo, 1, "Base", []TemplateSlot{
		{DayOfWeek: 1, StartMin: 1080, EndMin: 1170, Name: "Training", IsBlocking: true},
	}, []TemplateHour{
		{DayOfWeek: 1, StartMin: 480, EndMin: 1380},
	})

	repo.On("GetWeekConfig", mock.Anything, monday).Return(nil, nil)
	repo.On("ApplyWeekWrite", mock.Anything, mock.MatchedBy(func(plan WeekWrite) bool {
		return plan.CreateConfig &&
			plan.TemplateName == "Base" &&
			len(plan.InsertSlots) == 1 &&
			len(plan.InsertHours) == 1 &&
			len(plan.EvictRanges) == 1 &&
			plan.EvictRanges[0].StartMin == 1080
	})).Return(int64(0), nil)

	svc := NewService(repo)
	res, err := svc.ApplyTemplateToWeeks(context.Background(), 1, []time.Time{monday}, ModeMerge)
	require.NoError(t, err)

	assert.Equal(t, 1, res.CreatedWeeks)
	assert.Equal(t, 1, res.InsertedSlots)
	assert.Equal(t, 1, res.InsertedHours)
	assert.Equal(t, 0, res.SkippedEntries)
	repo.AssertExpectations(t)
}

func TestMergeSkipsOverlappingEntries(t *testing.T) {
	repo := new(MockRepo)
	expectTemplate(repo, 2, "Extra", []TemplateSlot{
		{DayOfWeek: 1, StartMin: 1080, EndMin: 1170, Name: "New training"},
		{DayOfWeek: 2, StartMin: 600, EndMin: 690, Name: "Tuesday course"},
	}, nil)

	repo.On("GetWeekConfig", mock.Anything, monday).Return(&WeekConfig{ID: 5, WeekStart: monday, TemplateName: "Base"}, nil)
	repo.On("GetWeekSlots", mock.Anything, 5).Return([]WeekSlot{
		{ID: 11, Date: monday, StartMin: 1140, EndMin: 1230, Name: "Old training"},
	}, nil)
	repo.On("GetWeekHours", mock.Anything, 5).Return([]WeekHour{}, nil)

	repo.On("ApplyWeekWrite", mock.Anything, mock.MatchedBy(func(plan WeekWrite) bool {
		return !plan.CreateConfig &&
			plan.ConfigID == 5 &&
			plan.TemplateName == "Base, Extra" &&
			len(plan.DeleteSlotIDs) == 0 &&
			len(plan.InsertSlots) == 1 &&
			plan.InsertSlots[0].Name == "Tuesday course"
	})).Return(int64(0), nil)

	svc := NewService(repo)
	res, err := svc.ApplyTemplateToWeeks(context.Background(), 2, []time.Time{monday}, ModeMerge)
	require.NoError(t, err)

	assert.Equal(t, 1, res.SkippedEntries)
	assert.Equal(t, 1, res.InsertedSlots)
	assert.Equal(t, 0, res.ReplacedEntries)
	repo.AssertExpectations(t)
}

func TestMergeIsIdempotent(t *testing.T) {
	// Re-merging a template whose entries already exist skips everything.
	repo := new(MockRepo)
	expectTemplate(repo, 2, "Extra", []TemplateSlot{
		{DayOfWeek: 1, StartMin: 1080, EndMin: 1170, Name: "Training"},
	}, nil)

	repo.On("GetWeekConfig", mock.Anything, monday).Return(&WeekConfig{ID: 5, WeekStart: monday, TemplateName: "Base, Extra"}, nil)
	repo.On("GetWeekSlots", mock.Anything, 5).Return([]WeekSlot{
		{ID: 11, Date: monday, StartMin: 1080, EndMin: 1170, Name: "Training"},
	}, nil)
	repo.On("GetWeekHours", mock.Anything, 5).Return([]WeekHour{}, nil)

	repo.On("ApplyWeekWrite", mock.Anything, mock.MatchedBy(func(plan WeekWrite) bool {
		return len(plan.InsertSlots) == 0 &&
			len(plan.DeleteSlotIDs) == 0 &&
			plan.TemplateName == "Base, Extra"
	})).Return(int64(0), nil)

	svc := NewService(repo)
	res, err := svc.ApplyTemplateToWeeks(context.Background(), 2, []time.Time{monday}, ModeMerge)
	require.NoError(t, err)

	assert.Equal(t, 1, res.SkippedEntries)
	assert.Equal(t, 0, res.InsertedSlots)
	repo.AssertExpectations(t)
}

func TestMergeKeepNewReplacesLosers(t *testing.T) {
	repo := new(MockRepo)
	expectTemplate(repo, 3, "Override", []TemplateSlot{
		{DayOfWeek: 1, StartMin: 1080, EndMin: 1170, Name: "New training", IsBlocking: true},
	}, nil)

	repo.On("GetWeekConfig", mock.Anything, monday).Return(&WeekConfig{ID: 5, WeekStart: monday, TemplateName: "Base"}, nil)
	repo.On("GetWeekSlots", mock.Anything, 5).Return([]WeekSlot{
		{ID: 11, Date: monday, StartMin: 1080, EndMin: 1140, Name: "Old A"},
		{ID: 12, Date: monday, StartMin: 1140, EndMin: 1200, Name: "Old B"},
		{ID: 13, Date: monday, StartMin: 600, EndMin: 690, Name: "Untouched"},
	}, nil)
	repo.On("GetWeekHours", mock.Anything, 5).Return([]WeekHour{}, nil)

	repo.On("ApplyWeekWrite", mock.Anything, mock.MatchedBy(func(plan WeekWrite) bool {
		return len(plan.DeleteSlotIDs) == 2 &&
			plan.DeleteSlotIDs[0] == 11 && plan.DeleteSlotIDs[1] == 12 &&
			len(plan.InsertSlots) == 1 &&
			len(plan.EvictRanges) == 1
	})).Return(int64(1), nil)

	svc := NewService(repo)
	res, err := svc.ApplyTemplateToWeeks(context.Background(), 3, []time.Time{monday}, ModeMergeKeepNew)
	require.NoError(t, err)

	assert.Equal(t, 2, res.ReplacedEntries)
	assert.Equal(t, 1, res.InsertedSlots)
	assert.Equal(t, 1, res.DeletedReservations)
	repo.AssertExpectations(t)
}

func TestOverwriteClearsWeek(t *testing.T) {
	repo := new(MockRepo)
	expectTemplate(repo, 1, "Base", []TemplateSlot{
		{DayOfWeek: 2, StartMin: 600, EndMin: 690, Name: "Course"},
	}, nil)

	repo.On("GetWeekConfig", mock.Anything, monday).Return(&WeekConfig{ID: 5, WeekStart: monday, TemplateName: "Old, Extra"}, nil)
	repo.On("ApplyWeekWrite", mock.Anything, mock.MatchedBy(func(plan WeekWrite) bool {
		return plan.DeleteAllExisting &&
			plan.TemplateName == "Base" &&
			len(plan.InsertSlots) == 1
	})).Return(int64(0), nil)

	svc := NewService(repo)
	res, err := svc.ApplyTemplateToWeeks(context.Background(), 1, []time.Time{monday}, ModeOverwrite)
	require.NoError(t, err)

	assert.Equal(t, 0, res.CreatedWeeks)
	assert.Equal(t, 1, res.InsertedSlots)
	repo.AssertExpectations(t)
}

func TestApplyChainEarlierTemplatesWin(t *testing.T) {
	// Chain application: first template overwrites, later ones merge, so a
	// conflicting later entry is skipped no matter how many templates sit
	// between it and the winner.
	repo := new(MockRepo)
	expectTemplate(repo, 1, "Primary", []TemplateSlot{
		{DayOfWeek: 1, StartMin: 1080, EndMin: 1170, Name: "Primary training", IsBlocking: true},
	}, nil)
	expectTemplate(repo, 2, "Secondary", []TemplateSlot{
		{DayOfWeek: 1, StartMin: 1140, EndMin: 1230, Name: "Secondary course"},
	}, nil)

	// Primary overwrites into an unconfigured week.
	repo.On("GetWeekConfig", mock.Anything, monday).Return(nil, nil).Once()
	repo.On("ApplyWeekWrite", mock.Anything, mock.MatchedBy(func(plan WeekWrite) bool {
		return plan.CreateConfig && len(plan.InsertSlots) == 1
	})).Return(int64(0), nil).Once()

	// Secondary merges against what Primary wrote.
	repo.On("GetWeekConfig", mock.Anything, monday).Return(&WeekConfig{ID: 7, WeekStart: monday, TemplateName: "Primary"}, nil).Once()
	repo.On("GetWeekSlots", mock.Anything, 7).Return([]WeekSlot{
		{ID: 21, Date: monday, StartMin: 1080, EndMin: 1170, Name: "Primary training", IsBlocking: true},
	}, nil)
	repo.On("GetWeekHours", mock.Anything, 7).Return([]WeekHour{}, nil)
	repo.On("ApplyWeekWrite", mock.Anything, mock.MatchedBy(func(plan WeekWrite) bool {
		return len(plan.InsertSlots) == 0 && plan.TemplateName == "Primary, Secondary"
	})).Return(int64(0), nil).Once()

	svc := NewService(repo)
	res, err := svc.ApplyTemplatesToWeeks(context.Background(), []int{1, 2}, []time.Time{monday})
	require.NoError(t, err)

	assert.Equal(t, 1, res.InsertedSlots)
	assert.Equal(t, 1, res.SkippedEntries)
	// Both templates covered the same single week.
	assert.Equal(t, 1, res.WeeksApplied)
	repo.AssertExpectations(t)
}

func TestApplyChainRequiresTemplates(t *testing.T) {
	svc := NewService(new(MockRepo))
	_, err := svc.ApplyTemplatesToWeeks(context.Background(), nil, []time.Time{monday})
	assert.ErrorIs(t, err, ErrNoTemplates)
}

func TestAnalyzeReportsConflictsWithoutWriting(t *testing.T) {
	repo := new(MockRepo)
	expectTemplate(repo, 2, "Extra", []TemplateSlot{
		{DayOfWeek: 1, StartMin: 1080, EndMin: 1170, Name: "New training"},
		{DayOfWeek: 2, StartMin: 600, EndMin: 690, Name: "Free"},
	}, nil)

	nextMonday := monday.AddDate(0, 0, 7)
	repo.On("GetWeekConfig", mock.Anything, monday).Return(&WeekConfig{ID: 5, WeekStart: monday, TemplateName: "Base"}, nil)
	repo.On("GetWeekConfig", mock.Anything, nextMonday).Return(nil, nil)
	repo.On("GetWeekSlots", mock.Anything, 5).Return([]WeekSlot{
		{ID: 11, Date: monday, StartMin: 1140, EndMin: 1230, Name: "Old training"},
	}, nil)
	repo.On("GetWeekHours", mock.Anything, 5).Return([]WeekHour{}, nil)

	svc := NewService(repo)
	res, err := svc.Analyze(context.Background(), 2, []time.Time{monday, nextMonday})
	require.NoError(t, err)

	assert.Len(t, res.ConfiguredWeeks, 1)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, ConflictKindSlot, res.Conflicts[0].Kind)
	assert.Equal(t, "New training", res.Conflicts[0].NewName)
	assert.Equal(t, "Old training", res.Conflicts[0].ExistingName)

	repo.AssertNotCalled(t, "ApplyWeekWrite", mock.Anything, mock.Anything)
}
