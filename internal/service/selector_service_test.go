package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jtk5aw/random-image-site/internal/models"
	"github.com/jtk5aw/random-image-site/internal/repository"
	"github.com/jtk5aw/random-image-site/internal/testutil"
)

// MockImageRepository implements repository.ImageRepositoryInterface in memory.
type MockImageRepository struct {
	records map[string]*models.ImageRecord

	getRecentsErr error
	setImageErr   error
	setImageCalls int
}

func NewMockImageRepository() *MockImageRepository {
	return &MockImageRepository{records: make(map[string]*models.ImageRecord)}
}

func (m *MockImageRepository) key(group string, date string) string {
	return group + "#" + date
}

func (m *MockImageRepository) GetImage(ctx context.Context, group string, date time.Time) (*models.ImageRecord, error) {
	record, ok := m.records[m.key(group, models.FormatDate(date))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return record, nil
}

func (m *MockImageRepository) GetRecents(ctx context.Context, group string, date time.Time, window int) ([]models.ImageRecord, error) {
	if m.getRecentsErr != nil {
		return nil, m.getRecentsErr
	}
	var recents []models.ImageRecord
	for day := 1; day <= window; day++ {
		if record, ok := m.records[m.key(group, models.FormatDate(date.AddDate(0, 0, -day)))]; ok {
			recents = append(recents, *record)
		}
	}
	return recents, nil
}

func (m *MockImageRepository) SetImage(ctx context.Context, record *models.ImageRecord) error {
	if m.setImageErr != nil {
		return m.setImageErr
	}
	m.setImageCalls++
	m.records[m.key(record.Group, record.Date)] = record
	return nil
}

// MockPoolLister implements storage.PoolListerInterface over a fixed key list.
type MockPoolLister struct {
	keys []string
	err  error
}

func (m *MockPoolLister) ListPool(ctx context.Context, group string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.keys, nil
}

func TestSelectAndSet_NeverRepeatsWindow(t *testing.T) {
	helper := testutil.NewTestHelper(t)
	images := NewMockImageRepository()
	pool := &MockPoolLister{keys: helper.PoolKeys("discord", "a", "b", "c", "d", "e", "f")}
	selector := NewSelectorService(images, pool, "images.example.com")

	today := helper.Date("2026-08-31")
	excluded := make(map[string]bool)
	for day := 1; day <= 5; day++ {
		date := models.FormatDate(today.AddDate(0, 0, -day))
		key := pool.keys[day-1]
		images.records["discord#"+date] = &models.ImageRecord{Group: "discord", Date: date, ObjectKey: key}
		excluded[key] = true
	}

	for i := 0; i < 20; i++ {
		record, err := selector.SelectAndSet(context.Background(), "discord", today)
		if err != nil {
			t.Fatalf("SelectAndSet failed: %v", err)
		}
		if excluded[record.ObjectKey] {
			t.Fatalf("selected %s, which was used within the last 5 days", record.ObjectKey)
		}
	}
}

func TestSelectAndSet_OnlyRemainingCandidate(t *testing.T) {
	helper := testutil.NewTestHelper(t)
	images := NewMockImageRepository()
	pool := &MockPoolLister{keys: helper.PoolKeys("discord", "a", "b", "c", "d", "e", "f")}
	selector := NewSelectorService(images, pool, "images.example.com")

	today := helper.Date("2026-08-31")
	for day := 1; day <= 5; day++ {
		date := models.FormatDate(today.AddDate(0, 0, -day))
		images.records["discord#"+date] = &models.ImageRecord{Group: "discord", Date: date, ObjectKey: pool.keys[day-1]}
	}

	record, err := selector.SelectAndSet(context.Background(), "discord", today)
	if err != nil {
		t.Fatalf("SelectAndSet failed: %v", err)
	}
	if want := pool.keys[5]; record.ObjectKey != want {
		t.Errorf("expected the only unused key %s, got %s", want, record.ObjectKey)
	}
}

func TestSelectAndSet_EmptyPool(t *testing.T) {
	helper := testutil.NewTestHelper(t)
	selector := NewSelectorService(NewMockImageRepository(), &MockPoolLister{}, "images.example.com")

	_, err := selector.SelectAndSet(context.Background(), "discord", helper.Date("2026-08-31"))
	if !errors.Is(err, ErrSelectionExhausted) {
		t.Errorf("expected ErrSelectionExhausted, got %v", err)
	}
}

func TestSelectAndSet_FullyExcludedPool(t *testing.T) {
	helper := testutil.NewTestHelper(t)
	images := NewMockImageRepository()
	pool := &MockPoolLister{keys: helper.PoolKeys("discord", "a", "b", "c")}
	selector := NewSelectorService(images, pool, "images.example.com")

	today := helper.Date("2026-08-31")
	for day := 1; day <= 3; day++ {
		date := models.FormatDate(today.AddDate(0, 0, -day))
		images.records["discord#"+date] = &models.ImageRecord{Group: "discord", Date: date, ObjectKey: pool.keys[day-1]}
	}

	_, err := selector.SelectAndSet(context.Background(), "discord", today)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestSelectAndSet_WindowFetchFailureStillSelects(t *testing.T) {
	helper := testutil.NewTestHelper(t)
	images := NewMockImageRepository()
	images.getRecentsErr = errors.New("throttled")
	pool := &MockPoolLister{keys: helper.PoolKeys("discord", "a")}
	selector := NewSelectorService(images, pool, "images.example.com")

	record, err := selector.SelectAndSet(context.Background(), "discord", helper.Date("2026-08-31"))
	if err != nil {
		t.Fatalf("expected selection to proceed without the window, got %v", err)
	}
	if record.ObjectKey != pool.keys[0] {
		t.Errorf("expected %s, got %s", pool.keys[0], record.ObjectKey)
	}
}

func TestSelectAndSet_RefreshBookkeeping(t *testing.T) {
	helper := testutil.NewTestHelper(t)
	images := NewMockImageRepository()
	pool := &MockPoolLister{keys: helper.PoolKeys("discord", "a", "b", "c", "d", "e", "f", "g")}
	selector := NewSelectorService(images, pool, "images.example.com")

	// No refresh point in the window means a refresh is due today.
	today := helper.Date("2026-08-31")
	record, err := selector.SelectAndSet(context.Background(), "discord", today)
	if err != nil {
		t.Fatalf("SelectAndSet failed: %v", err)
	}
	if !record.GetRecents {
		t.Error("expected first selection to be a refresh point")
	}
	if record.DaysUntilGetRecents != 6 {
		t.Errorf("expected 6 days until the next refresh, got %d", record.DaysUntilGetRecents)
	}

	// The day after a refresh point counts down from it.
	tomorrow := today.AddDate(0, 0, 1)
	next, err := selector.SelectAndSet(context.Background(), "discord", tomorrow)
	if err != nil {
		t.Fatalf("SelectAndSet failed: %v", err)
	}
	if next.GetRecents {
		t.Error("expected no refresh the day after one")
	}
	if next.DaysUntilGetRecents != 5 {
		t.Errorf("expected 5 days until the next refresh, got %d", next.DaysUntilGetRecents)
	}
}

func TestGetRecents_FixedLengthWithPlaceholders(t *testing.T) {
	helper := testutil.NewTestHelper(t)
	images := NewMockImageRepository()
	selector := NewSelectorService(images, &MockPoolLister{}, "images.example.com")

	today := helper.Date("2026-08-31")
	images.records["discord#2026-08-29"] = &models.ImageRecord{
		Group: "discord", Date: "2026-08-29", ObjectKey: "discord/discord_a.jpg",
	}

	recents, err := selector.GetRecents(context.Background(), "discord", today)
	if err != nil {
		t.Fatalf("GetRecents failed: %v", err)
	}
	if len(recents) != DefaultWindowSize {
		t.Fatalf("expected %d entries, got %d", DefaultWindowSize, len(recents))
	}
	if recents[0].Date != "2026-08-30" || recents[0].ObjectKey != "" {
		t.Errorf("expected a placeholder for 2026-08-30 first, got %+v", recents[0])
	}
	if recents[1].ObjectKey != "discord/discord_a.jpg" {
		t.Errorf("expected the stored record second, got %+v", recents[1])
	}
	for i, record := range recents {
		want := models.FormatDate(today.AddDate(0, 0, -(i + 1)))
		if record.Date != want {
			t.Errorf("entry %d: expected date %s, got %s", i, want, record.Date)
		}
	}
}

func TestDailyImage_FallsBackToSelection(t *testing.T) {
	helper := testutil.NewTestHelper(t)
	images := NewMockImageRepository()
	pool := &MockPoolLister{keys: helper.PoolKeys("discord", "a")}
	selector := NewSelectorService(images, pool, "images.example.com")

	result, record, err := selector.DailyImage(context.Background(), "discord", helper.Date("2026-08-31"))
	if err != nil {
		t.Fatalf("DailyImage failed: %v", err)
	}
	if images.setImageCalls != 1 {
		t.Errorf("expected the fallback selection to persist a record, got %d writes", images.setImageCalls)
	}
	if want := "https://images.example.com/" + pool.keys[0]; result.URL != want {
		t.Errorf("expected URL %s, got %s", want, result.URL)
	}
	if record == nil || record.ObjectKey != pool.keys[0] {
		t.Errorf("expected the selected record back, got %+v", record)
	}
}

func TestDailyImage_AttachesRecapOnRefreshDays(t *testing.T) {
	helper := testutil.NewTestHelper(t)
	images := NewMockImageRepository()
	selector := NewSelectorService(images, &MockPoolLister{}, "images.example.com")

	today := helper.Date("2026-08-31")
	images.records["discord#2026-08-31"] = &models.ImageRecord{
		Group: "discord", Date: "2026-08-31", ObjectKey: "discord/discord_f.jpg",
		GetRecents: true, DaysUntilGetRecents: 6,
	}
	images.records["discord#2026-08-30"] = &models.ImageRecord{
		Group: "discord", Date: "2026-08-30", ObjectKey: "discord/discord_e.jpg",
	}

	result, _, err := selector.DailyImage(context.Background(), "discord", today)
	if err != nil {
		t.Fatalf("DailyImage failed: %v", err)
	}
	if len(result.WeeklyRecap) != 1 {
		t.Fatalf("expected one recap entry, placeholders skipped, got %d", len(result.WeeklyRecap))
	}
	if want := "https://images.example.com/discord/discord_e.jpg"; result.WeeklyRecap[0] != want {
		t.Errorf("expected recap URL %s, got %s", want, result.WeeklyRecap[0])
	}
}

func TestDailyImage_NoRecapOnOrdinaryDays(t *testing.T) {
	helper := testutil.NewTestHelper(t)
	images := NewMockImageRepository()
	selector := NewSelectorService(images, &MockPoolLister{}, "images.example.com")

	images.records["discord#2026-08-31"] = &models.ImageRecord{
		Group: "discord", Date: "2026-08-31", ObjectKey: "discord/discord_f.jpg",
		DaysUntilGetRecents: 3,
	}

	result, _, err := selector.DailyImage(context.Background(), "discord", helper.Date("2026-08-31"))
	if err != nil {
		t.Fatalf("DailyImage failed: %v", err)
	}
	if result.WeeklyRecap != nil {
		t.Errorf("expected no recap, got %v", result.WeeklyRecap)
	}
	if result.DaysUntilGetRecents != 3 {
		t.Errorf("expected days_until_get_recents 3, got %d", result.DaysUntilGetRecents)
	}
}
