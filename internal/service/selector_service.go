package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/jtk5aw/random-image-site/internal/models"
	"github.com/jtk5aw/random-image-site/internal/repository"
	"github.com/jtk5aw/random-image-site/internal/storage"
)

// DefaultWindowSize is how many preceding days a selected image is excluded
// from being picked again.
const DefaultWindowSize = 5

var (
	// ErrSelectionExhausted means the pool listing came back empty.
	ErrSelectionExhausted = errors.New("no objects available to select from")
	// ErrPoolExhausted means every pool object was selected within the window.
	ErrPoolExhausted = errors.New("every pool object is excluded by the recency window")
)

type SelectorService struct {
	images      repository.ImageRepositoryInterface
	pool        storage.PoolListerInterface
	imageDomain string
	window      int
	rng         *rand.Rand
}

func NewSelectorService(images repository.ImageRepositoryInterface, pool storage.PoolListerInterface, imageDomain string) *SelectorService {
	return &SelectorService{
		images:      images,
		pool:        pool,
		imageDomain: imageDomain,
		window:      DefaultWindowSize,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SelectAndSet picks a random pool object that was not selected in the last
// window-size days and persists it as the record for (group, date).
func (s *SelectorService) SelectAndSet(ctx context.Context, group string, date time.Time) (*models.ImageRecord, error) {
	recents, err := s.images.GetRecents(ctx, group, date, s.window)
	if err != nil {
		// Availability over strict recency: a failed window read only costs
		// the no-repeat guarantee for one selection.
		log.Printf("WARNING: failed to fetch recent images for group %s: %v. Using empty exclusion set.", group, err)
		recents = nil
	}

	daysSinceRefresh := daysSinceLastRefresh(recents, date)

	excluded := make(map[string]bool, len(recents))
	for _, record := range recents {
		if record.ObjectKey != "" {
			excluded[record.ObjectKey] = true
		}
	}

	keys, err := s.pool.ListPool(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("list image pool: %w", err)
	}
	if len(keys) == 0 {
		return nil, ErrSelectionExhausted
	}

	// Draw from the complement set directly instead of rejection sampling, so
	// a fully excluded pool fails instead of looping.
	candidates := make([]string, 0, len(keys))
	for _, key := range keys {
		if !excluded[key] {
			candidates = append(candidates, key)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrPoolExhausted
	}

	objectKey := candidates[s.rng.Intn(len(candidates))]

	record := &models.ImageRecord{
		Group:               group,
		Date:                models.FormatDate(date),
		ObjectKey:           objectKey,
		GetRecents:          daysSinceRefresh == 0,
		DaysUntilGetRecents: s.window + 1 - daysSinceRefresh,
	}
	if err := s.images.SetImage(ctx, record); err != nil {
		return nil, fmt.Errorf("persist selected image: %w", err)
	}

	log.Printf("Selected object %s for group %s on %s", objectKey, group, record.Date)
	return record, nil
}

// GetImage returns the already-set record for (group, date).
// repository.ErrNotFound propagates so callers can fall back to SelectAndSet.
func (s *SelectorService) GetImage(ctx context.Context, group string, date time.Time) (*models.ImageRecord, error) {
	return s.images.GetImage(ctx, group, date)
}

// GetRecents returns one entry per window day (most recent first). Days with
// no stored record come back as zero-value placeholders so the recap always
// has a fixed length.
func (s *SelectorService) GetRecents(ctx context.Context, group string, date time.Time) ([]models.ImageRecord, error) {
	stored, err := s.images.GetRecents(ctx, group, date, s.window)
	if err != nil {
		return nil, fmt.Errorf("fetch recent images: %w", err)
	}

	byDate := make(map[string]models.ImageRecord, len(stored))
	for _, record := range stored {
		byDate[record.Date] = record
	}

	recents := make([]models.ImageRecord, 0, s.window)
	for day := 1; day <= s.window; day++ {
		key := models.FormatDate(date.AddDate(0, 0, -day))
		if record, ok := byDate[key]; ok {
			recents = append(recents, record)
		} else {
			recents = append(recents, models.ImageRecord{Group: group, Date: key})
		}
	}
	return recents, nil
}

// DailyImageResult is the read-surface view of a day's selection.
type DailyImageResult struct {
	URL                 string   `json:"url"`
	DaysUntilGetRecents int      `json:"days_until_get_recents"`
	WeeklyRecap         []string `json:"weekly_recap,omitempty"`
}

// DailyImage resolves the image for (group, date), selecting one on the fly if
// the scheduler has not run yet, and attaches the weekly recap on refresh
// days. The resolved record is returned alongside so callers can cache it.
func (s *SelectorService) DailyImage(ctx context.Context, group string, date time.Time) (*DailyImageResult, *models.ImageRecord, error) {
	record, err := s.GetImage(ctx, group, date)
	if errors.Is(err, repository.ErrNotFound) {
		log.Printf("No image set for group %s on %s. Selecting one now.", group, models.FormatDate(date))
		record, err = s.SelectAndSet(ctx, group, date)
	}
	if err != nil {
		return nil, nil, err
	}

	result := &DailyImageResult{
		URL:                 s.ImageURL(record.ObjectKey),
		DaysUntilGetRecents: record.DaysUntilGetRecents,
	}

	if record.GetRecents {
		recents, err := s.GetRecents(ctx, group, date)
		if err != nil {
			// The recap is cosmetic; serve the day's image without it.
			log.Printf("WARNING: failed to build weekly recap for group %s: %v", group, err)
			return result, record, nil
		}
		for _, recent := range recents {
			if recent.ObjectKey != "" {
				result.WeeklyRecap = append(result.WeeklyRecap, s.ImageURL(recent.ObjectKey))
			}
		}
	}
	return result, record, nil
}

// ImageURL formats the public URL for a pool object key.
func (s *SelectorService) ImageURL(objectKey string) string {
	return fmt.Sprintf("https://%s/%s", s.imageDomain, objectKey)
}

// daysSinceLastRefresh finds the most recent window record flagged as a
// refresh point and counts days from it to date. No refresh point means a
// refresh is due immediately.
func daysSinceLastRefresh(recents []models.ImageRecord, date time.Time) int {
	sorted := make([]models.ImageRecord, len(recents))
	copy(sorted, recents)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	for _, record := range sorted {
		if !record.GetRecents {
			continue
		}
		refreshDate, err := models.ParseDate(record.Date)
		if err != nil {
			log.Printf("WARNING: skipping image record with bad date %q", record.Date)
			continue
		}
		return daysBetween(refreshDate, date)
	}
	return 0
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
