package functions

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jtk5aw/random-image-site/internal/service"
)

// ScheduledEvent is the payload delivered by the daily schedule rule.
type ScheduledEvent struct {
	Time string `json:"time"`
}

const scheduledTimeLayout = "2006-01-02T15:04:05Z"

// DailySetupFunction selects tomorrow's image and sets up tomorrow's counts
// record ahead of first user traffic. Errors propagate so the platform
// redelivers the trigger; the image upsert makes the retry safe.
type DailySetupFunction struct {
	selector     *service.SelectorService
	reactions    *service.ReactionService
	defaultGroup string
}

func NewDailySetupFunction(selector *service.SelectorService, reactions *service.ReactionService, defaultGroup string) *DailySetupFunction {
	return &DailySetupFunction{selector: selector, reactions: reactions, defaultGroup: defaultGroup}
}

func (f *DailySetupFunction) Handle(ctx context.Context, event ScheduledEvent) error {
	eventTime, err := time.Parse(scheduledTimeLayout, event.Time)
	if err != nil {
		return fmt.Errorf("parse scheduled event time %q: %w", event.Time, err)
	}
	tomorrow := eventTime.AddDate(0, 0, 1)

	record, err := f.selector.SelectAndSet(ctx, f.defaultGroup, tomorrow)
	if err != nil {
		return fmt.Errorf("select tomorrow's image: %w", err)
	}
	log.Printf("Selected %s for group %s on %s", record.ObjectKey, record.Group, record.Date)

	if err := f.reactions.SetupCounts(ctx, f.defaultGroup, tomorrow); err != nil {
		return fmt.Errorf("set up tomorrow's counts: %w", err)
	}
	return nil
}
