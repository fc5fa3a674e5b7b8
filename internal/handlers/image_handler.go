package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jtk5aw/random-image-site/internal/cache"
	"github.com/jtk5aw/random-image-site/internal/httpx"
	"github.com/jtk5aw/random-image-site/internal/models"
	"github.com/jtk5aw/random-image-site/internal/service"
	"github.com/jtk5aw/random-image-site/internal/validation"
)

type ImageHandler struct {
	selector     *service.SelectorService
	reactions    *service.ReactionService
	imageCache   *cache.ImageCache
	defaultGroup string
}

func NewImageHandler(selector *service.SelectorService, reactions *service.ReactionService, imageCache *cache.ImageCache, defaultGroup string) *ImageHandler {
	return &ImageHandler{
		selector:     selector,
		reactions:    reactions,
		imageCache:   imageCache,
		defaultGroup: defaultGroup,
	}
}

func (h *ImageHandler) group(c *fiber.Ctx) (string, bool) {
	group := validation.NormalizeGroup(c.Query("group", h.defaultGroup))
	return group, validation.ValidateGroup(group)
}

// GetImage serves today's image, selecting one on the fly if the scheduler
// has not run yet.
func (h *ImageHandler) GetImage(c *fiber.Ctx) error {
	group, ok := h.group(c)
	if !ok {
		return httpx.BadRequest(c, "invalid_group", "Invalid group")
	}

	today := time.Now()

	// The per-day record is immutable once set, so a cache hit can skip the
	// store entirely.
	if record, ok := h.imageCache.GetDailyImage(group, models.FormatDate(today)); ok && !record.GetRecents {
		return c.JSON(service.DailyImageResult{
			URL:                 h.selector.ImageURL(record.ObjectKey),
			DaysUntilGetRecents: record.DaysUntilGetRecents,
		})
	}

	result, record, err := h.selector.DailyImage(c.Context(), group, today)
	if err != nil {
		if errors.Is(err, service.ErrSelectionExhausted) || errors.Is(err, service.ErrPoolExhausted) {
			log.Printf("No selectable image for group %s: %v", group, err)
			return httpx.Error(c, fiber.StatusServiceUnavailable, "pool_exhausted", "No image available for today")
		}
		log.Printf("Failed to resolve daily image for group %s: %v", group, err)
		return httpx.Internal(c, "get_image_failed")
	}

	h.imageCache.SetDailyImage(record)

	return c.JSON(result)
}

// DailySetup manually triggers the scheduled flow: select tomorrow's image and
// set up tomorrow's counts record.
func (h *ImageHandler) DailySetup(c *fiber.Ctx) error {
	group, ok := h.group(c)
	if !ok {
		return httpx.BadRequest(c, "invalid_group", "Invalid group")
	}

	tomorrow := time.Now().AddDate(0, 0, 1)

	record, err := h.selector.SelectAndSet(c.Context(), group, tomorrow)
	if err != nil {
		log.Printf("Daily setup failed to select an image for group %s: %v", group, err)
		return httpx.Internal(c, "daily_setup_failed")
	}
	if err := h.reactions.SetupCounts(c.Context(), group, tomorrow); err != nil {
		log.Printf("Daily setup failed to set up counts for group %s: %v", group, err)
		return httpx.Internal(c, "daily_setup_failed")
	}

	return c.JSON(record)
}
