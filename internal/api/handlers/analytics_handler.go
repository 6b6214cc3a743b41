package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shortloop/internal/service"
)

type AnalyticsHandler struct {
	s service.AnalyticsService
}

func NewAnalyticsHandler(s service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{s: s}
}

func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	userID := GetUserID(c)

	overviews, err := h.s.Overview(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to get analytics overview",
		})
	}

	return c.Status(fiber.StatusOK).JSON(overviews)
}

func (h *AnalyticsHandler) PostAnalytics(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	pa, err := h.s.PostAnalytics(c.Context(), userID, int64(postID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(pa)
}

func (h *AnalyticsHandler) PlatformOverview(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := c.Params("platform")

	overview, err := h.s.OverviewByPlatform(c.Context(), userID, platform)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(overview)
}
