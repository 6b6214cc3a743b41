package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"shortloop/internal/service"
)

type VideoHandler struct {
	s service.VideoService
}

func NewVideoHandler(s service.VideoService) *VideoHandler {
	return &VideoHandler{s: s}
}

func (h *VideoHandler) UploadVideo(c *fiber.Ctx) error {
	userID := GetUserID(c)

	file, err := c.FormFile("file")
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file selected",
		})
	}

	title := c.FormValue("title")
	description := c.FormValue("description")

	videoID, err := h.s.Upload(c.Context(), userID, title, description, file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"video_id": videoID,
	})
}

func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	userID := GetUserID(c)

	videos, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list videos",
		})
	}

	return c.Status(fiber.StatusOK).JSON(videos)
}

func (h *VideoHandler) RemoveVideo(c *fiber.Ctx) error {
	userID := GetUserID(c)
	videoID := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userID, int64(videoID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove video",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
