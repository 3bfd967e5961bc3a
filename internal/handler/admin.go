package handler

import (
	"promptquest/internal/domain"
	"promptquest/internal/dto"
	"promptquest/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles question-bank administration requests
type AdminHandler struct {
	service service.ImportService
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(service service.ImportService) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// Import handles POST /api/admin/import. The body is a question-bank
// document; clear=true wipes the store before writing.
func (h *AdminHandler) Import(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return domain.NewInvalidInputError("request body must contain a question bank document")
	}
	clearFirst := c.QueryBool("clear", false)

	imported, err := h.service.Import(c.Context(), c.Body(), clearFirst)
	if err != nil {
		return err
	}

	return c.JSON(dto.ImportResponse{
		Imported: imported,
		Message:  "import completed",
	})
}

// ImportDefault handles POST /api/admin/import/default, loading the
// bundled question bank from the configured path.
func (h *AdminHandler) ImportDefault(c *fiber.Ctx) error {
	imported, err := h.service.ImportDefault(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(dto.ImportResponse{
		Imported: imported,
		Message:  "default question bank imported",
	})
}

// ClearQuestions handles DELETE /api/admin/questions.
func (h *AdminHandler) ClearQuestions(c *fiber.Ctx) error {
	if err := h.service.ClearAll(c.Context()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
