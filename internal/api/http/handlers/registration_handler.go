package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/registration-service/internal/api/dto"
	"github.com/spec-kit/registration-service/internal/service"
	apperrors "github.com/spec-kit/registration-service/pkg/util/errorutil"
)

// RegistrationHandler serves the public intake endpoints.
type RegistrationHandler struct {
	intake *service.IntakeService
}

// NewRegistrationHandler constructs handler.
func NewRegistrationHandler(intake *service.IntakeService) *RegistrationHandler {
	return &RegistrationHandler{intake: intake}
}

// Create POST /registration.
func (h *RegistrationHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	receipt, err := h.intake.Register(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, "Registration successful! We'll contact you soon.", dto.NewRegistrationReceipt(receipt))
}

// Get GET /registration/:id.
func (h *RegistrationHandler) Get(c *fiber.Ctx) error {
	reg, err := h.intake.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "", dto.NewRegistration(reg))
}

// Update PUT /registration/:id.
func (h *RegistrationHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	reg, err := h.intake.Update(c.UserContext(), c.Params("id"), req.ToPatch())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "Registration updated successfully", dto.NewRegistration(reg))
}

// Delete DELETE /registration/:id.
func (h *RegistrationHandler) Delete(c *fiber.Ctx) error {
	if err := h.intake.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "Registration deleted successfully", nil)
}
