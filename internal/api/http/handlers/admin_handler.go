package handlers

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/api/dto"
	"github.com/spec-kit/registration-service/internal/auth"
	"github.com/spec-kit/registration-service/internal/service"
	apperrors "github.com/spec-kit/registration-service/pkg/util/errorutil"
)

// AdminHandler serves the authenticated review endpoints.
type AdminHandler struct {
	auth          *service.AdminAuthService
	review        *service.ReviewService
	stats         *service.StatsService
	export        *service.ExportService
	exportTimeout time.Duration
	logger        *zap.Logger
}

// AdminHandlerDependencies bundles collaborators for the admin handler.
type AdminHandlerDependencies struct {
	Auth          *service.AdminAuthService
	Review        *service.ReviewService
	Stats         *service.StatsService
	Export        *service.ExportService
	ExportTimeout time.Duration
	Logger        *zap.Logger
}

// NewAdminHandler constructs handler.
func NewAdminHandler(deps AdminHandlerDependencies) *AdminHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.ExportTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &AdminHandler{
		auth:          deps.Auth,
		review:        deps.Review,
		stats:         deps.Stats,
		export:        deps.Export,
		exportTimeout: timeout,
		logger:        logger,
	}
}

// Login POST /admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Password is required", nil)
	}
	res, err := h.auth.Login(c.UserContext(), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{
		Success:   true,
		Message:   "Login successful",
		Token:     res.Token,
		ExpiresIn: formatTTL(res.ExpiresIn),
		ExpiresAt: res.ExpiresAt,
	})
}

// actorContext tags the request context with the authenticated admin.
func actorContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if principal, ok := auth.PrincipalFromContext(c); ok {
		ctx = service.WithActor(ctx, principal.AdminID)
	}
	return ctx
}

// formatTTL renders whole hours as "24h" and anything else in Go duration form.
func formatTTL(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int64(d/time.Hour))
	}
	return d.String()
}

// List GET /admin/registrations.
func (h *AdminHandler) List(c *fiber.Ctx) error {
	page, err := intQuery(c, "page")
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return err
	}
	res, err := h.review.List(c.UserContext(), service.ListQuery{
		Page:      page,
		Limit:     limit,
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	})
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "", dto.NewRegistrationPage(res))
}

// intQuery parses an optional integer parameter; absent yields 0 so the service default applies.
func intQuery(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, apperrors.NewValidationError(key+" must be a positive integer", map[string]any{key: raw})
	}
	return v, nil
}

// Get GET /admin/registrations/:id.
func (h *AdminHandler) Get(c *fiber.Ctx) error {
	reg, err := h.review.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "", dto.NewRegistration(reg))
}

// UpdateStatus PATCH /admin/registrations/:id/status.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	reg, err := h.review.UpdateStatus(actorContext(c), c.Params("id"), req.Status, req.Notes)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "Status updated successfully", dto.NewRegistration(reg))
}

// Update PUT /admin/registrations/:id.
func (h *AdminHandler) Update(c *fiber.Ctx) error {
	var req dto.AdminUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	reg, err := h.review.Update(actorContext(c), c.Params("id"), req.ToPatch())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "Registration updated successfully", dto.NewRegistration(reg))
}

// Delete DELETE /admin/registrations/:id.
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	if err := h.review.Delete(actorContext(c), c.Params("id")); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "Registration deleted successfully", nil)
}

// Stats GET /admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	snap, err := h.stats.Snapshot(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "", dto.NewStats(snap))
}

// Export GET /admin/export streams the CSV. Query validation happens before
// any bytes are sent so bad input still gets a JSON error.
func (h *AdminHandler) Export(c *fiber.Ctx) error {
	filter, err := h.export.PrepareFilter(service.ExportQuery{
		Status:    c.Query("status"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	})
	if err != nil {
		return err
	}

	filename := h.export.Filename(time.Now())
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))

	// The stream writer runs after the handler returns, once the request
	// context has been cancelled.
	parent := context.WithoutCancel(c.UserContext())
	timeout := h.exportTimeout
	logger := h.logger
	exportSvc := h.export
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		rows, err := exportSvc.Write(ctx, w, filter)
		if err != nil {
			logger.Error("export aborted", zap.Int("rows", rows), zap.Error(err))
			return
		}
		if err := w.Flush(); err != nil {
			logger.Warn("export flush failed", zap.Error(err))
			return
		}
		logger.Info("export completed", zap.String("file", filename), zap.Int("rows", rows))
	})
	return nil
}
