package course

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medtrack/medtrack/internal/platform/auth"
	"github.com/medtrack/medtrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/courses", h.CreateCourse)
	api.GET("/courses", h.ListCourses)
	api.GET("/courses/:id", h.GetCourse)
	api.PUT("/courses/:id", h.UpdateCourse)
	api.DELETE("/courses/:id", h.DeleteCourse)
	api.GET("/courses/:id/intakes", h.ListCourseIntakes)

	api.GET("/intakes", h.ListIntakesInRange)
	api.POST("/intakes/:id/take", h.TakeIntake)
	api.POST("/intakes/:id/skip", h.SkipIntake)
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "course not found")
	case errors.Is(err, ErrIntakeNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "intake not found")
	case errors.Is(err, ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, "resource belongs to another user")
	case errors.Is(err, ErrAlreadyResolved):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) CreateCourse(c echo.Context) error {
	var course Course
	if err := c.Bind(&course); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	course.UserID = auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.CreateCourse(c.Request().Context(), &course); err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusCreated, course)
}

func (h *Handler) GetCourse(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	course, err := h.svc.GetCourse(c.Request().Context(), id, userID)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, course)
}

func (h *Handler) ListCourses(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	if c.QueryParam("active") == "true" {
		items, err := h.svc.ListActiveCourses(c.Request().Context(), userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, items)
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListCourses(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateCourse(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var course Course
	if err := c.Bind(&course); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	course.ID = id
	userID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.UpdateCourse(c.Request().Context(), &course, userID); err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, course)
}

func (h *Handler) DeleteCourse(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.DeleteCourse(c.Request().Context(), id, userID); err != nil {
		return mapErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListCourseIntakes(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	items, err := h.svc.ListIntakes(c.Request().Context(), id, userID)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListIntakesInRange(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	from, err := time.Parse(time.RFC3339, c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from")
	}
	to, err := time.Parse(time.RFC3339, c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to")
	}
	items, err := h.svc.ListIntakesInRange(c.Request().Context(), userID, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) TakeIntake(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	in, err := h.svc.MarkTaken(c.Request().Context(), id, userID, time.Now())
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, in)
}

func (h *Handler) SkipIntake(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	in, err := h.svc.MarkSkipped(c.Request().Context(), id, userID, body.Reason, time.Now())
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, in)
}
