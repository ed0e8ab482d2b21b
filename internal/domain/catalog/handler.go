package catalog

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/raycare/hospital/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the catalog endpoints. static is applied to the
// machine, room and doctor routes only, whose payload never changes at runtime.
func (h *Handler) RegisterRoutes(api *echo.Group, static ...echo.MiddlewareFunc) {
	api.GET("/machines", h.ListMachines, static...)
	api.GET("/machines/:id", h.GetMachine, static...)
	api.GET("/rooms", h.ListRooms, static...)
	api.GET("/rooms/:id", h.GetRoom, static...)
	api.GET("/doctors", h.ListDoctors, static...)
	api.GET("/doctors/:id", h.GetDoctor, static...)
	api.GET("/images", h.ListImages)
	api.GET("/images/:id", h.GetImage)
	api.POST("/images", h.CreateImage)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotInitialized):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func list[T any](c echo.Context, items []T) error {
	pg := pagination.FromContext(c)
	pagination.SetHeaders(c, pg, len(items))
	return c.JSON(http.StatusOK, pagination.Window(items, pg))
}

// -- Machines --

func (h *Handler) ListMachines(c echo.Context) error {
	items, err := h.svc.ListMachines(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return list(c, items)
}

func (h *Handler) GetMachine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.GetMachine(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, m)
}

// -- Rooms --

func (h *Handler) ListRooms(c echo.Context) error {
	items, err := h.svc.ListRooms(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return list(c, items)
}

func (h *Handler) GetRoom(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.GetRoom(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

// -- Doctors --

func (h *Handler) ListDoctors(c echo.Context) error {
	items, err := h.svc.ListDoctors(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return list(c, items)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

// -- Images --

type createImageRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

func (h *Handler) ListImages(c echo.Context) error {
	items, err := h.svc.ListImages(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return list(c, items)
}

func (h *Handler) GetImage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	img, err := h.svc.GetImage(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, img)
}

func (h *Handler) CreateImage(c echo.Context) error {
	var req createImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	img := &Image{URL: req.URL}
	if err := h.svc.CreateImage(c.Request().Context(), img); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, img)
}
