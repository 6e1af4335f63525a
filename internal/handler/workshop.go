package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/alumni-connect/internal/service"
)

// WorkshopHandler serves /api/workshops.
type WorkshopHandler struct {
	Workshops *service.WorkshopService
}

func NewWorkshopHandler(w *service.WorkshopService) *WorkshopHandler {
	if w == nil {
		panic("nil service passed to NewWorkshopHandler")
	}
	return &WorkshopHandler{Workshops: w}
}

func (h *WorkshopHandler) Create(c echo.Context) error {
	var req service.WorkshopInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	w, err := h.Workshops.Create(ctx, actor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *WorkshopHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Workshops.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *WorkshopHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	w, err := h.Workshops.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WorkshopHandler) ListByOrganizer(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Workshops.ListByOrganizer(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *WorkshopHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.WorkshopInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	w, err := h.Workshops.Update(ctx, actor(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WorkshopHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Workshops.Delete(ctx, actor(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResp{Message: "Workshop deleted"})
}

func (h *WorkshopHandler) Register(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	w, err := h.Workshops.Register(ctx, actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WorkshopHandler) CancelRegistration(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	w, err := h.Workshops.CancelRegistration(ctx, actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}
