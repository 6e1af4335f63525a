package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/alumni-connect/internal/service"
)

// OpportunityHandler serves /api/jobs and the application endpoints under
// /api/job-applications.
type OpportunityHandler struct {
	Opportunities *service.OpportunityService
	Applications  *service.ApplicationService
}

func NewOpportunityHandler(opps *service.OpportunityService, apps *service.ApplicationService) *OpportunityHandler {
	if opps == nil || apps == nil {
		panic("nil service passed to NewOpportunityHandler")
	}
	return &OpportunityHandler{Opportunities: opps, Applications: apps}
}

func (h *OpportunityHandler) Create(c echo.Context) error {
	var req service.OpportunityInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	o, err := h.Opportunities.Create(ctx, actor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *OpportunityHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Opportunities.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *OpportunityHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	o, err := h.Opportunities.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

// ListMine returns the caller's own postings.
func (h *OpportunityHandler) ListMine(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Opportunities.ListMine(ctx, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *OpportunityHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Opportunities.Delete(ctx, actor(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResp{Message: "Opportunity deleted"})
}

// Apply is mounted on both /api/jobs/:id/apply and
// /api/job-applications/:id/apply.
func (h *OpportunityHandler) Apply(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	app, err := h.Opportunities.Apply(ctx, actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, app)
}

func (h *OpportunityHandler) UpdateApplicationStatus(c echo.Context) error {
	var req service.StatusUpdateInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	app, err := h.Applications.UpdateStatus(ctx, actor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

func (h *OpportunityHandler) StudentApplications(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Applications.ListForStudent(ctx, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *OpportunityHandler) AlumniApplications(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Applications.ListForAlumni(ctx, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
