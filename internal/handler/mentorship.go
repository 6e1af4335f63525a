package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/alumni-connect/internal/service"
)

type MentorshipHandler struct {
	Mentorship *service.MentorshipService
}

func NewMentorshipHandler(m *service.MentorshipService) *MentorshipHandler {
	if m == nil {
		panic("nil service passed to NewMentorshipHandler")
	}
	return &MentorshipHandler{Mentorship: m}
}

func (h *MentorshipHandler) Request(c echo.Context) error {
	var req service.MentorshipInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	m, err := h.Mentorship.Request(ctx, actor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MentorshipHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.MentorshipStatusInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	m, err := h.Mentorship.UpdateStatus(ctx, actor(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MentorshipHandler) StudentRequests(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Mentorship.ListForStudent(ctx, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *MentorshipHandler) MentorRequests(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Mentorship.ListForMentor(ctx, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
