package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/service"
)

// UserHandler serves profile endpoints.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	if users == nil {
		panic("nil service passed to NewUserHandler")
	}
	return &UserHandler{Users: users}
}

func (h *UserHandler) Profile(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Profile(ctx, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateProfile merges the raw JSON body into the stored profile, so only
// the keys the client sent are touched.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperrors.ErrValidation.WithMessage("Invalid request body").WithInternal(err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, actor(c), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// UploadPicture accepts a multipart form with the file under "picture".
func (h *UserHandler) UploadPicture(c echo.Context) error {
	fh, err := c.FormFile("picture")
	if err != nil {
		return apperrors.ErrMissingField.WithDetail("missingFields", []string{"picture"}).WithInternal(err)
	}
	f, err := fh.Open()
	if err != nil {
		return apperrors.ErrBadUpload.WithInternal(err)
	}
	defer f.Close()

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.UploadPicture(ctx, actor(c), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) ListAlumni(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Users.ListAlumni(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Get(ctx, actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}
