package user

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"libra/model"
	usersvc "libra/service/user"
)

type Controller struct {
	Svc usersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "storage unavailable"})
	}
	h.Log.Error(op, "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

// POST /api/users  (admin)
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username and password are required"})
	}

	u, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		switch usersvc.Code(err) {
		case usersvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
		case usersvc.ErrUsernameTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "username already exists"})
		default:
			return h.fail(c, "user create", err)
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "user added", "user": u})
}

// GET /api/users  (admin)
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "user list", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// PUT /api/users/:id  (admin)
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req model.UpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username and role are required"})
	}

	u, err := h.Svc.Update(c.Request().Context(), id, req)
	if err != nil {
		switch usersvc.Code(err) {
		case usersvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		case usersvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
		case usersvc.ErrUsernameTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "username already taken"})
		default:
			return h.fail(c, "user update", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user updated", "user": u})
}

// DELETE /api/users/:id  (admin)
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		if usersvc.Code(err) == usersvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		return h.fail(c, "user delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
