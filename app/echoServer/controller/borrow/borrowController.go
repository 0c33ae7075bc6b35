package borrow

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"libra/app/echoServer/jwtx"
	"libra/service/lending"
)

type Controller struct {
	Svc lending.Service
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

// Borrow a book
// @Summary      Borrow a book
// @Description  Lends one copy to the caller and decrements stock
// @Tags         borrows
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  CreateBorrowReq  true  "Borrow payload"
// @Success      201  {object}  lending.Borrowed
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any
// @Router       /api/borrows [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateBorrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "book_id is required"})
	}
	ident, err := jwtx.FromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	out, err := h.Svc.Borrow(c.Request().Context(), ident.ID, req.BookID)
	if err != nil {
		switch lending.Code(err) {
		case lending.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case lending.ErrOutOfStock:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is out of stock"})
		case lending.ErrAlreadyBorrowed:
			return c.JSON(http.StatusConflict, echo.Map{"message": "you already borrowed this book"})
		case lending.ErrBorrowLimit:
			return c.JSON(http.StatusConflict, echo.Map{"message": "borrow limit reached (3 books)"})
		default:
			return h.fail(c, "borrow", err)
		}
	}
	return c.JSON(http.StatusCreated, out)
}

// GET /api/borrows  (admin)
func (h *Controller) ListAll(c echo.Context) error {
	rows, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		return h.fail(c, "borrow list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /api/borrows/history
func (h *Controller) MyHistory(c echo.Context) error {
	ident, err := jwtx.FromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.History(c.Request().Context(), ident.ID)
	if err != nil {
		return h.fail(c, "borrow history", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /api/returns
func (h *Controller) RequestReturn(c echo.Context) error {
	var req RequestReturnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "borrow_id is required"})
	}
	ident, err := jwtx.FromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	returnID, err := h.Svc.RequestReturn(c.Request().Context(), ident.ID, req.BorrowID)
	if err != nil {
		switch lending.Code(err) {
		case lending.ErrBorrowNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrow not found"})
		case lending.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case lending.ErrNotActive:
			return c.JSON(http.StatusConflict, echo.Map{"message": "borrow is not active"})
		case lending.ErrAlreadyRequested:
			return c.JSON(http.StatusConflict, echo.Map{"message": "return already requested"})
		default:
			return h.fail(c, "return request", err)
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"return_id": returnID,
		"status":    "pending",
	})
}

// PUT /api/returns/:id  (admin)
func (h *Controller) ConfirmReturn(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	if err := h.Svc.ConfirmReturn(c.Request().Context(), id); err != nil {
		switch lending.Code(err) {
		case lending.ErrReturnNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "return not found"})
		case lending.ErrAlreadyConfirmed:
			return c.JSON(http.StatusConflict, echo.Map{"message": "return already confirmed"})
		default:
			return h.fail(c, "return confirm", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "return confirmed"})
}
