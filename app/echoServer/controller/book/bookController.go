package book

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"libra/app/echoServer/jwtx"
	"libra/model"
	booksvc "libra/service/book"
	ratingsvc "libra/service/rating"
	"libra/util/upload"
)

type Controller struct {
	Svc     booksvc.Service
	Ratings ratingsvc.Service
	Uploads *upload.Store
	V       *validator.Validate
	Log     *slog.Logger
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "storage unavailable"})
	}
	h.Log.Error(op, "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

// GET /api/books
func (h *Controller) List(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid category_id"})
	}
	rows, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, "book list", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /api/books/search
func (h *Controller) Search(c echo.Context) error { return h.List(c) }

func filterFromQuery(c echo.Context) (booksvc.Filter, error) {
	f := booksvc.Filter{Title: c.QueryParam("title")}
	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, errors.New("invalid category_id")
		}
		f.CategoryID = &id
	}
	return f, nil
}

// GET /api/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		return h.fail(c, "book detail", err)
	}
	return c.JSON(http.StatusOK, row)
}

// bindInput reads the multipart form shared by create and update.
func (h *Controller) bindInput(c echo.Context) (booksvc.Input, error) {
	in := booksvc.Input{
		Title:       c.FormValue("title"),
		Author:      c.FormValue("author"),
		Description: c.FormValue("description"),
	}
	if raw := c.FormValue("stock"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return in, errors.New("invalid stock")
		}
		in.Stock = &n
	}
	if raw := c.FormValue("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return in, errors.New("invalid category_id")
		}
		in.CategoryID = &id
	}

	fh, err := c.FormFile("file")
	if err != nil {
		// no file uploaded
		return in, nil
	}
	ref, err := h.Uploads.Save(fh)
	if err != nil {
		return in, err
	}
	in.Image = &ref
	return in, nil
}

// POST /api/books  (admin, multipart)
func (h *Controller) Create(c echo.Context) error {
	in, err := h.bindInput(c)
	if err != nil {
		if errors.Is(err, upload.ErrBadType) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid or no file provided"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	b, err := h.Svc.Create(c.Request().Context(), in)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrBadInput {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "title and author are required, stock must not be negative"})
		}
		return h.fail(c, "book create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// PUT /api/books/:id  (admin, multipart)
func (h *Controller) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	in, err := h.bindInput(c)
	if err != nil {
		if errors.Is(err, upload.ErrBadType) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid or no file provided"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	if err := h.Svc.Update(c.Request().Context(), id, in); err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "title, author and stock are required, stock must not be negative"})
		default:
			return h.fail(c, "book update", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book updated"})
}

// DELETE /api/books/:id  (admin)
func (h *Controller) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		return h.fail(c, "book delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book deleted"})
}

// GET /api/books/categories
func (h *Controller) Categories(c echo.Context) error {
	rows, err := h.Svc.Categories(c.Request().Context())
	if err != nil {
		return h.fail(c, "category list", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /api/books/categories  (admin)
func (h *Controller) CreateCategory(c echo.Context) error {
	var req model.CreateCategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name is required"})
	}

	cat, err := h.Svc.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "name is required"})
		case booksvc.ErrCategoryTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "category already exists"})
		default:
			return h.fail(c, "category create", err)
		}
	}
	return c.JSON(http.StatusCreated, cat)
}

// POST /api/books/:id/rating
func (h *Controller) Rate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ident, err := jwtx.FromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var req model.RateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "rating must be between 1 and 5"})
	}

	rt, err := h.Ratings.Rate(c.Request().Context(), ident.ID, id, req.Rating)
	if err != nil {
		switch ratingsvc.Code(err) {
		case ratingsvc.ErrBadRating:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "rating must be between 1 and 5"})
		case ratingsvc.ErrNotAllowed:
			return c.JSON(http.StatusConflict, echo.Map{"message": "only confirmed returns can be rated"})
		default:
			return h.fail(c, "rate book", err)
		}
	}
	return c.JSON(http.StatusCreated, rt)
}

// GET /api/books/:id/rating  (public)
func (h *Controller) RatingSummary(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	s, err := h.Ratings.Summary(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "rating summary", err)
	}
	return c.JSON(http.StatusOK, s)
}
