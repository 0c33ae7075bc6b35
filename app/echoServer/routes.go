package echoServer

import (
	"github.com/labstack/echo/v4"

	authctrl "libra/app/echoServer/controller/auth"
	bookctrl "libra/app/echoServer/controller/book"
	borrowctrl "libra/app/echoServer/controller/borrow"
	userctrl "libra/app/echoServer/controller/user"
	"libra/model"
)

type C struct {
	Auth   *authctrl.Controller
	Book   *bookctrl.Controller
	Borrow *borrowctrl.Controller
	User   *userctrl.Controller

	JWTSecret string
	UploadDir string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/api")
	pub.POST("/auth/login", c.Auth.Login)
	pub.GET("/books/:id/rating", c.Book.RatingSummary)

	e.Static("/uploads", c.UploadDir)

	// Authenticated
	auth := e.Group("/api")
	auth.Use(JWTGuard(c.JWTSecret))
	auth.Use(Identity())

	admin := RequireRole(model.RoleAdmin)

	// Books
	auth.GET("/books", c.Book.List)
	auth.GET("/books/search", c.Book.Search)
	auth.GET("/books/categories", c.Book.Categories)
	auth.GET("/books/:id", c.Book.Detail)
	auth.POST("/books/:id/rating", c.Book.Rate)
	auth.POST("/books", c.Book.Create, admin)
	auth.PUT("/books/:id", c.Book.Update, admin)
	auth.DELETE("/books/:id", c.Book.Delete, admin)
	auth.POST("/books/categories", c.Book.CreateCategory, admin)

	// Borrows & returns
	auth.POST("/borrows", c.Borrow.Create)
	auth.GET("/borrows", c.Borrow.ListAll, admin)
	auth.GET("/borrows/history", c.Borrow.MyHistory)
	auth.POST("/returns", c.Borrow.RequestReturn)
	auth.PUT("/returns/:id", c.Borrow.ConfirmReturn, admin)

	// Users
	auth.POST("/users", c.User.Create, admin)
	auth.GET("/users", c.User.List, admin)
	auth.PUT("/users/:id", c.User.Update, admin)
	auth.DELETE("/users/:id", c.User.Delete, admin)
}
