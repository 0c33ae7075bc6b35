// Package main library lending API.
//
// @title           Libra API
// @version         1.0
// @description     library lending service (catalog, borrows, returns, ratings, users).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"libra/app/echoServer"
	authctrl "libra/app/echoServer/controller/auth"
	bookctrl "libra/app/echoServer/controller/book"
	borrowctrl "libra/app/echoServer/controller/borrow"
	userctrl "libra/app/echoServer/controller/user"
	"libra/app/echoServer/validation"
	"libra/config"
	bookrepo "libra/repository/book"
	borrowrepo "libra/repository/borrow"
	ratingrepo "libra/repository/rating"
	userrepo "libra/repository/user"
	authsvc "libra/service/auth"
	booksvc "libra/service/book"
	"libra/service/lending"
	ratingsvc "libra/service/rating"
	usersvc "libra/service/user"
	"libra/util/database"
	"libra/util/upload"
)

func main() {
	_ = godotenv.Load()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	uploads, err := upload.NewStore(cfg.UploadDir)
	if err != nil {
		log.Error("upload dir init failed", "err", err)
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	lr := borrowrepo.New(db)
	rr := ratingrepo.New(db)

	// services
	as := authsvc.New(ur, cfg.JWTSecret, cfg.JWTTTLHours, cfg.StorageTimeout)
	us := usersvc.New(ur, cfg.StorageTimeout)
	bs := booksvc.New(br, cfg.StorageTimeout)
	ls := lending.New(lr, cfg.StorageTimeout)
	rs := ratingsvc.New(rr, cfg.StorageTimeout)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, Ratings: rs, Uploads: uploads, V: v, Log: log}
	borrowC := &borrowctrl.Controller{Svc: ls, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:   authC,
		Book:   bookC,
		Borrow: borrowC,
		User:   userC,

		JWTSecret: cfg.JWTSecret,
		UploadDir: uploads.Dir(),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)
	e.Logger.Fatal(e.Start(":" + port))
}
