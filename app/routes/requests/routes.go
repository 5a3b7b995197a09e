package requests

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/auth"
	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/fund"
)

func SetupRequestsRoutes(app *fiber.App, db *sql.DB) {
	// Web Routes
	web := app.Group("/requests")
	web.Use(auth.AuthMiddleware)
	web.Use(auth.TreasurerMiddleware)
	web.Use(fund.Middleware(db))
	web.Get("/", func(c *fiber.Ctx) error {
		return RequestsPageHandler(c, db)
	})

	// API Routes
	api := app.Group("/api/requests")
	api.Use(auth.AuthMiddleware)
	api.Use(auth.TreasurerMiddleware)
	api.Get("/", func(c *fiber.Ctx) error {
		return GetRequestsAPI(c, db)
	})
	api.Post("/", func(c *fiber.Ctx) error {
		return CreateRequestAPI(c, db)
	})
	api.Get("/:id", func(c *fiber.Ctx) error {
		return GetRequestByIDAPI(c, db)
	})
	api.Delete("/:id", func(c *fiber.Ctx) error {
		return VoidRequestAPI(c, db)
	})
}
