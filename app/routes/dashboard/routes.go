package dashboard

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/auth"
	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/fund"
)

func SetupDashboardRoutes(app *fiber.App, db *sql.DB) {
	web := app.Group("/dashboard")
	web.Use(auth.AuthMiddleware)
	web.Use(fund.Middleware(db))
	web.Get("/", func(c *fiber.Ctx) error {
		return DashboardPageHandler(c, db)
	})

	api := app.Group("/api/dashboard")
	api.Use(auth.AuthMiddleware)
	api.Get("/", func(c *fiber.Ctx) error {
		return GetDashboardAPI(c, db)
	})

	app.Get("/api/balance", auth.AuthMiddleware, func(c *fiber.Ctx) error {
		return GetBalanceAPI(c, db)
	})
}
