package settings

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/auth"
	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/fund"
)

func SetupSettingsRoutes(app *fiber.App, db *sql.DB) {
	// Web Routes
	web := app.Group("/payment-info")
	web.Use(auth.AuthMiddleware)
	web.Use(fund.Middleware(db))
	web.Get("/", func(c *fiber.Ctx) error {
		return PaymentInfoPageHandler(c, db)
	})

	// API Routes - the account is readable by the whole class, writable by
	// the treasurer
	api := app.Group("/api/bank-account")
	api.Use(auth.AuthMiddleware)
	api.Get("/", func(c *fiber.Ctx) error {
		return GetBankAccountAPI(c, db)
	})
	api.Put("/", auth.TreasurerMiddleware, func(c *fiber.Ctx) error {
		return SetBankAccountAPI(c, db)
	})
}
