package expenses

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/auth"
	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/fund"
)

func SetupExpensesRoutes(app *fiber.App, db *sql.DB) {
	// Web Routes
	web := app.Group("/expenses")
	web.Use(auth.AuthMiddleware)
	web.Use(fund.Middleware(db))
	web.Get("/", func(c *fiber.Ctx) error {
		return ExpensesPageHandler(c, db)
	})

	// API Routes - reads are open to students, writes are treasurer only
	api := app.Group("/api/expenses")
	api.Use(auth.AuthMiddleware)
	api.Get("/", func(c *fiber.Ctx) error {
		return GetExpensesAPI(c, db)
	})
	api.Get("/:id", func(c *fiber.Ctx) error {
		return GetExpenseByIDAPI(c, db)
	})

	api.Post("/", auth.TreasurerMiddleware, func(c *fiber.Ctx) error {
		return CreateExpenseAPI(c, db)
	})
	api.Put("/:id", auth.TreasurerMiddleware, func(c *fiber.Ctx) error {
		return UpdateExpenseAPI(c, db)
	})
	api.Post("/:id/publish", auth.TreasurerMiddleware, func(c *fiber.Ctx) error {
		return PublishExpenseAPI(c, db)
	})
	api.Delete("/:id", auth.TreasurerMiddleware, func(c *fiber.Ctx) error {
		return DeleteExpenseAPI(c, db)
	})
}
