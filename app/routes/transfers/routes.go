package transfers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/auth"
	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/fund"
)

func SetupTransfersRoutes(app *fiber.App, db *sql.DB) {
	// Web Routes
	web := app.Group("/transfers")
	web.Use(auth.AuthMiddleware)
	web.Use(auth.TreasurerMiddleware)
	web.Use(fund.Middleware(db))
	web.Get("/", func(c *fiber.Ctx) error {
		return TransfersPageHandler(c, db)
	})

	// API Routes
	api := app.Group("/api/transfers")
	api.Use(auth.AuthMiddleware)
	api.Use(auth.TreasurerMiddleware)
	api.Get("/", func(c *fiber.Ctx) error {
		return GetTransfersAPI(c, db)
	})
	api.Post("/", func(c *fiber.Ctx) error {
		return RecordTransferAPI(c, db)
	})
	api.Post("/import", func(c *fiber.Ctx) error {
		return ImportStatementAPI(c, db)
	})
	api.Get("/:id", func(c *fiber.Ctx) error {
		return GetTransferByIDAPI(c, db)
	})
	api.Post("/:id/reconcile", func(c *fiber.Ctx) error {
		return ReconcileTransferAPI(c, db)
	})
	api.Post("/:id/allocate", func(c *fiber.Ctx) error {
		return AllocateCreditAPI(c, db)
	})
	api.Post("/:id/assign-student", func(c *fiber.Ctx) error {
		return AssignStudentAPI(c, db)
	})
}
