package students

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/auth"
	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/fund"
)

func SetupStudentsRoutes(app *fiber.App, db *sql.DB) {
	// Web Routes
	web := app.Group("/students")
	web.Use(auth.AuthMiddleware)
	web.Use(auth.TreasurerMiddleware)
	web.Use(fund.Middleware(db))
	web.Get("/", func(c *fiber.Ctx) error {
		return StudentsPageHandler(c, db)
	})

	// API Routes
	api := app.Group("/api/students")
	api.Use(auth.AuthMiddleware)
	api.Use(auth.TreasurerMiddleware)
	api.Get("/", func(c *fiber.Ctx) error {
		return GetStudentsAPI(c, db)
	})
	api.Post("/", func(c *fiber.Ctx) error {
		return CreateStudentAPI(c, db)
	})
	api.Delete("/:id", func(c *fiber.Ctx) error {
		return DeactivateStudentAPI(c, db)
	})
}
