package fund

import (
	"database/sql"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/gyarab/2025-wt-prj-dembinny/app/database"
	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
	"github.com/gyarab/2025-wt-prj-dembinny/app/services"
)

// ValidID reports whether a path parameter is a well-formed UUID. Handlers
// check this before querying so malformed IDs become a 404 instead of a
// Postgres cast error.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

// ResolveClass returns the class the authenticated user belongs to: the
// managed class for a treasurer, the enrolled class (with profile) for a
// student. Every finance handler scopes its queries through this.
func ResolveClass(db *sql.DB, user *models.User) (*models.SchoolClass, *models.StudentProfile, error) {
	if user.IsTreasurer {
		class, err := database.GetTreasurerClass(db, user.ID)
		if err != nil {
			return nil, nil, err
		}
		return class, nil, nil
	}

	profile, err := database.GetStudentByUserID(db, user.ID)
	if err != nil {
		return nil, nil, err
	}
	class, err := database.GetClassByID(db, profile.ClassID)
	if err != nil {
		return nil, nil, err
	}
	return class, profile, nil
}

// Middleware injects the fund totals into the template context of every
// rendered page. The summary is recomputed from the ledger on each request;
// there is no cached running total.
func Middleware(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok {
			return c.Next()
		}

		class, _, err := ResolveClass(db, user)
		if err != nil {
			if err != sql.ErrNoRows {
				log.Printf("Failed to resolve class for %s: %v", user.Email, err)
			}
			return c.Next()
		}
		c.Locals("ClassName", class.Name)
		c.Locals("class_id", class.ID)

		summary, err := services.ComputeBalance(db, class.ID)
		if err != nil {
			log.Printf("Failed to compute fund balance: %v", err)
			return c.Next()
		}

		// The visibility preference lives in the database, not the JWT, so
		// toggling it takes effect without a new login.
		showBalance := true
		if full, err := database.GetUserByID(db, user.ID); err == nil {
			showBalance = !full.HideFundBalance
		}

		c.Locals("FundCollected", summary.Collected.StringFixed(2))
		c.Locals("FundSpent", summary.Spent.StringFixed(2))
		c.Locals("FundBalance", summary.Balance.StringFixed(2))
		c.Locals("ShowFundBalance", showBalance)

		return c.Next()
	}
}
