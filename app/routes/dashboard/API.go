package dashboard

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/gyarab/2025-wt-prj-dembinny/app/database"
	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/fund"
	"github.com/gyarab/2025-wt-prj-dembinny/app/services"
)

// StudentDashboard is everything a student's overview page shows.
type StudentDashboard struct {
	Requests       []*database.StudentRequestStatus `json:"requests"`
	MyTransfers    []*database.TransferWithDetails  `json:"my_transfers"`
	RecentExpenses []*models.Expense                `json:"recent_expenses"`
	TotalOwed      decimal.Decimal                  `json:"total_owed"`
	TotalPaid      decimal.Decimal                  `json:"total_paid"`
}

// TreasurerDashboard is the treasurer's overview: per-request progress,
// per-student summary and the review queue of unmatched credits.
type TreasurerDashboard struct {
	Requests       []*database.RequestWithStatus   `json:"requests"`
	StudentRows    []*database.TreasurerStudentRow `json:"student_rows"`
	ReviewQueue    []*database.TransferWithDetails `json:"review_queue"`
	RecentExpenses []*models.Expense               `json:"recent_expenses"`
	Fund           services.FundSummary            `json:"fund"`
}

func buildStudentDashboard(db *sql.DB, classID string, profile *models.StudentProfile) (*StudentDashboard, error) {
	requests, err := database.GetStudentRequests(db, classID, profile.ID)
	if err != nil {
		return nil, err
	}

	transfers, err := database.GetStudentTransfers(db, profile.ID, 5)
	if err != nil {
		return nil, err
	}

	expenses, err := database.GetClassExpenses(db, classID, true, 5)
	if err != nil {
		return nil, err
	}

	d := &StudentDashboard{
		Requests:       requests,
		MyTransfers:    transfers,
		RecentExpenses: expenses,
		TotalOwed:      decimal.Zero,
		TotalPaid:      decimal.Zero,
	}
	for _, r := range requests {
		d.TotalOwed = d.TotalOwed.Add(r.Outstanding)
	}
	for _, t := range transfers {
		d.TotalPaid = d.TotalPaid.Add(t.Amount)
	}
	return d, nil
}

func buildTreasurerDashboard(db *sql.DB, classID string) (*TreasurerDashboard, error) {
	requests, err := database.GetClassRequests(db, classID, false)
	if err != nil {
		return nil, err
	}

	studentRows, err := database.GetTreasurerStudentRows(db, classID)
	if err != nil {
		return nil, err
	}

	reviewQueue, err := database.GetTransfersNeedingReview(db, classID)
	if err != nil {
		return nil, err
	}

	expenses, err := database.GetClassExpenses(db, classID, false, 8)
	if err != nil {
		return nil, err
	}

	summary, err := services.ComputeBalance(db, classID)
	if err != nil {
		return nil, err
	}

	return &TreasurerDashboard{
		Requests:       requests,
		StudentRows:    studentRows,
		ReviewQueue:    reviewQueue,
		RecentExpenses: expenses,
		Fund:           summary,
	}, nil
}

func DashboardPageHandler(c *fiber.Ctx, db *sql.DB) error {
	user := c.Locals("user").(*models.User)

	class, profile, err := fund.ResolveClass(db, user)
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusForbidden, "No class assigned to this account yet")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to resolve class")
	}

	if user.IsTreasurer {
		data, err := buildTreasurerDashboard(db, class.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load dashboard")
		}
		return c.Render("dashboard/treasurer", fiber.Map{
			"Title":       "Treasurer Dashboard - Class Fund",
			"CurrentPage": "dashboard",
			"user":        user,
			"Class":       class,
			"Data":        data,
		})
	}

	data, err := buildStudentDashboard(db, class.ID, profile)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load dashboard")
	}
	return c.Render("dashboard/index", fiber.Map{
		"Title":       "Dashboard - Class Fund",
		"CurrentPage": "dashboard",
		"user":        user,
		"Class":       class,
		"Data":        data,
	})
}

func GetDashboardAPI(c *fiber.Ctx, db *sql.DB) error {
	user := c.Locals("user").(*models.User)

	class, profile, err := fund.ResolveClass(db, user)
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "No class assigned")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to resolve class")
	}

	if user.IsTreasurer {
		data, err := buildTreasurerDashboard(db, class.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load dashboard")
		}
		return c.JSON(fiber.Map{"success": true, "data": data})
	}

	data, err := buildStudentDashboard(db, class.ID, profile)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load dashboard")
	}
	return c.JSON(fiber.Map{"success": true, "data": data})
}

// GetBalanceAPI exposes the on-demand fund summary for the caller's class.
func GetBalanceAPI(c *fiber.Ctx, db *sql.DB) error {
	user := c.Locals("user").(*models.User)

	class, _, err := fund.ResolveClass(db, user)
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "No class assigned")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to resolve class")
	}

	summary, err := services.ComputeBalance(db, class.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to compute balance")
	}
	return c.JSON(fiber.Map{"success": true, "data": summary})
}
