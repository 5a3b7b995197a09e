package requests

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/gyarab/2025-wt-prj-dembinny/app/database"
	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/fund"
)

// CreateRequestBody is the payload for creating a payment request. Target is
// either the whole class or one student of it.
type CreateRequestBody struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Amount          string  `json:"amount"`
	DueDate         string  `json:"due_date"` // YYYY-MM-DD, optional
	TargetType      string  `json:"target_type"`
	TargetStudentID *string `json:"target_student_id"`
	VariableSymbol  string  `json:"variable_symbol"`
}

func treasurerClass(c *fiber.Ctx, db *sql.DB) (*models.SchoolClass, error) {
	user := c.Locals("user").(*models.User)
	class, _, err := fund.ResolveClass(db, user)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fiber.NewError(fiber.StatusForbidden, "No class assigned to this treasurer")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to resolve class")
	}
	return class, nil
}

func RequestsPageHandler(c *fiber.Ctx, db *sql.DB) error {
	user := c.Locals("user").(*models.User)
	return c.Render("requests/index", fiber.Map{
		"Title":       "Payment Requests - Class Fund",
		"CurrentPage": "requests",
		"user":        user,
	})
}

func GetRequestsAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	includeVoided := c.Query("include_voided") == "true"
	list, err := database.GetClassRequests(db, class.ID, includeVoided)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch requests")
	}

	return c.JSON(fiber.Map{"success": true, "data": list})
}

func GetRequestByIDAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if !fund.ValidID(id) {
		return fiber.NewError(fiber.StatusNotFound, "Request not found")
	}

	request, err := database.GetRequestByID(db, class.ID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Request not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch request")
	}

	return c.JSON(fiber.Map{"success": true, "data": request})
}

func CreateRequestAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	var body CreateRequestBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if body.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Title is required")
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "Amount must be a positive number")
	}

	target := models.RequestTarget(body.TargetType)
	if target == "" {
		target = models.TargetClass
	}
	switch target {
	case models.TargetClass:
		body.TargetStudentID = nil
	case models.TargetStudent:
		if body.TargetStudentID == nil || !fund.ValidID(*body.TargetStudentID) {
			return fiber.NewError(fiber.StatusBadRequest, "target_student_id is required for a single-student request")
		}
		// The target must be a student of this treasurer's class.
		student, err := database.GetStudentByID(db, *body.TargetStudentID)
		if err != nil || student.ClassID != class.ID {
			return fiber.NewError(fiber.StatusBadRequest, "Target student is not in your class")
		}
	default:
		return fiber.NewError(fiber.StatusBadRequest, "target_type must be 'class' or 'student'")
	}

	var dueDate *time.Time
	if body.DueDate != "" {
		d, err := time.Parse("2006-01-02", body.DueDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "due_date must be YYYY-MM-DD")
		}
		dueDate = &d
	}

	userID := c.Locals("user_id").(string)
	request := &models.PaymentRequest{
		ClassID:         class.ID,
		Title:           body.Title,
		Description:     body.Description,
		Amount:          amount,
		DueDate:         dueDate,
		TargetType:      target,
		TargetStudentID: body.TargetStudentID,
		VariableSymbol:  body.VariableSymbol,
		CreatedBy:       &userID,
	}
	if err := database.CreateRequest(db, request); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create request")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": request})
}

// VoidRequestAPI voids a request. Requests are never deleted so existing
// allocations stay explainable.
func VoidRequestAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if !fund.ValidID(id) {
		return fiber.NewError(fiber.StatusNotFound, "Request not found")
	}

	if err := database.VoidRequest(db, class.ID, id); err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Request not found or already voided")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to void request")
	}

	return c.JSON(fiber.Map{"success": true})
}
