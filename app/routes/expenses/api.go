package expenses

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/gyarab/2025-wt-prj-dembinny/app/database"
	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/fund"
)

// ExpenseBody is the create/update payload. SpentAt is YYYY-MM-DD and
// defaults to today on create.
type ExpenseBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	SpentAt     string `json:"spent_at"`
}

func resolveCaller(c *fiber.Ctx, db *sql.DB) (*models.User, *models.SchoolClass, error) {
	user := c.Locals("user").(*models.User)
	class, _, err := fund.ResolveClass(db, user)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fiber.NewError(fiber.StatusForbidden, "No class assigned to this account")
		}
		return nil, nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to resolve class")
	}
	return user, class, nil
}

func parseExpenseBody(c *fiber.Ctx) (*ExpenseBody, decimal.Decimal, models.ExpenseCategory, error) {
	var body ExpenseBody
	if err := c.BodyParser(&body); err != nil {
		return nil, decimal.Zero, "", fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if body.Title == "" {
		return nil, decimal.Zero, "", fiber.NewError(fiber.StatusBadRequest, "Title is required")
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, decimal.Zero, "", fiber.NewError(fiber.StatusBadRequest, "Amount must be a positive number")
	}

	category := models.ExpenseCategory(body.Category)
	if category == "" {
		category = models.ExpenseOther
	}
	if !category.Valid() {
		return nil, decimal.Zero, "", fiber.NewError(fiber.StatusBadRequest, "Unknown expense category")
	}
	return &body, amount, category, nil
}

func ExpensesPageHandler(c *fiber.Ctx, db *sql.DB) error {
	user := c.Locals("user").(*models.User)
	return c.Render("expenses/index", fiber.Map{
		"Title":       "Expenses - Class Fund",
		"CurrentPage": "expenses",
		"user":        user,
	})
}

// GetExpensesAPI lists the class expenses. Students only ever see published
// ones; the treasurer sees drafts too.
func GetExpensesAPI(c *fiber.Ctx, db *sql.DB) error {
	user, class, err := resolveCaller(c, db)
	if err != nil {
		return err
	}

	publishedOnly := !user.IsTreasurer
	list, err := database.GetClassExpenses(db, class.ID, publishedOnly, 0)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch expenses")
	}

	return c.JSON(fiber.Map{"success": true, "data": list})
}

func GetExpenseByIDAPI(c *fiber.Ctx, db *sql.DB) error {
	user, class, err := resolveCaller(c, db)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if !fund.ValidID(id) {
		return fiber.NewError(fiber.StatusNotFound, "Expense not found")
	}

	expense, err := database.GetExpenseByID(db, class.ID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Expense not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch expense")
	}
	if !user.IsTreasurer && !expense.IsPublished {
		return fiber.NewError(fiber.StatusNotFound, "Expense not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": expense})
}

func CreateExpenseAPI(c *fiber.Ctx, db *sql.DB) error {
	user, class, err := resolveCaller(c, db)
	if err != nil {
		return err
	}

	body, amount, category, err := parseExpenseBody(c)
	if err != nil {
		return err
	}

	spentAt := time.Now()
	if body.SpentAt != "" {
		spentAt, err = time.Parse("2006-01-02", body.SpentAt)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "spent_at must be YYYY-MM-DD")
		}
	}

	expense := &models.Expense{
		ClassID:     class.ID,
		Title:       body.Title,
		Description: body.Description,
		Amount:      amount,
		Category:    category,
		SpentAt:     spentAt,
		RecordedBy:  &user.ID,
	}
	if err := database.CreateExpense(db, expense); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create expense")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": expense})
}

func UpdateExpenseAPI(c *fiber.Ctx, db *sql.DB) error {
	_, class, err := resolveCaller(c, db)
	if err != nil {
		return err
	}

	body, amount, category, err := parseExpenseBody(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if !fund.ValidID(id) {
		return fiber.NewError(fiber.StatusNotFound, "Expense not found")
	}

	expense := &models.Expense{
		ID:          id,
		ClassID:     class.ID,
		Title:       body.Title,
		Description: body.Description,
		Amount:      amount,
		Category:    category,
	}
	if body.SpentAt != "" {
		expense.SpentAt, err = time.Parse("2006-01-02", body.SpentAt)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "spent_at must be YYYY-MM-DD")
		}
	}

	if err := database.UpdateExpense(db, expense); err != nil {
		return expenseWriteError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": expense})
}

// PublishExpenseAPI makes an expense visible to students. Published expenses
// count against the fund balance and can no longer be edited or deleted.
func PublishExpenseAPI(c *fiber.Ctx, db *sql.DB) error {
	_, class, err := resolveCaller(c, db)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if !fund.ValidID(id) {
		return fiber.NewError(fiber.StatusNotFound, "Expense not found")
	}

	if err := database.PublishExpense(db, class.ID, id); err != nil {
		return expenseWriteError(err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func DeleteExpenseAPI(c *fiber.Ctx, db *sql.DB) error {
	_, class, err := resolveCaller(c, db)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if !fund.ValidID(id) {
		return fiber.NewError(fiber.StatusNotFound, "Expense not found")
	}

	if err := database.DeleteExpense(db, class.ID, id); err != nil {
		return expenseWriteError(err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func expenseWriteError(err error) error {
	switch err {
	case sql.ErrNoRows:
		return fiber.NewError(fiber.StatusNotFound, "Expense not found")
	case database.ErrExpensePublished:
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Published expenses cannot be changed")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Failed to update expense")
}
