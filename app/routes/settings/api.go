package settings

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/gyarab/2025-wt-prj-dembinny/app/database"
	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/fund"
)

type BankAccountBody struct {
	OwnerName     string `json:"owner_name"`
	AccountNumber string `json:"account_number"`
	IBAN          string `json:"iban"`
	BankName      string `json:"bank_name"`
	Note          string `json:"note"`
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

// PaymentInfoPageHandler shows the class account details a student needs to
// send money: account number, IBAN and their own variable symbol.
func PaymentInfoPageHandler(c *fiber.Ctx, db *sql.DB) error {
	user := c.Locals("user").(*models.User)
	class, profile, err := fund.ResolveClass(db, user)
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusForbidden, "No class assigned to this account")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to resolve class")
	}

	account, err := database.GetClassBankAccount(db, class.ID)
	if err != nil && err != sql.ErrNoRows {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch bank account")
	}

	data := fiber.Map{
		"Title":       "Payment Info - Class Fund",
		"CurrentPage": "payment-info",
		"user":        user,
		"Account":     account,
	}
	if profile != nil {
		data["VariableSymbol"] = profile.VariableSymbol
	}
	return c.Render("settings/payment_info", data)
}

func GetBankAccountAPI(c *fiber.Ctx, db *sql.DB) error {
	_, class, err := resolveCaller(c, db)
	if err != nil {
		return err
	}

	account, err := database.GetClassBankAccount(db, class.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "No bank account configured for this class")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch bank account")
	}

	return c.JSON(fiber.Map{"success": true, "data": account})
}

// SetBankAccountAPI creates or replaces the class bank account details. Each
// class keeps a single active account row.
func SetBankAccountAPI(c *fiber.Ctx, db *sql.DB) error {
	_, class, err := resolveCaller(c, db)
	if err != nil {
		return err
	}

	var body BankAccountBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if body.OwnerName == "" || body.AccountNumber == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Owner name and account number are required")
	}

	account := &models.BankAccount{
		ClassID:       class.ID,
		OwnerName:     body.OwnerName,
		AccountNumber: body.AccountNumber,
		IBAN:          body.IBAN,
		BankName:      body.BankName,
		Note:          body.Note,
	}
	if err := database.UpsertBankAccount(db, account); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save bank account")
	}

	return c.JSON(fiber.Map{"success": true, "data": account})
}
