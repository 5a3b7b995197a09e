package transfers

import (
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/gyarab/2025-wt-prj-dembinny/app/database"
	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/fund"
	"github.com/gyarab/2025-wt-prj-dembinny/app/services"
)

// RecordTransferBody is the payload for recording a single incoming transfer
// by hand. StudentID may be empty when the sender is unknown; the transfer is
// then flagged for review after reconciliation.
type RecordTransferBody struct {
	StudentID        *string `json:"student_id"`
	Amount           string  `json:"amount"`
	SenderName       string  `json:"sender_name"`
	StatementRef     string  `json:"statement_ref"`
	VariableSymbol   string  `json:"variable_symbol"`
	ReceivedAt       string  `json:"received_at"` // YYYY-MM-DD, defaults to today
	Note             string  `json:"note"`
	TargetRequestID  string  `json:"target_request_id"`
	AllowOverpayment bool    `json:"allow_overpayment"`
}

type AllocateCreditBody struct {
	RequestID string `json:"request_id"`
	Amount    string `json:"amount"`
}

type AssignStudentBody struct {
	StudentID string `json:"student_id"`
}

// reconcileError translates the reconciliation sentinels into HTTP statuses.
// Conflicts (already processed) are 409, business-rule rejections 422.
func reconcileError(err error) error {
	switch {
	case errors.Is(err, services.ErrTransferNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrStudentNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateTransfer):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrAmountMismatch),
		errors.Is(err, services.ErrRequestVoided),
		errors.Is(err, services.ErrNoCredit),
		errors.Is(err, services.ErrOrphanTransfer),
		errors.Is(err, services.ErrAlreadyMatched),
		errors.Is(err, services.ErrNotProcessed):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Reconciliation failed")
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

func TransfersPageHandler(c *fiber.Ctx, db *sql.DB) error {
	user := c.Locals("user").(*models.User)
	return c.Render("transfers/index", fiber.Map{
		"Title":       "Bank Transfers - Class Fund",
		"CurrentPage": "transfers",
		"user":        user,
	})
}

func GetTransfersAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	var list []*database.TransferWithDetails
	if c.Query("needs_review") == "true" {
		list, err = database.GetTransfersNeedingReview(db, class.ID)
	} else {
		list, err = database.GetClassTransfers(db, class.ID)
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch transfers")
	}

	return c.JSON(fiber.Map{"success": true, "data": list})
}

func GetTransferByIDAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if !fund.ValidID(id) {
		return fiber.NewError(fiber.StatusNotFound, "Transfer not found")
	}

	transfer, err := database.GetTransferByID(db, class.ID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Transfer not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch transfer")
	}

	return c.JSON(fiber.Map{"success": true, "data": transfer})
}

// RecordTransferAPI records one incoming transfer and immediately runs it
// through reconciliation.
func RecordTransferAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	var body RecordTransferBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "Amount must be a positive number")
	}

	receivedAt := time.Now()
	if body.ReceivedAt != "" {
		receivedAt, err = time.Parse("2006-01-02", body.ReceivedAt)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "received_at must be YYYY-MM-DD")
		}
	}

	if body.StatementRef != "" {
		exists, err := database.StatementRefExists(db, class.ID, body.StatementRef)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to check statement reference")
		}
		if exists {
			return fiber.NewError(fiber.StatusConflict, "A transfer with this statement reference already exists")
		}
	}

	if body.StudentID != nil {
		if !fund.ValidID(*body.StudentID) {
			return fiber.NewError(fiber.StatusBadRequest, "Student is not in your class")
		}
		student, err := database.GetStudentByID(db, *body.StudentID)
		if err != nil || student.ClassID != class.ID {
			return fiber.NewError(fiber.StatusBadRequest, "Student is not in your class")
		}
	}

	transfer := &models.BankTransfer{
		ClassID:        class.ID,
		StudentID:      body.StudentID,
		Amount:         amount,
		SenderName:     body.SenderName,
		StatementRef:   body.StatementRef,
		VariableSymbol: body.VariableSymbol,
		ReceivedAt:     receivedAt,
		Note:           body.Note,
	}
	if err := database.CreateTransfer(db, transfer); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to record transfer")
	}

	result, err := services.Reconcile(db, transfer.ID, services.ReconcileOptions{
		TargetRequestID:  body.TargetRequestID,
		AllowOverpayment: body.AllowOverpayment,
	})
	if err != nil {
		return reconcileError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"data":      transfer,
		"reconcile": result,
	})
}

// ReconcileTransferAPI re-runs reconciliation for a transfer recorded earlier
// without being processed. A second run on a processed transfer is a 409.
func ReconcileTransferAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if !fund.ValidID(id) {
		return fiber.NewError(fiber.StatusNotFound, "Transfer not found")
	}

	transfer, err := database.GetTransferByID(db, class.ID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Transfer not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch transfer")
	}

	// The body is optional; a present but malformed one is still a client error.
	var body RecordTransferBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	result, err := services.Reconcile(db, transfer.ID, services.ReconcileOptions{
		TargetRequestID:  body.TargetRequestID,
		AllowOverpayment: body.AllowOverpayment,
	})
	if err != nil {
		return reconcileError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// AllocateCreditAPI applies part of a transfer's unallocated credit to one of
// the matched student's open requests.
func AllocateCreditAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	var body AllocateCreditBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if body.RequestID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "request_id is required")
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "Amount must be a positive number")
	}

	id := c.Params("id")
	if !fund.ValidID(id) || !fund.ValidID(body.RequestID) {
		return fiber.NewError(fiber.StatusNotFound, "Transfer or request not found")
	}

	result, err := services.AllocateCredit(db, class.ID, id, body.RequestID, amount)
	if err != nil {
		return reconcileError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// AssignStudentAPI resolves an orphaned transfer by linking it to a student
// and allocating its credit against that student's open requests.
func AssignStudentAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	var body AssignStudentBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if !fund.ValidID(body.StudentID) {
		return fiber.NewError(fiber.StatusBadRequest, "student_id is required")
	}

	student, err := database.GetStudentByID(db, body.StudentID)
	if err != nil || student.ClassID != class.ID {
		return fiber.NewError(fiber.StatusBadRequest, "Student is not in your class")
	}

	id := c.Params("id")
	if !fund.ValidID(id) {
		return fiber.NewError(fiber.StatusNotFound, "Transfer not found")
	}

	result, err := services.AssignStudent(db, class.ID, id, body.StudentID)
	if err != nil {
		return reconcileError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// ImportStatementAPI ingests a CSV bank statement export. Rows already
// imported (same statement reference) are counted as duplicates and skipped.
func ImportStatementAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	file, err := c.FormFile("statement")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "statement file is required")
	}
	f, err := file.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to open uploaded file")
	}
	defer f.Close()

	statementRows, err := services.ParseStatement(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	summary, err := services.ImportStatement(db, class.ID, statementRows)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to import statement")
	}

	return c.JSON(fiber.Map{"success": true, "data": summary})
}
