package students

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/gyarab/2025-wt-prj-dembinny/app/database"
	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
	"github.com/gyarab/2025-wt-prj-dembinny/app/routes/fund"
)

// CreateStudentBody enrolls a new student: a user account plus the class
// profile with the payer reference.
type CreateStudentBody struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	VariableSymbol string `json:"variable_symbol"`
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

func StudentsPageHandler(c *fiber.Ctx, db *sql.DB) error {
	user := c.Locals("user").(*models.User)
	return c.Render("students/index", fiber.Map{
		"Title":       "Students - Class Fund",
		"CurrentPage": "students",
		"user":        user,
	})
}

func GetStudentsAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	roster, err := database.GetClassStudents(db, class.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch students")
	}

	return c.JSON(fiber.Map{"success": true, "data": roster})
}

func CreateStudentAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	var body CreateStudentBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if body.Email == "" || body.Password == "" || body.FirstName == "" || body.LastName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Email, password and name are required")
	}
	if body.VariableSymbol == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Variable symbol is required")
	}
	if len(body.Password) < 8 {
		return fiber.NewError(fiber.StatusBadRequest, "Password must be at least 8 characters")
	}

	if _, err := database.GetUserByEmail(db, body.Email); err == nil {
		return fiber.NewError(fiber.StatusConflict, "A user with this email already exists")
	}
	if _, err := database.GetStudentByVariableSymbol(db, class.ID, body.VariableSymbol); err == nil {
		return fiber.NewError(fiber.StatusConflict, "This variable symbol is already assigned")
	}

	user := &models.User{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	}
	profile := &models.StudentProfile{
		ClassID:        class.ID,
		VariableSymbol: body.VariableSymbol,
	}
	if err := database.CreateStudent(db, user, profile); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create student")
	}
	profile.User = user

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": profile})
}

// DeactivateStudentAPI removes a student from the active roster. The profile
// and its payment history stay; class-wide requests stop counting them.
func DeactivateStudentAPI(c *fiber.Ctx, db *sql.DB) error {
	class, err := treasurerClass(c, db)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if !fund.ValidID(id) {
		return fiber.NewError(fiber.StatusNotFound, "Student not found")
	}

	student, err := database.GetStudentByID(db, id)
	if err != nil || student.ClassID != class.ID {
		return fiber.NewError(fiber.StatusNotFound, "Student not found")
	}

	if err := database.DeactivateStudent(db, student.ID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to deactivate student")
	}

	return c.JSON(fiber.Map{"success": true})
}
