package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gyarab/2025-wt-prj-dembinny/app/config"
	"github.com/gyarab/2025-wt-prj-dembinny/app/database"
	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
)

// Seeds a class with its treasurer account, or adds a student to an existing
// class. Run with -class and -email at minimum.
func main() {
	className := flag.String("class", "", "class name, e.g. 4.A")
	email := flag.String("email", "", "account email")
	password := flag.String("password", "changeme123", "account password")
	firstName := flag.String("first", "", "first name")
	lastName := flag.String("last", "", "last name")
	student := flag.Bool("student", false, "create a student instead of a treasurer")
	symbol := flag.String("symbol", "", "variable symbol (students only)")
	flag.Parse()

	if *className == "" || *email == "" {
		flag.Usage()
		os.Exit(1)
	}

	config.InitDB()
	db := config.GetDB()
	if db == nil {
		fmt.Println("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	if *student {
		class, err := database.GetClassByName(db, *className)
		if err != nil {
			fmt.Printf("Class %q not found: %v\n", *className, err)
			os.Exit(1)
		}
		if *symbol == "" {
			fmt.Println("Students need a -symbol (variable symbol)")
			os.Exit(1)
		}

		user := &models.User{
			Email:     *email,
			Password:  *password,
			FirstName: *firstName,
			LastName:  *lastName,
		}
		profile := &models.StudentProfile{
			ClassID:        class.ID,
			VariableSymbol: *symbol,
		}
		if err := database.CreateStudent(db, user, profile); err != nil {
			fmt.Printf("Error creating student: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Student created: %s %s (%s), symbol %s\n", user.FirstName, user.LastName, user.Email, *symbol)
		return
	}

	user := &models.User{
		Email:       *email,
		Password:    *password,
		FirstName:   *firstName,
		LastName:    *lastName,
		IsTreasurer: true,
	}
	if err := database.CreateUser(db, user); err != nil {
		fmt.Printf("Error creating treasurer: %v\n", err)
		os.Exit(1)
	}

	class, err := database.GetClassByName(db, *className)
	if err != nil {
		class = &models.SchoolClass{Name: *className, TreasurerID: &user.ID}
		if err := database.CreateClass(db, class); err != nil {
			fmt.Printf("Error creating class: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Treasurer created: %s %s (%s) for class %s\n", user.FirstName, user.LastName, user.Email, class.Name)
}
