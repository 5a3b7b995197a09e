package main

import (
	"log"

	"github.com/gyarab/2025-wt-prj-dembinny/app/config"
	"github.com/gyarab/2025-wt-prj-dembinny/app/database"
)

func main() {
	log.Println("Running database migrations...")

	config.InitDB()
	db := config.GetDB()
	if db == nil {
		log.Fatal("Failed to get database instance")
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Migration failed: ", err)
	}

	log.Println("Migrations completed successfully!")
}
