// Command main runs the database seeder for friendnet.
package main

import (
	"flag"
	"log"

	"friendnet/internal/config"
	"friendnet/internal/database"
	"friendnet/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Printf("seeding %d users, clean=%v", *numUsers, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, *numUsers, *shouldClean); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("done; all seeded accounts use the password %q", seed.DefaultPassword)
}
