// Command main runs the database seeder for TerraScore.
package main

import (
	"flag"
	"log"

	"terrascore/internal/bootstrap"
	"terrascore/internal/config"
	"terrascore/internal/seed"
)

func main() {
	// Parse command line flags
	numPending := flag.Int("pending", 20, "Number of pending registration requests to create")
	numDecided := flag.Int("decided", 10, "Number of already-reviewed registration requests to create")
	demo := flag.Bool("demo", false, "Also generate randomized demo registration requests")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect and seed the built-in questionnaire library
	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedQuestionnaires: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	if *demo {
		if err := seed.Demo(db, *numPending, *numDecided); err != nil {
			log.Fatalf("Demo seeding failed: %v", err)
		}
		log.Println("All demo accounts use the password: demo-password")
	}

	log.Println("Done.")
}
