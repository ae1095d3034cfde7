// Command admin runs maintenance tasks against the development relay's
// database.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"nexthire/chat/internal/config"
	"nexthire/chat/internal/models"
	"nexthire/chat/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [args]

Commands:
  migrate                              create or update the relay tables
  profile <user_id> <role> [name]      record a participant profile
  applicants <recruiter_id>            list the candidates a recruiter talks to
  history <room_id>                    print the messages of a room`

func main() {
	cfg, err := config.Load(os.Getenv("NEXTHIRE_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Relay.PostgresDSN == "" {
		log.Fatal("NEXTHIRE_RELAY_POSTGRES_DSN is not set")
	}
	db, err := gorm.Open(postgres.Open(cfg.Relay.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	command := os.Args[1]

	switch command {
	case "migrate":
		if err := storageSvc.Migrate(); err != nil {
			log.Fatalf("Error running migrations: %v", err)
		}
		fmt.Println("Migrations complete.")
	case "profile":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin profile <user_id> <role> [name]")
			os.Exit(1)
		}
		role, err := models.ParseRole(os.Args[3])
		if err != nil {
			fmt.Println("Invalid role. Use candidate or recruiter.")
			os.Exit(1)
		}
		p := &models.Profile{ID: os.Args[2], Role: string(role)}
		if len(os.Args) > 4 {
			p.Name = os.Args[4]
		}
		if err := storageSvc.SaveProfile(ctx, p); err != nil {
			log.Fatalf("Error saving profile: %v", err)
		}
		fmt.Printf("Profile %s saved as %s.\n", p.ID, role)
	case "applicants":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin applicants <recruiter_id>")
			os.Exit(1)
		}
		if err := listApplicants(ctx, storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error listing applicants: %v", err)
		}
	case "history":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin history <room_id>")
			os.Exit(1)
		}
		if err := printHistory(ctx, storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error reading history: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

func listApplicants(ctx context.Context, s storage.Storage, recruiterID string) error {
	applicants, err := s.GetApplicants(ctx, recruiterID)
	if err != nil {
		return err
	}
	for _, a := range applicants {
		fmt.Printf("%s\t%s\n", a.ID, a.DisplayName())
	}
	fmt.Printf("%d applicant(s)\n", len(applicants))
	return nil
}

func printHistory(ctx context.Context, s storage.Storage, roomID string) error {
	rows, err := s.GetChatHistory(ctx, roomID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		m := row.Wire().Canonical()
		fmt.Printf("%s\t%s\t%s\t%s%s%s\n", m.Timestamp.Format(time.RFC3339), m.SenderID, m.SenderRole, m.Text, m.FileURL, m.GIF)
	}
	return nil
}
