package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"roster-lab/domain/roster"
	"roster-lab/projection"
	"roster-lab/repositories"
	"roster-lab/runtime"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
)

// seed fills a store with profiles and rosters to play with, one of them
// carrying the duplicate members and wrong counter of an old writer.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	flag.Parse()

	if err := seed(*dbPath); err != nil {
		color.Red.Printf("Seed failed: %v\n", err)
		os.Exit(1)
	}
	color.Green.Println("Done, inspect the store with tools/roster_inspect")
}

func seed(path string) error {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	log := slog.Default()
	// Seeding only fills the store, the service rebuilds its index at start
	writer, err := projection.OpenWriter("")
	if err != nil {
		return err
	}
	defer writer.Close()

	engine := runtime.NewEngine(log, db, writer, runtime.Options{
		EventBufferSize: 64,
		MaxTxAttempts:   8,
		TxRetryDelay:    5 * time.Millisecond,
	})

	profiles := map[string]repositories.ProfileRecord{
		"ana":   {"displayName": "Ana", "email": "ana@example.com", "phone": "600111222"},
		"bruno": {"nombre": "Bruno", "correo": "bruno@example.com", "telefono": 600333444},
		"chloe": {"fullName": "Chloé", "mail": "chloe@example.com"},
		"dario": {"email": "dario@example.com"},
	}
	for id, record := range profiles {
		if err = engine.Profiles.PutProfile(ctx, id, record); err != nil {
			return err
		}
	}
	color.Cyan.Printf("%d profiles written\n", len(profiles))

	team, err := engine.CreateRoster(ctx, roster.CreateRosterCommand{
		ID: "tigers", Kind: roster.KindTeam, Name: "Tigers", Sport: "futbol", OwnerID: "ana", Capacity: 8,
	})
	if err != nil {
		return err
	}
	if err = engine.Join(ctx, roster.JoinCommand{RosterID: team.ID, CallerID: "ana", CandidateIDs: []string{"bruno", "chloe"}}); err != nil {
		return err
	}

	match, err := engine.CreateRoster(ctx, roster.CreateRosterCommand{
		ID: "sunday-5v5", Kind: roster.KindMatch, Name: "Sunday 5v5", Sport: "futbol", OwnerID: "dario", OperatorID: "venue-1", Capacity: 10,
	})
	if err != nil {
		return err
	}
	if err = engine.JoinTeamIntoMatch(ctx, match.ID, team.ID, "ana", "Ana"); err != nil {
		return err
	}
	color.Cyan.Println("team and match created")

	legacy := roster.New("legacy", roster.KindMatch, "Legacy match", "ana", "", 6, time.Now().UTC())
	legacy.Members = []string{"ana", "bruno", "bruno", "chloe"}
	legacy.MemberCount = 5
	if err = engine.Rosters.Create(ctx, legacy); err != nil {
		return err
	}
	color.Yellow.Println("legacy roster written with drift, next read or reconcile pass repairs it")
	return nil
}
