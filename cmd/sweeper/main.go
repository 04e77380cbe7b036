// Command sweeper deletes expired and inactive guest accounts together with
// everything they own. Run with -once for an operator-triggered sweep, or
// without flags to keep a nightly cron schedule running.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/solarplan/rooftop-backend/config"
	"github.com/solarplan/rooftop-backend/internal/bootstrap"
	"github.com/solarplan/rooftop-backend/internal/users"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	schedule := flag.String("schedule", "0 0 0 * * *", "cron schedule for recurring sweeps")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := bootstrap.OpenDB(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	repo := users.NewRepo(db)

	sweep := func() {
		sctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		count, err := repo.SweepGuests(sctx, time.Now(), cfg.Guests.InactivityDays)
		if err != nil {
			log.Printf("sweep failed: %v", err)
			return
		}
		log.Printf("successfully deleted %d expired guest users", count)
	}

	if *once {
		sweep()
		return
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(*schedule, sweep); err != nil {
		log.Fatalf("cron schedule: %v", err)
	}

	log.Printf("guest sweeper started (schedule %q)", *schedule)
	c.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	<-c.Stop().Done()
}
