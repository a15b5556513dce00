// Package maintenance runs periodic SQLite housekeeping on its own connection.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/microblog/internal/database"
)

const runTimeout = 5 * time.Minute

// Scheduler runs PRAGMA optimize on a cron schedule
type Scheduler struct {
	connector *database.Connector
	cron      *cron.Cron
	schedule  string
}

// New creates a scheduler for the given cron expression (standard five-field
// syntax or descriptors such as "@daily").
func New(connector *database.Connector, schedule string) (*Scheduler, error) {
	s := &Scheduler{
		connector: connector,
		cron:      cron.New(),
		schedule:  schedule,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start starts the scheduler in the background
func (s *Scheduler) Start() {
	log.Info().Str("schedule", s.schedule).Msg("Database maintenance scheduled")
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := time.Now()
	if err := RunOnce(ctx, s.connector, false); err != nil {
		log.Error().Err(err).Msg("Database maintenance failed")
		return
	}
	log.Info().Dur("duration", time.Since(start)).Msg("Database maintenance complete")
}

// RunOnce opens a connection, optimizes the database and optionally vacuums it
func RunOnce(ctx context.Context, connector *database.Connector, vacuum bool) error {
	conn, err := connector.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close maintenance connection")
		}
	}()

	if err := conn.Optimize(ctx); err != nil {
		return err
	}
	if vacuum {
		return conn.Vacuum(ctx)
	}
	return nil
}
