package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// reloadSpec picks the cron spec for repeated loads. An explicit schedule
// wins over interval; an empty result means load once.
func reloadSpec(schedule string, interval time.Duration) string {
	if s := strings.TrimSpace(schedule); s != "" {
		return s
	}
	if interval > 0 {
		return "@every " + interval.String()
	}
	return ""
}

// runScheduled runs job once, then on every firing of spec until ctx is done.
// A firing is skipped while the previous run is still in progress.
func runScheduled(ctx context.Context, spec, timezone string, job func(context.Context)) error {
	location := time.UTC
	if timezone != "" {
		tz, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
		location = tz
	}

	c := cron.New(
		cron.WithLocation(location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	job(ctx)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
