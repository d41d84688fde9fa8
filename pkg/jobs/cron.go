package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cartbridge/partnerhub/pkg/analytics"
	"github.com/cartbridge/partnerhub/pkg/nudge"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron      *cron.Cron
	nudges    *nudge.Service
	analytics *analytics.Service
	staleDays int
	logger    *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(nudges *nudge.Service, analyticsSvc *analytics.Service, staleDays int, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:      cron.New(),
		nudges:    nudges,
		analytics: analyticsSvc,
		staleDays: staleDays,
		logger:    logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	// Daily at 7 AM: nudge partners about deals that stopped moving
	_, err := cm.cron.AddFunc("0 7 * * *", func() {
		cm.logger.Println("🕐 Running stale deal sweep...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		created, err := cm.nudges.SweepStaleDeals(ctx, cm.staleDays)
		if err != nil {
			cm.logger.Printf("❌ Stale deal sweep failed: %v", err)
			return
		}

		if created == 0 {
			cm.logger.Println("✅ No stale deals found")
			return
		}

		cm.logger.Printf("✅ Stale deal sweep created %d nudges", created)
	})

	if err != nil {
		return err
	}

	// Daily at 5 AM: warm the admin dashboard cache before the day starts
	_, err = cm.cron.AddFunc("0 5 * * *", func() {
		cm.logger.Println("🕐 Warming analytics dashboard cache...")

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := cm.analytics.WarmDashboardCache(ctx); err != nil {
			cm.logger.Printf("❌ Failed to warm dashboard cache: %v", err)
			return
		}

		cm.logger.Println("✅ Dashboard cache warmed")
	})

	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Printf("  - Daily at 7 AM: Stale deal sweep (idle > %d days)", cm.staleDays)
	cm.logger.Println("  - Daily at 5 AM: Warm analytics dashboard cache")

	return nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	cm.cron.Stop()
}
