package jobs

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/helpers/logger"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/services"
	"github.com/postpilot-hq/publish-engine/pkg/tools"
)

// ScheduleDailyRevalidation sets up a cron job that audits connection
// state and credential validity of every connected platform once a day.
func ScheduleDailyRevalidation(ctx context.Context, svc *services.DryRunService, log *logger.Logger) *cron.Cron {
	c := cron.New()
	_, _ = c.AddFunc("@daily", func() {
		tools.Dispatch(context.Background(), log, "connection_audit", func(ctx context.Context) error {
			return svc.AuditConnections(ctx)
		})
	})
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c
}
