package cli

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

const sentryFlushTimeout = 2 * time.Second

// initErrorReporting enables Sentry when a DSN is configured. It reports
// whether reporting is active.
func initErrorReporting(dsn string) bool {
	if dsn == "" {
		return false
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		log.Printf("[Sentry] Warning: failed to initialize: %v", err)
		return false
	}
	return true
}

// Execute runs the root command and forwards a failure to Sentry when
// reporting was enabled by the resolved configuration.
func Execute() error {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	err := cmd.Execute()
	if err != nil && opts.reporting {
		sentry.CaptureException(err)
	}
	if opts.reporting {
		sentry.Flush(sentryFlushTimeout)
	}
	return err
}
