package config

import (
	"fmt"
	"strings"
)

// Validate checks invariants that cleanenv tags cannot express.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port out of range: %d", c.Server.Port))
	}
	if c.Database.MaxConns < c.Database.MinConns {
		problems = append(problems, "database.max_conns must be >= database.min_conns")
	}
	if c.Cache.RecomputeTimeout <= 0 {
		problems = append(problems, "cache.recompute_timeout must be positive")
	}
	if c.Notify.QueueSize <= 0 {
		problems = append(problems, "notify.queue_size must be positive")
	}
	if c.Notify.MailRetries < 0 {
		problems = append(problems, "notify.mail_retries must not be negative")
	}
	if len(c.Notify.SignificantStates) == 0 {
		problems = append(problems, "notify.significant_states must not be empty")
	}
	if c.Notify.CatchUpInterval <= 0 {
		problems = append(problems, "notify.catch_up_interval must be positive")
	}
	if c.Notify.CatchUpBatch <= 0 {
		problems = append(problems, "notify.catch_up_batch must be positive")
	}
	if c.Feed.MaxItems <= 0 {
		problems = append(problems, "feed.max_items must be positive")
	}
	if c.Feed.Lookback <= 0 {
		problems = append(problems, "feed.lookback must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}
