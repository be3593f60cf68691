package leadnotify

import (
	"fmt"
	netmail "net/mail"
	"time"
	_ "time/tzdata"

	"harvin-platform/internal/common/config"
	"harvin-platform/internal/mail"
)

const workerName = "lead-notify"

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	From          netmail.Address
	AdminEmail    string
	Location      *time.Location
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		From:          netmail.Address{Name: "HarvinAI"},
		Location:      indiaStandardTime(),
	}
}

// ConfigFromApp derives the dispatcher settings from the application config.
// The admin recipient falls back to the sender address.
func ConfigFromApp(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.From = mail.Sender(cfg)
	c.AdminEmail = cfg.Mail.AdminEmail
	if c.AdminEmail == "" {
		c.AdminEmail = c.From.Address
	}

	wc := config.GetWorkerConfig(cfg, workerName)
	c.Enabled = wc.Enabled
	if wc.MaxJobsActive > 0 {
		c.MaxJobsActive = wc.MaxJobsActive
	}
	if wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.Location == nil {
		return fmt.Errorf("location is required")
	}
	return nil
}

func indiaStandardTime() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}
