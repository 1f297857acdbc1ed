package yahoo

import (
	"time"

	applogger "Halcon/pkg/logger"
	"Halcon/pkg/retry"
)

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds the Yahoo adapter settings.
type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	Retry             retry.Policy
	RequestsPerSecond float64
	Burst             int
	Logger            *applogger.Logger
}

// WithBaseURL sets the quoteSummary host.
func WithBaseURL(url string) ClientOption {
	return func(c *ClientConfig) { c.BaseURL = url }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) { c.Timeout = d }
}

// WithRetry sets the attempt count and the pause between attempts.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *ClientConfig) { c.Retry = retry.Policy{Attempts: attempts, Delay: delay} }
}

// WithRateLimit spaces upstream calls with a token bucket.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *ClientConfig) {
		c.RequestsPerSecond = rps
		c.Burst = burst
	}
}

func WithLogger(l *applogger.Logger) ClientOption {
	return func(c *ClientConfig) { c.Logger = l }
}
