package runtime

import "log"

// Logger is the minimal logging surface the client needs. The stdlib
// log package satisfies it.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Config contains client configuration.
type Config struct {
	// Executor is the execution collaborator statements are routed to.
	Executor Executor

	// Logger receives query logging when LogQueries is set.
	// Default: log.Default().
	Logger Logger

	// LogQueries enables statement logging.
	// Default: false.
	LogQueries bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logger: log.Default(),
	}
}

// Option is a function that configures the client.
type Option func(*Config)

// WithExecutor sets the execution collaborator.
func WithExecutor(exec Executor) Option {
	return func(c *Config) { c.Executor = exec }
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithQueryLogging enables statement logging.
func WithQueryLogging() Option {
	return func(c *Config) { c.LogQueries = true }
}
