package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time converts lock timeouts into durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers, ints for counts and prices,
// durations for the lock timeouts.
type Config struct {
	Env              string        // application environment (e.g. "dev", "prod")
	Port             string        // HTTP port to listen on
	DBUser           string        // database username
	DBPass           string        // database password (optional)
	DBHost           string        // database host address
	DBPort           string        // database port number
	DBName           string        // database name
	TotalTickets     int           // size of the ticket pool created at startup
	TicketPriceCents uint32        // fixed price per ticket in cents
	StockKey         string        // Redis key holding the shared stock counter
	LockKeyPrefix    string        // prefix for per-buyer purchase lock keys
	LockWait         time.Duration // how long a purchase blocks waiting for the buyer lock
	LockLease        time.Duration // lease after which a held lock auto-expires
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The lock lease must
// cover the wait window plus the worst-case allocation time; Load enforces
// the cheap half of that (lease strictly greater than wait).
func Load() Config {
	cfg := Config{
		Env:              must("APP_ENV"),  // environment (dev/test/prod)
		Port:             must("APP_PORT"), // port to bind the HTTP server
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty allowed
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		TotalTickets:     mustInt("TOTAL_TICKETS"),
		TicketPriceCents: uint32(mustInt("TICKET_PRICE_CENTS")),
		StockKey:         getenv("STOCK_COUNTER_KEY", "ticket:stock"),
		LockKeyPrefix:    getenv("PURCHASE_LOCK_PREFIX", "lock:user:"),
		LockWait:         time.Duration(envInt("PURCHASE_LOCK_WAIT_SEC", 5)) * time.Second,
		LockLease:        time.Duration(envInt("PURCHASE_LOCK_LEASE_SEC", 10)) * time.Second,
	}
	if cfg.TotalTickets < 0 {
		log.Fatalf("TOTAL_TICKETS must not be negative: %d", cfg.TotalTickets)
	}
	if cfg.LockLease <= cfg.LockWait {
		// A lease shorter than the wait window would expire mid-allocation.
		log.Fatalf("PURCHASE_LOCK_LEASE_SEC (%s) must exceed PURCHASE_LOCK_WAIT_SEC (%s)",
			cfg.LockLease, cfg.LockWait)
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// getenv returns an optional environment variable or the default when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
