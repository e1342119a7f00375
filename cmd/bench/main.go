// README: Smoke/bench runner for the ride API; executes HTTP/DB/Redis checks and prints results.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type Config struct {
	BaseURL        string
	DSN            string
	RedisAddr      string
	MigrationPath  string
	ApplyMigration bool
	Strict         bool
	Timeout        time.Duration
	Concurrency    int
	Duration       time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg Config
	cmd := &cobra.Command{
		Use:           "bench",
		Short:         "Run smoke checks against a running ride API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "base-url", envOrDefault("ARK_BENCH_BASE_URL", "http://localhost:8080"), "API base URL")
	f.StringVar(&cfg.DSN, "dsn", envOrDefault("ARK_DB_DSN", ""), "Postgres DSN for the event journal checks")
	f.StringVar(&cfg.RedisAddr, "redis", envOrDefault("ARK_REDIS_ADDR", ""), "Redis address")
	f.StringVar(&cfg.MigrationPath, "migration", envOrDefault("ARK_BENCH_MIGRATION", "migrations/0001_init.sql"), "Migration SQL path")
	f.BoolVar(&cfg.ApplyMigration, "apply-migration", envOrDefaultBool("ARK_BENCH_APPLY_MIGRATION", false), "Apply migration SQL before tests")
	f.BoolVar(&cfg.Strict, "strict", envOrDefaultBool("ARK_BENCH_STRICT", false), "Fail on pending tests")
	f.DurationVar(&cfg.Timeout, "timeout", envOrDefaultDuration("ARK_BENCH_TIMEOUT", 60*time.Second), "Total timeout")
	f.IntVar(&cfg.Concurrency, "concurrency", envOrDefaultInt("ARK_BENCH_CONCURRENCY", 8), "Concurrent drivers / workers")
	f.DurationVar(&cfg.Duration, "duration", envOrDefaultDuration("ARK_BENCH_DURATION", 5*time.Second), "Duration for perf tests")
	return cmd
}

func run(parent context.Context, cfg Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, cfg.Timeout)
	defer cancel()

	bench := NewRunner(cfg)
	defer bench.Close()
	results := bench.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, pending, skipped := 0, 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			pass++
		case StatusFail:
			fail++
		case StatusPending:
			pending++
		case StatusSkip:
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d PENDING=%d SKIP=%d\n", pass, fail, pending, skipped)

	if fail > 0 || (cfg.Strict && pending > 0) {
		return fmt.Errorf("bench failed: fail=%d pending=%d", fail, pending)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
