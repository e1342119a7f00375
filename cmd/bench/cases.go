// README: Bench cases covering accounts, the ride lifecycle, races, and the Postgres/Redis backends.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	StatusPass    = "PASS"
	StatusFail    = "FAIL"
	StatusPending = "PENDING"
	StatusSkip    = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// Shared between cases; later cases build on earlier ones.
	runID           string
	passengerToken  string
	driverToken     string
	driverID        int64
	rideID          int64
	completedRideID int64
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
		runID: uuid.NewString()[:8],
	}
}

func (r *Runner) Close() {
	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{
			Name:  "DB: connect",
			Focus: "Postgres reachable for the event journal",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "no dsn"}
				}
				start := time.Now()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass, Latency: time.Since(start)}
			},
		},
		{
			Name:  "Redis: connect",
			Focus: "Session store reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "no redis address"}
				}
				start := time.Now()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass, Latency: time.Since(start)}
			},
		},
		{
			Name:  "DB: apply migration",
			Focus: "Migration SQL applies cleanly",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: StatusSkip, Note: "apply-migration disabled"}
				}
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "no dsn"}
				}
				b, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				for _, stmt := range splitSQL(string(b)) {
					if _, err := r.db.Exec(ctx, stmt); err != nil {
						return Result{Status: StatusFail, Note: err.Error()}
					}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "DB: tables exist",
			Focus: "Every table in the migration is present",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "no dsn"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: StatusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: StatusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: StatusPass, Note: strings.Join(tables, ",")}
			},
		},
		{
			Name:  "API: health",
			Focus: "Server reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				return expect(r.call(ctx, http.MethodGet, "/health", "", nil, nil), http.StatusOK)
			},
		},

		// Accounts
		{
			Name:  "Accounts: register passenger and driver",
			Focus: "POST /api/users",
			Run: func(ctx context.Context, r *Runner) Result {
				if res := expect(r.register(ctx, "p-"+r.runID, "passenger", nil), http.StatusCreated); res.Status != StatusPass {
					return res
				}
				var driver struct {
					ID int64 `json:"id"`
				}
				res := expect(r.register(ctx, "d-"+r.runID, "driver", &driver), http.StatusCreated)
				r.driverID = driver.ID
				return res
			},
		},
		{
			Name:  "Accounts: duplicate username -> 409",
			Focus: "Username uniqueness",
			Run: func(ctx context.Context, r *Runner) Result {
				return expect(r.register(ctx, "p-"+r.runID, "passenger", nil), http.StatusConflict)
			},
		},
		{
			Name:  "Accounts: login",
			Focus: "POST /api/sessions issues tokens",
			Run: func(ctx context.Context, r *Runner) Result {
				tok, res := r.login(ctx, "p-"+r.runID)
				if res.Status != StatusPass {
					return res
				}
				r.passengerToken = tok
				tok, res = r.login(ctx, "d-"+r.runID)
				r.driverToken = tok
				return res
			},
		},
		{
			Name:  "Accounts: bad password -> 401",
			Focus: "Credential check",
			Run: func(ctx context.Context, r *Runner) Result {
				body := map[string]any{"username": "p-" + r.runID, "password": "wrong-password"}
				return expect(r.call(ctx, http.MethodPost, "/api/sessions", "", body, nil), http.StatusUnauthorized)
			},
		},
		{
			Name:  "Vehicles: driver registers vehicle",
			Focus: "POST /api/vehicles",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.driverToken == "" {
					return Result{Status: StatusSkip, Note: "no driver session"}
				}
				body := map[string]any{
					"model":         "Corolla",
					"year":          2022,
					"color":         "white",
					"license_plate": "BENCH-" + r.runID,
					"tier":          "economy",
				}
				return expect(r.call(ctx, http.MethodPost, "/api/vehicles", r.driverToken, body, nil), http.StatusCreated)
			},
		},

		// Ride lifecycle
		{
			Name:  "Ride: request (missing fields -> 400)",
			Focus: "Input validation",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.passengerToken == "" {
					return Result{Status: StatusSkip, Note: "no passenger session"}
				}
				return expect(r.call(ctx, http.MethodPost, "/api/rides", r.passengerToken, map[string]any{}, nil), http.StatusBadRequest)
			},
		},
		{
			Name:  "Ride: request (valid)",
			Focus: "Ride created with estimate",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.passengerToken == "" {
					return Result{Status: StatusSkip, Note: "no passenger session"}
				}
				id, res := r.requestRide(ctx, r.passengerToken)
				r.rideID = id
				return res
			},
		},
		{
			Name:  "Ride: duplicate active request -> 409",
			Focus: "One active ride per passenger",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.rideID == 0 {
					return Result{Status: StatusSkip, Note: "no ride"}
				}
				_, res := r.requestRide(ctx, r.passengerToken)
				if res.Note == fmt.Sprintf("status=%d", http.StatusConflict) {
					return Result{Status: StatusPass, Latency: res.Latency, Note: res.Note}
				}
				return Result{Status: StatusFail, Latency: res.Latency, Note: res.Note}
			},
		},
		r.rideStep("Ride: driver accept", "accept", http.StatusOK),
		r.rideStep("Ride: driver accept again -> 409", "accept", http.StatusConflict),
		r.rideStep("Ride: driver arrived", "arrived", http.StatusOK),
		r.rideStep("Ride: driver start", "start", http.StatusOK),
		r.rideStep("Ride: driver complete", "complete", http.StatusOK),
		{
			Name:  "Ride: completed cannot be cancelled",
			Focus: "Terminal states are final",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.rideID == 0 {
					return Result{Status: StatusSkip, Note: "no ride"}
				}
				r.completedRideID = r.rideID
				return expect(r.call(ctx, http.MethodPost, r.ridePath(r.rideID, "cancel"), r.passengerToken, nil, nil), http.StatusConflict)
			},
		},
		{
			Name:  "Ride: get shows completed",
			Focus: "GET /api/rides/:id",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.completedRideID == 0 {
					return Result{Status: StatusSkip, Note: "no ride"}
				}
				var got struct {
					Status string `json:"status"`
				}
				res := expect(r.call(ctx, http.MethodGet, r.ridePath(r.completedRideID, ""), r.passengerToken, nil, &got), http.StatusOK)
				if res.Status == StatusPass && got.Status != "completed" {
					return Result{Status: StatusFail, Latency: res.Latency, Note: "status=" + got.Status}
				}
				return res
			},
		},

		{
			Name:  "Ride: lifecycle events",
			Focus: "GET /api/rides/:id/events",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.completedRideID == 0 {
					return Result{Status: StatusSkip, Note: "no ride"}
				}
				var out struct {
					Events []json.RawMessage `json:"events"`
				}
				res := expect(r.call(ctx, http.MethodGet, r.ridePath(r.completedRideID, "events"), r.passengerToken, nil, &out), http.StatusOK)
				if res.Status == StatusPass {
					res.Note = fmt.Sprintf("events=%d", len(out.Events))
				}
				return res
			},
		},

		// Ratings and history
		{
			Name:  "Rating: passenger rates driver",
			Focus: "POST /api/rides/:id/ratings",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.completedRideID == 0 {
					return Result{Status: StatusSkip, Note: "no completed ride"}
				}
				body := map[string]any{"score": 5, "comment": "smooth trip"}
				return expect(r.call(ctx, http.MethodPost, r.ridePath(r.completedRideID, "ratings"), r.passengerToken, body, nil), http.StatusCreated)
			},
		},
		{
			Name:  "Rating: second rating -> 409",
			Focus: "One rating per rater per ride",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.completedRideID == 0 {
					return Result{Status: StatusSkip, Note: "no completed ride"}
				}
				body := map[string]any{"score": 1}
				return expect(r.call(ctx, http.MethodPost, r.ridePath(r.completedRideID, "ratings"), r.passengerToken, body, nil), http.StatusConflict)
			},
		},
		{
			Name:  "Rating: driver ratings listed",
			Focus: "GET /api/users/:id/ratings",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.driverID == 0 || r.passengerToken == "" {
					return Result{Status: StatusSkip, Note: "no driver"}
				}
				return expect(r.call(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/ratings", r.driverID), r.passengerToken, nil, nil), http.StatusOK)
			},
		},
		{
			Name:  "History: passenger history",
			Focus: "GET /api/rides/history",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.passengerToken == "" {
					return Result{Status: StatusSkip, Note: "no passenger session"}
				}
				var out struct {
					Rides []json.RawMessage `json:"rides"`
				}
				res := expect(r.call(ctx, http.MethodGet, "/api/rides/history?limit=5", r.passengerToken, nil, &out), http.StatusOK)
				if res.Status == StatusPass && len(out.Rides) == 0 {
					return Result{Status: StatusFail, Latency: res.Latency, Note: "empty history"}
				}
				return res
			},
		},

		// Cancel flow
		{
			Name:  "Cancel: driver declines requested ride",
			Focus: "Decline ends the ride cancelled",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.passengerToken == "" || r.driverToken == "" {
					return Result{Status: StatusSkip, Note: "no sessions"}
				}
				id, res := r.requestRide(ctx, r.passengerToken)
				if res.Status != StatusPass {
					return res
				}
				return expect(r.call(ctx, http.MethodPost, r.ridePath(id, "decline"), r.driverToken, nil, nil), http.StatusOK)
			},
		},
		{
			Name:  "Cancel: passenger cancels requested ride",
			Focus: "Cancel frees the passenger",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.passengerToken == "" {
					return Result{Status: StatusSkip, Note: "no passenger session"}
				}
				id, res := r.requestRide(ctx, r.passengerToken)
				if res.Status != StatusPass {
					return res
				}
				body := map[string]any{"reason": "change_plans"}
				return expect(r.call(ctx, http.MethodPost, r.ridePath(id, "cancel"), r.passengerToken, body, nil), http.StatusOK)
			},
		},

		// Concurrency
		{
			Name:  "Concurrency: multi accept same ride",
			Focus: "Only one driver wins",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentAccept(ctx, r)
			},
		},

		// Journal
		{
			Name:  "Journal: ride events persisted",
			Focus: "ride_events rows for the completed ride",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "no dsn"}
				}
				if r.completedRideID == 0 {
					return Result{Status: StatusSkip, Note: "no completed ride"}
				}
				var n int
				err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM ride_events WHERE ride_id=$1", r.completedRideID).Scan(&n)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if n == 0 {
					return Result{Status: StatusPending, Note: "server not journaling to this database"}
				}
				return Result{Status: StatusPass, Note: fmt.Sprintf("events=%d", n)}
			},
		},

		// Performance
		{
			Name:  "Perf: active ride lookup throughput",
			Focus: "GET /api/rides/active under load",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.passengerToken == "" {
					return Result{Status: StatusSkip, Note: "no passenger session"}
				}
				return perfLoad(ctx, r, "/api/rides/active", r.passengerToken)
			},
		},
	}
}

func (r *Runner) rideStep(name, action string, want int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "POST /api/rides/:id/" + action,
		Run: func(ctx context.Context, r *Runner) Result {
			if r.rideID == 0 || r.driverToken == "" {
				return Result{Status: StatusSkip, Note: "no ride"}
			}
			return expect(r.call(ctx, http.MethodPost, r.ridePath(r.rideID, action), r.driverToken, nil, nil), want)
		},
	}
}

func (r *Runner) ridePath(id int64, action string) string {
	if action == "" {
		return fmt.Sprintf("/api/rides/%d", id)
	}
	return fmt.Sprintf("/api/rides/%d/%s", id, action)
}

type callResult struct {
	status  int
	latency time.Duration
	err     error
}

// call sends a JSON request and decodes a 2xx body into out when given.
func (r *Runner) call(ctx context.Context, method, path, token string, body, out any) callResult {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return callResult{err: err}
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, reader)
	if err != nil {
		return callResult{err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return callResult{err: err}
	}
	defer resp.Body.Close()
	res := callResult{status: resp.StatusCode, latency: time.Since(start)}
	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		res.err = json.NewDecoder(resp.Body).Decode(out)
		return res
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return res
}

func expect(c callResult, want int) Result {
	if c.err != nil {
		return Result{Status: StatusFail, Latency: c.latency, Note: c.err.Error()}
	}
	note := fmt.Sprintf("status=%d", c.status)
	switch {
	case c.status == want:
		return Result{Status: StatusPass, Latency: c.latency, Note: note}
	case c.status == http.StatusNotImplemented:
		return Result{Status: StatusPending, Latency: c.latency, Note: note}
	default:
		return Result{Status: StatusFail, Latency: c.latency, Note: note}
	}
}

func (r *Runner) register(ctx context.Context, username, role string, out any) callResult {
	body := map[string]any{
		"username":     username,
		"password":     "bench-password",
		"display_name": username,
		"role":         role,
	}
	return r.call(ctx, http.MethodPost, "/api/users", "", body, out)
}

func (r *Runner) login(ctx context.Context, username string) (string, Result) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]any{"username": username, "password": "bench-password"}
	res := expect(r.call(ctx, http.MethodPost, "/api/sessions", "", body, &out), http.StatusCreated)
	return out.Token, res
}

func (r *Runner) requestRide(ctx context.Context, token string) (int64, Result) {
	body := map[string]any{
		"origin_address":      "Taipei 101",
		"destination_address": "Taipei Main Station",
		"origin":              map[string]float64{"lat": 25.033, "lng": 121.565},
		"destination":         map[string]float64{"lat": 25.0478, "lng": 121.5170},
		"vehicle_type":        "economy",
		"payment_method":      "cash",
	}
	var out struct {
		ID int64 `json:"id"`
	}
	res := expect(r.call(ctx, http.MethodPost, "/api/rides", token, body, &out), http.StatusCreated)
	return out.ID, res
}

// concurrentAccept races cfg.Concurrency fresh drivers for one fresh ride.
func concurrentAccept(ctx context.Context, r *Runner) Result {
	tag := "race-" + r.runID
	if res := expect(r.register(ctx, tag+"-p", "passenger", nil), http.StatusCreated); res.Status != StatusPass {
		return res
	}
	pTok, res := r.login(ctx, tag+"-p")
	if res.Status != StatusPass {
		return res
	}
	tokens := make([]string, 0, r.cfg.Concurrency)
	for i := 0; i < r.cfg.Concurrency; i++ {
		name := fmt.Sprintf("%s-d%d", tag, i)
		if res := expect(r.register(ctx, name, "driver", nil), http.StatusCreated); res.Status != StatusPass {
			return res
		}
		tok, res := r.login(ctx, name)
		if res.Status != StatusPass {
			return res
		}
		tokens = append(tokens, tok)
	}
	rideID, res := r.requestRide(ctx, pTok)
	if res.Status != StatusPass {
		return res
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succ      int
		conflicts int
		other     []int
	)
	start := time.Now()
	for _, tok := range tokens {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			c := r.call(ctx, http.MethodPost, r.ridePath(rideID, "accept"), tok, nil, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case c.err != nil:
				other = append(other, 0)
			case c.status == http.StatusOK:
				succ++
			case c.status == http.StatusConflict:
				conflicts++
			default:
				other = append(other, c.status)
			}
		}(tok)
	}
	wg.Wait()

	note := fmt.Sprintf("success=%d conflict=%d other=%v", succ, conflicts, other)
	if succ == 1 && len(other) == 0 {
		return Result{Status: StatusPass, Latency: time.Since(start), Note: note}
	}
	return Result{Status: StatusFail, Latency: time.Since(start), Note: note}
}

func perfLoad(ctx context.Context, r *Runner, path, token string) Result {
	end := time.Now().Add(r.cfg.Duration)
	var (
		mu       sync.Mutex
		count    int64
		errCount int64
		wg       sync.WaitGroup
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				c := r.call(ctx, http.MethodGet, path, token, nil, nil)
				mu.Lock()
				if c.err != nil || c.status != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
