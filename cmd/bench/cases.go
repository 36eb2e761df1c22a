// README: Bench cases: environment, migration, prediction API contract and throughput checks.
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
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
			defer db.Close()
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
		defer r.redis.Close()
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
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

// sampleOrder is a short Indore delivery the sample model scores at 26 minutes.
func sampleOrder() map[string]any {
	return map[string]any{
		"ID":                          "0x4607",
		"Delivery_person_ID":          "INDORES13DEL02",
		"Delivery_person_Age":         "37",
		"Delivery_person_Ratings":     "4.9",
		"Restaurant_latitude":         22.745049,
		"Restaurant_longitude":        75.892471,
		"Delivery_location_latitude":  22.765049,
		"Delivery_location_longitude": 75.912471,
		"Order_Date":                  "19-03-2022",
		"Time_Orderd":                 "11:30:00",
		"Time_Order_picked":           "11:45:00",
		"Weatherconditions":           "conditions Sunny",
		"Road_traffic_density":        "High ",
		"Vehicle_condition":           2,
		"Type_of_order":               "Snack ",
		"Type_of_vehicle":             "motorcycle ",
		"multiple_deliveries":         "0",
		"Festival":                    "No ",
		"City":                        "Urban ",
	}
}

func withField(key string, v any) map[string]any {
	o := sampleOrder()
	o[key] = v
	return o
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: statusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: statusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: statusPass}
			},
		},

		httpCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK),
		httpCase("API: model info", http.MethodGet, base+"/model", nil, http.StatusOK),
		httpCase("Predict: sample order", http.MethodPost, base+"/predict", sampleOrder(), http.StatusOK),
		httpCase("Predict: latitude outside India -> 422", http.MethodPost, base+"/predict",
			withField("Restaurant_latitude", 51.5), http.StatusUnprocessableEntity),
		httpCase("Predict: missing age -> 422", http.MethodPost, base+"/predict",
			withField("Delivery_person_Age", "NaN "), http.StatusUnprocessableEntity),
		httpCase("Predict: beyond trained distance -> 422", http.MethodPost, base+"/predict",
			withField("Delivery_location_latitude", 18.5204), http.StatusUnprocessableEntity),
		httpCase("Features: sample order", http.MethodPost, base+"/features", sampleOrder(), http.StatusOK),
		{
			Name: "Predict: repeated order is served from cache",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				var last map[string]any
				for range 2 {
					status, body, _, err := r.post(ctx, base+"/predict", sampleOrder())
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if status != http.StatusOK {
						return Result{Status: statusFail, Note: fmt.Sprintf("status=%d", status)}
					}
					last = nil
					_ = json.Unmarshal(body, &last)
				}
				if cached, _ := last["cached"].(bool); !cached {
					return Result{Status: statusFail, Note: "second response not cached"}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Audit: stored prediction can be fetched",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				status, body, _, err := r.post(ctx, base+"/predict", sampleOrder())
				if err != nil || status != http.StatusOK {
					return Result{Status: statusFail, Note: fmt.Sprintf("predict status=%d err=%v", status, err)}
				}
				var res struct {
					ID string `json:"prediction_id"`
				}
				_ = json.Unmarshal(body, &res)
				if res.ID == "" {
					return Result{Status: statusFail, Note: "no prediction_id returned"}
				}
				return httpCase("", http.MethodGet, base+"/predictions/"+res.ID, nil, http.StatusOK).Run(ctx, r)
			},
		},
		{
			Name: "Perf: predict throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/predict", sampleOrder())
			},
		},
	}
}

func (r *Runner) post(ctx context.Context, url string, body any) (int, []byte, time.Duration, error) {
	return r.do(ctx, http.MethodPost, url, body)
}

func (r *Runner) do(ctx context.Context, method, url string, body any) (int, []byte, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, 0, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	return resp.StatusCode, payload, time.Since(start), err
}

func httpCase(name, method, url string, body any, okStatuses ...int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			status, _, latency, err := r.do(ctx, method, url, body)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			if slices.Contains(okStatuses, status) {
				return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
		},
	}
}

// perfLoad posts payload from cfg.Concurrency workers for cfg.Duration and
// reports throughput and latency percentiles.
func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Duration)
	defer cancel()

	var mu sync.Mutex
	var latencies []time.Duration
	var errCount int

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < r.cfg.Concurrency; i++ {
		g.Go(func() error {
			for ctx.Err() == nil {
				status, _, latency, err := r.post(ctx, url, payload)
				mu.Lock()
				if err != nil || status != http.StatusOK {
					if ctx.Err() == nil {
						errCount++
					}
				} else {
					latencies = append(latencies, latency)
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(latencies) == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	rps := float64(len(latencies)) / r.cfg.Duration.Seconds()
	return Result{
		Status: statusPass,
		Note: fmt.Sprintf("rps=%.1f p50=%s p99=%s errors=%d", rps,
			percentile(latencies, 0.50), percentile(latencies, 0.99), errCount),
	}
}

func percentile(sorted []time.Duration, q float64) time.Duration {
	idx := int(q * float64(len(sorted)-1))
	return sorted[idx].Round(time.Microsecond)
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
