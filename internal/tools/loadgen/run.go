package loadgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/product-catalog-api/internal/observability"
)

type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status5xx     int64
}

type request struct {
	method string
	path   string
	body   string
}

var (
	browseRequests = []request{
		{http.MethodGet, "/api/products", ""},
		{http.MethodGet, "/api/products?sortBy=price_asc", ""},
		{http.MethodGet, "/api/products?sortBy=name_asc&category=Clothing", ""},
		{http.MethodGet, "/api/products?search=shirt", ""},
		{http.MethodGet, "/api/products?minPrice=20&maxPrice=200", ""},
		{http.MethodGet, "/api/products/1", ""},
		{http.MethodGet, "/api/products/1/related", ""},
	}
	errorRequests = []request{
		{http.MethodGet, "/api/products/abc", ""},
		{http.MethodGet, "/api/products/999999", ""},
		{http.MethodGet, "/api/products?sortBy=rating", ""},
		{http.MethodGet, "/api/products?minPrice=cheap", ""},
		{http.MethodPost, "/api/auth/login", `{"email":"loadgen@example.com","password":"wrong"}`},
		{http.MethodDelete, "/api/products/1", ""},
		{http.MethodGet, "/api/unknown", ""},
	}
)

func requestsForProfile(profile string) []request {
	switch strings.ToLower(profile) {
	case "browse":
		return browseRequests
	case "", "mixed":
		mixed := append([]request{}, browseRequests...)
		return append(mixed, errorRequests[:3]...)
	case "error-heavy":
		return errorRequests
	default:
		return nil
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:3001"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}

	requests := requestsForProfile(cfg.Profile)
	if len(requests) == 0 {
		return Result{}, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}
	profile := strings.ToLower(cfg.Profile)
	if profile == "" {
		profile = "mixed"
	}

	client := &http.Client{Timeout: 5 * time.Second}
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var total, failures, s2xx, s4xx, s5xx int64
	jobs := make(chan request, cfg.Concurrency*2)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < cfg.Concurrency; i++ {
		g.Go(func() error {
			for job := range jobs {
				var body io.Reader
				if job.body != "" {
					body = bytes.NewBufferString(job.body)
				}
				req, err := http.NewRequestWithContext(gctx, job.method, strings.TrimRight(cfg.BaseURL, "/")+job.path, body)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				if job.body != "" {
					req.Header.Set("Content-Type", "application/json")
				}
				resp, err := client.Do(req)
				if err != nil {
					if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
						atomic.AddInt64(&failures, 1)
					}
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
				atomic.AddInt64(&total, 1)
				class := statusClass(resp.StatusCode)
				observability.RecordLoadgenRequest(gctx, class, profile)
				switch class {
				case "2xx":
					atomic.AddInt64(&s2xx, 1)
				case "4xx":
					atomic.AddInt64(&s4xx, 1)
				case "5xx":
					atomic.AddInt64(&s5xx, 1)
				}
			}
			return nil
		})
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
dispatch:
	for {
		select {
		case <-ctx.Done():
			break dispatch
		case <-ticker.C:
			select {
			case jobs <- requests[rng.Intn(len(requests))]:
			case <-ctx.Done():
				break dispatch
			}
		}
	}
	close(jobs)
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return Result{
		TotalRequests: atomic.LoadInt64(&total),
		Failures:      atomic.LoadInt64(&failures),
		Status2xx:     atomic.LoadInt64(&s2xx),
		Status4xx:     atomic.LoadInt64(&s4xx),
		Status5xx:     atomic.LoadInt64(&s5xx),
	}, nil
}
