// Command loadtest hammers the search endpoint with concurrent workers and
// reports throughput and latency percentiles. Point it at an instance with
// caching enabled to measure hot-path latency, or vary the payloads to
// exercise the full pipeline.
//
// Usage:
//
//	go run ./cmd/loadtest -url http://localhost:8080 -concurrency 10 -duration 30s
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type searchPayload struct {
	Description string `json:"description"`
	City        string `json:"city"`
	Country     string `json:"country"`
	DatePosted  string `json:"date_posted"`
}

var payloads = []searchPayload{
	{Description: "Senior Golang backend engineer with Kubernetes and PostgreSQL", City: "Bengaluru", Country: "in"},
	{Description: "Python data engineer, Airflow and Spark pipelines", City: "Pune", Country: "in"},
	{Description: "Frontend developer, React and TypeScript", City: "Hyderabad", Country: "in"},
	{Description: "DevOps engineer, AWS, Terraform, CI/CD", City: "Chennai", Country: "in", DatePosted: "week"},
	{Description: "Machine learning engineer with PyTorch background", City: "Mumbai", Country: "in"},
	{Description: "Java microservices developer, Spring Boot", City: "Bengaluru", Country: "in", DatePosted: "month"},
	{Description: "Site reliability engineer, observability and incident response", City: "Pune", Country: "in"},
	{Description: "Full stack developer Node.js and React", City: "Delhi", Country: "in"},
	{Description: "Database administrator PostgreSQL and Redis", City: "Hyderabad", Country: "in"},
	{Description: "Embedded systems engineer, C and C++", City: "Bengaluru", Country: "in"},
}

type stats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	latencies     []time.Duration
	latenciesMu   sync.Mutex
	statusCodes   map[int]*atomic.Int64
	statusCodesMu sync.Mutex
}

func newStats() *stats {
	return &stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]*atomic.Int64),
	}
}

func (s *stats) record(duration time.Duration, statusCode int, err error) {
	s.totalRequests.Add(1)

	if err != nil {
		s.errorCount.Add(1)
		return
	}

	if statusCode >= 200 && statusCode < 300 {
		s.successCount.Add(1)
	} else {
		s.errorCount.Add(1)
	}

	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, duration)
	s.latenciesMu.Unlock()

	s.statusCodesMu.Lock()
	if _, ok := s.statusCodes[statusCode]; !ok {
		s.statusCodes[statusCode] = &atomic.Int64{}
	}
	s.statusCodes[statusCode].Add(1)
	s.statusCodesMu.Unlock()
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	flag.Parse()

	fmt.Println("=== Job Search Load Test ===")
	fmt.Printf("Target:      %s\n", *baseURL)
	fmt.Printf("Concurrency: %d\n", *concurrency)
	fmt.Printf("Duration:    %s\n", *duration)
	fmt.Printf("Payloads:    %d unique\n", len(payloads))
	fmt.Println()

	s := run(*baseURL, *concurrency, *duration)
	report(s, *duration)
}

func run(baseURL string, concurrency int, duration time.Duration) *stats {
	s := newStats()
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        concurrency * 2,
			MaxIdleConnsPerHost: concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	bodies := make([][]byte, len(payloads))
	for i, p := range payloads {
		body, err := json.Marshal(p)
		if err != nil {
			panic(fmt.Sprintf("encoding payload: %v", err))
		}
		bodies[i] = body
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Print("Running")

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			idx := workerID

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				body := bodies[idx%len(bodies)]
				idx++

				req, err := http.NewRequestWithContext(ctx, http.MethodPost,
					baseURL+"/api/v1/search", bytes.NewReader(body))
				if err != nil {
					panic(fmt.Sprintf("creating request: %v", err))
				}
				req.Header.Set("Content-Type", "application/json")

				start := time.Now()
				resp, err := client.Do(req)
				elapsed := time.Since(start)

				if err != nil {
					s.record(elapsed, 0, err)
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()

				s.record(elapsed, resp.StatusCode, nil)
			}
		}(w)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return s
}

func report(s *stats, duration time.Duration) {
	total := s.totalRequests.Load()
	success := s.successCount.Load()
	errors := s.errorCount.Load()

	fmt.Println("=== Results ===")
	fmt.Printf("Total Requests:  %d\n", total)
	fmt.Printf("Successful:      %d\n", success)
	fmt.Printf("Errors:          %d\n", errors)

	if total > 0 {
		fmt.Printf("Error Rate:      %.2f%%\n", float64(errors)/float64(total)*100)
		fmt.Printf("Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}

	s.latenciesMu.Lock()
	latencies := make([]time.Duration, len(s.latencies))
	copy(latencies, s.latencies)
	s.latenciesMu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool {
			return latencies[i] < latencies[j]
		})

		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		fmt.Println()
		fmt.Println("=== Latency ===")
		fmt.Printf("Min:    %s\n", latencies[0])
		fmt.Printf("Avg:    %s\n", avg)
		fmt.Printf("P50:    %s\n", percentile(latencies, 50))
		fmt.Printf("P90:    %s\n", percentile(latencies, 90))
		fmt.Printf("P95:    %s\n", percentile(latencies, 95))
		fmt.Printf("P99:    %s\n", percentile(latencies, 99))
		fmt.Printf("Max:    %s\n", latencies[len(latencies)-1])
	}

	fmt.Println()
	fmt.Println("=== Status Codes ===")
	s.statusCodesMu.Lock()
	codes := make([]int, 0, len(s.statusCodes))
	for code := range s.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Printf("  %d: %d\n", code, s.statusCodes[code].Load())
	}
	s.statusCodesMu.Unlock()

	if total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
