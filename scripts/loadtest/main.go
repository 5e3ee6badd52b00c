// Loadtest is a concurrent HTTP load generator that measures throughput,
// latency percentiles, and per-instance distribution for gateway testing.
//
// Usage:
//
//	go run ./scripts/loadtest -url http://localhost:8080/api/users -concurrency 10 -requests 1000
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	var (
		url         = flag.String("url", "http://localhost:8080/api/users", "Target URL")
		concurrency = flag.Int("concurrency", 10, "Number of concurrent workers")
		requests    = flag.Int("requests", 100, "Total number of requests to send")
		method      = flag.String("method", "GET", "HTTP method")
		body        = flag.String("body", "", "Request body")
		timeoutSec  = flag.Int("timeout", 10, "Per-request timeout in seconds")
	)
	flag.Parse()

	client := &http.Client{Timeout: time.Duration(*timeoutSec) * time.Second}

	jobs := make(chan int)
	var wg sync.WaitGroup

	var success int32
	var failure int32

	instanceCounts := make(map[string]int32)
	statusCodes := make(map[int]int32)
	var latencies []time.Duration
	var mu sync.Mutex

	testStart := time.Now()

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				start := time.Now()

				req, err := http.NewRequest(*method, *url, bytes.NewReader([]byte(*body)))
				if err != nil {
					atomic.AddInt32(&failure, 1)
					continue
				}
				if *body != "" {
					req.Header.Set("Content-Type", "application/json")
				}

				res, err := client.Do(req)
				if err != nil {
					atomic.AddInt32(&failure, 1)
					continue
				}

				resBody, _ := io.ReadAll(res.Body)
				res.Body.Close()
				elapsed := time.Since(start)

				var payload struct {
					Instance string `json:"instance"`
				}
				json.Unmarshal(resBody, &payload)

				mu.Lock()
				latencies = append(latencies, elapsed)
				statusCodes[res.StatusCode]++
				if payload.Instance != "" {
					instanceCounts[payload.Instance]++
				}
				mu.Unlock()

				if res.StatusCode >= 200 && res.StatusCode < 400 {
					atomic.AddInt32(&success, 1)
				} else {
					atomic.AddInt32(&failure, 1)
				}
			}
		}()
	}

	for idx := 0; idx < *requests; idx++ {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(testStart)

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	percentile := func(p float64) time.Duration {
		if len(latencies) == 0 {
			return 0
		}
		idx := int(float64(len(latencies)-1) * p)
		return latencies[idx]
	}

	fmt.Printf("requests:    %d\n", *requests)
	fmt.Printf("success:     %d\n", success)
	fmt.Printf("failure:     %d\n", failure)
	fmt.Printf("duration:    %s\n", elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		fmt.Printf("throughput:  %.1f req/s\n", float64(*requests)/elapsed.Seconds())
	}
	fmt.Printf("p50:         %s\n", percentile(0.50).Round(time.Microsecond))
	fmt.Printf("p90:         %s\n", percentile(0.90).Round(time.Microsecond))
	fmt.Printf("p99:         %s\n", percentile(0.99).Round(time.Microsecond))

	fmt.Println("status codes:")
	for code, count := range statusCodes {
		fmt.Printf("  %d: %d\n", code, count)
	}

	if len(instanceCounts) > 0 {
		fmt.Println("instance distribution:")
		for instance, count := range instanceCounts {
			fmt.Printf("  %s: %d\n", instance, count)
		}
	}

	if failure > 0 {
		os.Exit(1)
	}
}
