package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const (
	numWorkers   = 50
	testDuration = 10 * time.Second
)

var httpClient = &http.Client{
	Timeout: 10 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

type listing struct {
	Posts []struct {
		Address string `json:"address"`
	} `json:"posts"`
}

func main() {
	baseURL := flag.String("url", "http://127.0.0.1:8090", "zoblogs base url")
	uploads := flag.Bool("uploads", false, "include legacy uploads (pins real content)")
	flag.Parse()

	fmt.Println("=== zoblogs load test ===")
	fmt.Printf("Target: %s | Workers: %d | Duration: %s\n\n", *baseURL, numWorkers, testDuration)

	fmt.Print("Waiting for server... ")
	if !waitHealthy(*baseURL) {
		fmt.Println("FAILED: server not responding")
		return
	}
	fmt.Println("OK")

	addresses := discoverAddresses(*baseURL)
	fmt.Printf("Registry coins visible on /discover: %d\n", len(addresses))

	fmt.Println("\n--- Phase 1: cached pages (GET / and /discover) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.5 {
			return doGet(*baseURL, "/", "GET /")
		}
		return doGet(*baseURL, "/discover", "GET /discover")
	})

	if len(addresses) > 0 {
		fmt.Println("\n--- Phase 2: post details (indexer read-through) ---")
		runPhase(testDuration, func(rng *rand.Rand) result {
			addr := addresses[rng.Intn(len(addresses))]
			return doGet(*baseURL, "/post/"+addr, "GET /post/{id}")
		})
	}

	if *uploads {
		fmt.Println("\n--- Phase 3: mixed load (10% legacy upload, 90% GET) ---")
		runPhase(testDuration, func(rng *rand.Rand) result {
			if rng.Float64() < 0.10 {
				return doUpload(*baseURL, rng)
			}
			return doGet(*baseURL, "/discover", "GET /discover")
		})
	}
}

func waitHealthy(baseURL string) bool {
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return true
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false
}

func discoverAddresses(baseURL string) []string {
	resp, err := httpClient.Get(baseURL + "/discover")
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	var l listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil
	}
	out := make([]string, 0, len(l.Posts))
	for _, p := range l.Posts {
		out = append(out, p.Address)
	}
	return out
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	all := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := all[r.endpoint]
			if !ok {
				s = &stats{}
				all[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(all, duration)
}

func printResults(all map[string]*stats, duration time.Duration) {
	var totalOps, totalErrors int64

	endpoints := make([]string, 0, len(all))
	for ep := range all {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s\n", "Endpoint", "Reqs", "Errs", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 78))

	for _, ep := range endpoints {
		s := all[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s\n", ep, s.count, s.errors,
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	fmt.Println("  " + strings.Repeat("-", 78))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

func doGet(baseURL, path, label string) result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{label, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{label, lat, resp.StatusCode != http.StatusOK}
}

func doUpload(baseURL string, rng *rand.Rand) result {
	body, _ := json.Marshal(map[string]string{
		"title":   fmt.Sprintf("load test %d", rng.Intn(1_000_000)),
		"content": "generated by the zoblogs load test",
	})
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/api/upload", "application/json", bytes.NewReader(body))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /api/upload", lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /api/upload", lat, resp.StatusCode != http.StatusOK}
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
