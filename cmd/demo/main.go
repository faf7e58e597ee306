package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"upnd.org/internal/sim"
)

// demo floods a running API with synthetic registrations so the live map and
// approval queues have something to show. Registration is a public endpoint,
// so no credentials are needed.
func main() {
	var (
		baseURL  = flag.String("base-url", "http://localhost:8080", "API base URL")
		workers  = flag.Int("workers", 4, "Concurrent worker count")
		duration = flag.Duration("duration", 2*time.Minute, "Duration of the simulation")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("Launching registration demo: base=%s workers=%d duration=%s", *baseURL, *workers, *duration)

	client := &http.Client{Timeout: 10 * time.Second}

	var counter sim.Counter
	var mu sync.Mutex
	var successes int64
	var failures int64
	var conflicts int64
	var rateLimited int64
	var serverErrors int64

	var wg sync.WaitGroup
	deadline := time.Now().Add(*duration)

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			// Workers share the NRC sequence space, so a duplicate
			// once in a while is expected and counted as a conflict.
			generator := sim.NewGenerator(time.Now().UnixNano() + int64(id*9973))
			rnd := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
			for time.Now().Before(deadline) {
				select {
				case <-ctx.Done():
					return
				default:
				}
				reg := generator.NextRegistration()
				body, _ := json.Marshal(reg)
				req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/v1/members", *baseURL), bytes.NewReader(body))
				if err != nil {
					log.Printf("worker %d request: %v", id, err)
					atomic.AddInt64(&failures, 1)
					continue
				}
				req.Header.Set("Content-Type", "application/json")
				resp, err := client.Do(req)
				if err != nil {
					log.Printf("worker %d do: %v", id, err)
					atomic.AddInt64(&failures, 1)
					continue
				}
				resp.Body.Close()
				if resp.StatusCode >= 300 {
					atomic.AddInt64(&failures, 1)
					switch resp.StatusCode {
					case http.StatusConflict:
						atomic.AddInt64(&conflicts, 1)
					case http.StatusTooManyRequests:
						atomic.AddInt64(&rateLimited, 1)
						time.Sleep(250 * time.Millisecond)
					default:
						atomic.AddInt64(&serverErrors, 1)
						log.Printf("worker %d registration failed: %s", id, resp.Status)
						time.Sleep(200 * time.Millisecond)
					}
					continue
				}
				atomic.AddInt64(&successes, 1)
				mu.Lock()
				counter.Add(reg)
				mu.Unlock()
				time.Sleep(time.Duration(50+rnd.Intn(120)) * time.Millisecond)
			}
		}(i)
	}

	wg.Wait()

	log.Printf("Run complete: %d success / %d failed (conflicts=%d, rate_limited=%d, server_errors=%d)", successes, failures, conflicts, rateLimited, serverErrors)
	mu.Lock()
	for province, n := range counter.ByProvince {
		log.Printf("  %-15s %d", province, n)
	}
	mu.Unlock()
}
