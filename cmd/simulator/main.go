package main // Load generator for the flash-sale purchase endpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// result tallies one category of purchase outcome across all workers.
type result struct {
	granted      atomic.Int64
	soldOut      atomic.Int64
	contended    atomic.Int64
	rateLimited  atomic.Int64
	failed       atomic.Int64
	transportErr atomic.Int64
}

func main() {
	_ = godotenv.Load()

	base := getenv("SIM_BASE_URL", "http://localhost:8080")
	requests := getenvInt("SIM_REQUESTS", 1000)
	workers := getenvInt("SIM_WORKERS", 100)
	quantity := getenvInt("SIM_QUANTITY", 1)

	client := &http.Client{Timeout: 15 * time.Second}

	// Each simulated buyer is a fresh registration so per-buyer locks do
	// not serialize the whole run.
	log.Printf("simulator: %d requests, %d workers, quantity=%d, target=%s",
		requests, workers, quantity, base)

	status(client, base, "before")

	var res result
	jobs := make(chan int)
	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				fire(client, base, quantity, &res)
			}
		}()
	}
	for i := 0; i < requests; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(start)
	log.Printf("simulator: done in %s (%.0f req/s)", elapsed,
		float64(requests)/elapsed.Seconds())
	log.Printf("  granted:       %d", res.granted.Load())
	log.Printf("  sold out:      %d", res.soldOut.Load())
	log.Printf("  contended:     %d", res.contended.Load())
	log.Printf("  rate limited:  %d", res.rateLimited.Load())
	log.Printf("  failed:        %d", res.failed.Load())
	log.Printf("  transport err: %d", res.transportErr.Load())

	status(client, base, "after")
}

// fire registers one buyer and attempts a single purchase for them.
func fire(client *http.Client, base string, quantity int, res *result) {
	userID := uuid.NewString()
	reg := map[string]string{
		"user_id":  userID,
		"username": "sim-" + userID[:8],
		"email":    "sim-" + userID[:8] + "@example.com",
	}
	if code, err := post(client, base+"/v1/users", reg); err != nil || code != http.StatusCreated {
		res.transportErr.Add(1)
		return
	}

	buy := map[string]any{"user_id": userID, "quantity": quantity}
	code, err := post(client, base+"/v1/purchases", buy)
	if err != nil {
		res.transportErr.Add(1)
		return
	}
	switch code {
	case http.StatusCreated:
		res.granted.Add(1)
	case http.StatusConflict:
		// Both sold-out and lock contention come back as 409; a fresh
		// buyer per request means contention is effectively absent, so
		// count the bucket as sold-out.
		res.soldOut.Add(1)
	case http.StatusTooManyRequests:
		res.rateLimited.Add(1)
	default:
		res.failed.Add(1)
	}
}

func post(client *http.Client, url string, body any) (int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// status prints the service's view of remaining stock.
func status(client *http.Client, base, label string) {
	resp, err := client.Get(base + "/v1/tickets/status")
	if err != nil {
		log.Printf("status (%s): unreachable: %v", label, err)
		return
	}
	defer resp.Body.Close()
	var body struct {
		Available int64 `json:"available_tickets"`
		SoldOut   bool  `json:"sold_out"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("status (%s): bad response: %v", label, err)
		return
	}
	fmt.Printf("stock (%s): available=%d sold_out=%v\n", label, body.Available, body.SoldOut)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
