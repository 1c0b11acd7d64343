package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	json "github.com/goccy/go-json"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numUsers     = 100
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
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
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies *hdrhistogram.Histogram
}

// world is the state seeded before the timed phases.
type world struct {
	tokens   []string
	mu       sync.RWMutex
	posts    []int64
	comments []int64
}

func (w *world) randomPost(rng *rand.Rand) int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.posts[rng.Intn(len(w.posts))]
}

func (w *world) randomComment(rng *rand.Rand) (int64, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.comments) == 0 {
		return 0, false
	}
	return w.comments[rng.Intn(len(w.comments))], true
}

func (w *world) addComment(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.comments = append(w.comments, id)
}

func main() {
	fmt.Println("=== PostIt Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Users: %d\n\n", numWorkers, testDuration, numUsers)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Seeding users and posts ---")
	w, err := seed()
	if err != nil {
		fmt.Printf("FAILED: %s\n", err)
		return
	}
	fmt.Printf("Seeded %d users, %d posts\n", len(w.tokens), len(w.posts))

	fmt.Println("\n--- Phase 1: Write-heavy (likes and comments) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.40:
			return doLikePost(rng, w)
		case r < 0.70:
			return doComment(rng, w)
		case r < 0.90:
			return doLikeComment(rng, w)
		default:
			return doListPosts()
		}
	})

	fmt.Println("\n--- Phase 2: Read-heavy (10% writes, 90% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.05:
			return doLikePost(rng, w)
		case r < 0.10:
			return doComment(rng, w)
		case r < 0.60:
			return doListPosts()
		default:
			return doGetPost(rng, w)
		}
	})
}

func seed() (*world, error) {
	w := &world{}
	runID := time.Now().UnixNano()
	for i := 0; i < numUsers; i++ {
		var resp struct {
			Token string `json:"token"`
		}
		creds := map[string]string{"username": fmt.Sprintf("load_%d_%d", runID, i), "password": "pw"}
		if _, err := call(http.MethodPost, "/signup", "", creds, &resp); err != nil {
			return nil, err
		}
		w.tokens = append(w.tokens, resp.Token)

		var post struct {
			ID int64 `json:"id"`
		}
		if _, err := call(http.MethodPost, "/posts", resp.Token, map[string]string{"text": fmt.Sprintf("post %d", i)}, &post); err != nil {
			return nil, err
		}
		w.posts = append(w.posts, post.ID)
	}
	return w, nil
}

func call(method, path, token string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
	}
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func timed(endpoint string, want int, fn func() (int, error)) result {
	start := time.Now()
	status, err := fn()
	lat := time.Since(start)
	return result{endpoint, status, lat, err != nil || status != want}
}

func doLikePost(rng *rand.Rand, w *world) result {
	token := w.tokens[rng.Intn(len(w.tokens))]
	id := w.randomPost(rng)
	return timed("POST /posts/{id}/like", http.StatusOK, func() (int, error) {
		return call(http.MethodPost, fmt.Sprintf("/posts/%d/like", id), token, nil, nil)
	})
}

func doComment(rng *rand.Rand, w *world) result {
	token := w.tokens[rng.Intn(len(w.tokens))]
	id := w.randomPost(rng)
	body := map[string]any{"text": ""}
	if rng.Float64() < 0.5 {
		body["pre_id"] = rng.Intn(5)
	} else {
		body["text"] = fmt.Sprintf("comment %d", rng.Int())
	}
	var comment struct {
		ID int64 `json:"id"`
	}
	r := timed("POST /posts/{id}/comments", http.StatusCreated, func() (int, error) {
		return call(http.MethodPost, fmt.Sprintf("/posts/%d/comments", id), token, body, &comment)
	})
	if !r.err {
		w.addComment(comment.ID)
	}
	return r
}

func doLikeComment(rng *rand.Rand, w *world) result {
	id, ok := w.randomComment(rng)
	if !ok {
		return doComment(rng, w)
	}
	token := w.tokens[rng.Intn(len(w.tokens))]
	return timed("POST /comments/{id}/like", http.StatusOK, func() (int, error) {
		return call(http.MethodPost, fmt.Sprintf("/comments/%d/like", id), token, nil, nil)
	})
}

func doListPosts() result {
	return timed("GET /posts", http.StatusOK, func() (int, error) {
		return call(http.MethodGet, "/posts", "", nil, nil)
	})
}

func doGetPost(rng *rand.Rand, w *world) result {
	id := w.randomPost(rng)
	return timed("GET /posts/{id}", http.StatusOK, func() (int, error) {
		return call(http.MethodGet, fmt.Sprintf("/posts/%d", id), "", nil, nil)
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
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
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				// microseconds, up to 10s
				s = &stats{latencies: hdrhistogram.New(1, 10_000_000, 3)}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			_ = s.latencies.RecordValue(max(r.latency.Microseconds(), 1))
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-28s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 94))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		h := s.latencies
		fmt.Printf("  %-28s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtMicros(int64(h.Mean())),
			fmtMicros(h.ValueAtQuantile(50)),
			fmtMicros(h.ValueAtQuantile(95)),
			fmtMicros(h.ValueAtQuantile(99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 94))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func fmtMicros(us int64) string {
	if us < 1000 {
		return fmt.Sprintf("%dµs", us)
	}
	return fmt.Sprintf("%.1fms", float64(us)/1000.0)
}
