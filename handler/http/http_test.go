package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/unkn0wn-root/greetcount"
	"github.com/unkn0wn-root/greetcount/provider/memory"
	redisprovider "github.com/unkn0wn-root/greetcount/provider/redis"
)

type countResponse struct {
	CountAccess int64  `json:"countAccess"`
	Message     string `json:"message"`
}

func newCounter(t *testing.T, opts greetcount.Options) greetcount.Counter {
	t.Helper()
	ctr, err := greetcount.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ctr.Close(context.Background()) })
	return ctr
}

func newCounterServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(CounterRouter(cfg))
	t.Cleanup(srv.Close)
	return srv
}

func fetchCount(srv *httptest.Server, path string) (countResponse, error) {
	var p countResponse

	res, err := http.Get(srv.URL + path)
	if err != nil {
		return p, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return p, fmt.Errorf("status %d, want 200", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		return p, fmt.Errorf("content-type %q, want application/json", ct)
	}

	err = json.NewDecoder(res.Body).Decode(&p)
	return p, err
}

func getCount(t *testing.T, srv *httptest.Server, path string) countResponse {
	t.Helper()
	p, err := fetchCount(srv, path)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestGreeterRouter(t *testing.T) {
	srv := httptest.NewServer(GreeterRouter(Config{}))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	if have, want := res.StatusCode, http.StatusOK; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := res.Header.Get("Content-Type"), "application/json"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := string(body), "{\"message\":\"Hello, World!\"}\n"; have != want {
		t.Errorf("have %q, want %q", have, want)
	}
}

func TestCounterSequentialRequests(t *testing.T) {
	srv := newCounterServer(t, Config{
		Counter: newCounter(t, greetcount.Options{Provider: memory.New(0)}),
	})

	for want := int64(1); want <= 10; want++ {
		p := getCount(t, srv, "/")
		if p.CountAccess != want || p.Message != "Hello, World!" {
			t.Fatalf("have %+v, want count %d", p, want)
		}
	}
}

func TestCounterRoutesAreIndependent(t *testing.T) {
	srv := newCounterServer(t, Config{
		Counter: newCounter(t, greetcount.Options{Provider: memory.New(0)}),
	})

	getCount(t, srv, "/")
	getCount(t, srv, "/")

	p := getCount(t, srv, "/example")
	if p.CountAccess != 1 || p.Message != "EXAMPLE ROUTE!" {
		t.Fatalf("have %+v, want {1 EXAMPLE ROUTE!}", p)
	}
	if p := getCount(t, srv, "/"); p.CountAccess != 3 {
		t.Fatalf("have %d, want 3", p.CountAccess)
	}
}

func TestCounterPayloadShape(t *testing.T) {
	srv := newCounterServer(t, Config{
		Counter: newCounter(t, greetcount.Options{Provider: memory.New(0)}),
	})

	res, err := http.Get(srv.URL + "/example")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	if have, want := string(body), "{\"countAccess\":1,\"message\":\"EXAMPLE ROUTE!\"}\n"; have != want {
		t.Fatalf("have %q, want %q", have, want)
	}
}

func TestCounterWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := newCounterServer(t, Config{
		Counter: newCounter(t, greetcount.Options{
			Provider: redisprovider.Dial(mr.Addr(), "", 0),
		}),
	})

	if err := mr.Set("/example", "41"); err != nil {
		t.Fatal(err)
	}
	if p := getCount(t, srv, "/example"); p.CountAccess != 42 {
		t.Fatalf("have %d, want 42", p.CountAccess)
	}
	if p := getCount(t, srv, "/example"); p.CountAccess != 43 {
		t.Fatalf("have %d, want 43", p.CountAccess)
	}
	if p := getCount(t, srv, "/"); p.CountAccess != 1 {
		t.Fatalf("have %d, want 1", p.CountAccess)
	}
}

// TestConcurrentRequestsMayShareCounts: concurrent hits are not serialized,
// so duplicate counts are allowed; every count stays within [1, k] and the
// stored value never exceeds k.
func TestConcurrentRequestsMayShareCounts(t *testing.T) {
	mr := miniredis.RunT(t)
	ctr, err := greetcount.New(greetcount.Options{
		Provider: redisprovider.Dial(mr.Addr(), "", 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(CounterRouter(Config{Counter: ctr}))
	defer srv.Close()

	const k = 20
	var wg sync.WaitGroup
	counts := make(chan int64, k)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := fetchCount(srv, "/")
			if err != nil {
				t.Error(err)
				return
			}
			counts <- p.CountAccess
		}()
	}
	wg.Wait()
	close(counts)

	for n := range counts {
		if n < 1 || n > k {
			t.Fatalf("count %d outside [1, %d]", n, k)
		}
	}
	if err := ctr.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	stored, err := mr.Get("/")
	if err != nil {
		t.Fatal(err)
	}
	if n, err := strconv.Atoi(stored); err != nil || n < 1 || n > k {
		t.Fatalf("stored=%q want a count in [1, %d]", stored, k)
	}
}

func TestCounterAtomicModeWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := newCounterServer(t, Config{
		Counter: newCounter(t, greetcount.Options{
			Provider: redisprovider.Dial(mr.Addr(), "", 0),
			Mode:     greetcount.ModeAtomic,
		}),
	})

	const k = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int64]bool, k)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := fetchCount(srv, "/example")
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			seen[p.CountAccess] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != k {
		t.Fatalf("distinct counts=%d want %d", len(seen), k)
	}
	if stored, _ := mr.Get("/example"); stored != "20" {
		t.Fatalf("stored=%q want 20", stored)
	}
}

func unreachableCounter(t *testing.T) greetcount.Counter {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatal(err)
	}
	addr := mr.Addr()
	mr.Close()

	return newCounter(t, greetcount.Options{Provider: redisprovider.Dial(addr, "", 0)})
}

func TestUnreachableCacheLeavesRequestUnanswered(t *testing.T) {
	srv := newCounterServer(t, Config{Counter: unreachableCounter(t)})

	client := &http.Client{Timeout: 300 * time.Millisecond}
	res, err := client.Get(srv.URL + "/")
	if err == nil {
		res.Body.Close()
		t.Fatalf("expected no response, got status %d", res.StatusCode)
	}
	var ue *url.Error
	if !errors.As(err, &ue) || !ue.Timeout() {
		t.Fatalf("have %v, want client timeout", err)
	}
}

func TestUnreachableCacheErrorPolicy(t *testing.T) {
	srv := newCounterServer(t, Config{
		Counter:       unreachableCounter(t),
		OnReadFailure: FailureRespond,
	})

	res, err := http.Get(srv.URL + "/example")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if have, want := res.StatusCode, http.StatusServiceUnavailable; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}
	var p struct {
		Errors []apiError `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if len(p.Errors) != 1 || p.Errors[0].Code != http.StatusServiceUnavailable {
		t.Fatalf("have %+v", p)
	}
}

func TestUnknownPathAndMethod(t *testing.T) {
	srv := newCounterServer(t, Config{
		Counter: newCounter(t, greetcount.Options{Provider: memory.New(0)}),
	})

	res, err := http.Get(srv.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if have, want := res.StatusCode, http.StatusNotFound; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	res, err = http.Post(srv.URL+"/", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if have, want := res.StatusCode, http.StatusMethodNotAllowed; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := newCounterServer(t, Config{
		Counter: newCounter(t, greetcount.Options{
			Provider: redisprovider.Dial(mr.Addr(), "", 0),
		}),
	})

	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if have, want := res.StatusCode, http.StatusOK; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	mr.SetError("LOADING")
	res, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if have, want := res.StatusCode, http.StatusInternalServerError; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}
	var p struct {
		Healthy  bool            `json:"healthy"`
		Services map[string]bool `json:"services"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.Healthy || p.Services["cache"] {
		t.Fatalf("have %+v, want unhealthy cache", p)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newCounterServer(t, Config{
		Counter:   newCounter(t, greetcount.Options{Provider: memory.New(0)}),
		RateLimit: 1,
	})

	getCount(t, srv, "/")

	res, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if have, want := res.StatusCode, http.StatusTooManyRequests; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}
}

func TestInstrumentLabelsRouteAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := newCounterServer(t, Config{
		Component:  "test",
		Counter:    newCounter(t, greetcount.Options{Provider: memory.New(0)}),
		Registerer: reg,
	})

	getCount(t, srv, "/")
	getCount(t, srv, "/")
	getCount(t, srv, "/example")

	n, err := testutil.GatherAndCount(reg, "http_request_count")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("series=%d want 2 (BASE and EXAMPLE)", n)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next(ctx, w, r)
			}
		}
	}

	h := Wrap(Chain(mark("a"), mark("b")), func(context.Context, http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	})
	h(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if have, want := len(order), 3; have != want || order[0] != "a" || order[1] != "b" {
		t.Fatalf("have %v, want [a b handler]", order)
	}
}

func TestParseFailurePolicy(t *testing.T) {
	if p, err := ParseFailurePolicy(""); err != nil || p != FailureHang {
		t.Fatalf("have %v %v, want hang", p, err)
	}
	if p, err := ParseFailurePolicy("error"); err != nil || p != FailureRespond {
		t.Fatalf("have %v %v, want error", p, err)
	}
	if _, err := ParseFailurePolicy("retry"); err == nil {
		t.Fatalf("expected error")
	}
}
