package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func batchRefs(n int) []SessionRef {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	refs := make([]SessionRef, n)
	for i := range refs {
		refs[i] = SessionRef{
			SessionID: fmt.Sprintf("s%d", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return refs
}

func TestSessionRef_KeyStable(t *testing.T) {
	t.Parallel()
	ref := SessionRef{SessionID: "s1", CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	want := "s1-2025-06-01T10:00:00Z"
	if got := ref.Key(); got != want {
		t.Fatalf("Key() = %q, want %q", got, want)
	}
	if ref.Key() != ref.Key() {
		t.Fatal("Key must be deterministic")
	}

	// Same session id at a different creation time is a different row.
	other := SessionRef{SessionID: "s1", CreatedAt: ref.CreatedAt.Add(time.Second)}
	if ref.Key() == other.Key() {
		t.Fatal("distinct rows must not collide")
	}
}

func TestSentimentBatch_PartialFailures(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /sentiment/a1/{session}
		parts := strings.Split(r.URL.Path, "/")
		session := parts[len(parts)-1]
		if session == "s2" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"detail":"analysis failed"}`)
			return
		}
		fmt.Fprintf(w, `{"assistant_id":"a1","session_id":"%s","sentiment":"positive","message_count":4}`, session)
	}))
	defer srv.Close()

	c := New(srv.URL, WithoutExecutor())
	defer c.Close()

	refs := batchRefs(3)
	results := c.SentimentBatch(context.Background(), "a1", refs)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Ref != refs[i] {
			t.Fatalf("result %d out of order: %+v", i, res.Ref)
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("healthy sessions errored: %v %v", results[0].Err, results[2].Err)
	}
	if results[0].Sentiment == nil || results[0].Sentiment.Sentiment != "positive" {
		t.Fatalf("unexpected sentiment: %+v", results[0].Sentiment)
	}
	if results[1].Err == nil {
		t.Fatal("failing session should carry its error")
	}
	if results[1].Sentiment != nil {
		t.Fatalf("failed row must not carry data: %+v", results[1].Sentiment)
	}
}

func TestSentimentBatchStrict_AllOrNothing(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if strings.HasSuffix(r.URL.Path, "/s1") {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail":"no such session"}`)
			return
		}
		fmt.Fprint(w, `{"sentiment":"neutral","message_count":1}`)
	}))
	defer srv.Close()

	c := New(srv.URL, WithoutExecutor())
	defer c.Close()

	rows, err := c.SentimentBatchStrict(context.Background(), "a1", batchRefs(3))
	if err == nil {
		t.Fatal("expected batch error")
	}
	if rows != nil {
		t.Fatalf("strict batch must not return rows on failure: %+v", rows)
	}
	if !strings.Contains(err.Error(), "no such session") {
		t.Fatalf("first failure not surfaced: %v", err)
	}
}

func TestSentimentBatchStrict_AllHealthy(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sentiment":"positive","message_count":2}`)
	}))
	defer srv.Close()

	c := New(srv.URL, WithoutExecutor())
	defer c.Close()

	refs := batchRefs(5)
	rows, err := c.SentimentBatchStrict(context.Background(), "a1", refs)
	if err != nil {
		t.Fatalf("strict batch error: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Ref != refs[i] {
			t.Fatalf("row %d out of order: %+v", i, row.Ref)
		}
		if row.Sentiment == nil || row.Err != nil {
			t.Fatalf("row %d incomplete: %+v", i, row)
		}
	}
}

func TestSentimentBatch_ContextCancelled(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sentiment":"positive","message_count":2}`)
	}))
	defer srv.Close()

	c := New(srv.URL, WithoutExecutor())
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := c.SentimentBatch(ctx, "a1", batchRefs(3))
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Err == nil {
			t.Fatalf("row %d should carry the cancellation", i)
		}
	}
}
