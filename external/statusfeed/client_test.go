package statusfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/riskibarqy/fpl-pipeline/internal/platform/logging"
)

func TestFetchStatusChanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"aaData": [
			["Mohamed Salah", "42", "15 Aug", "100 to 75", "A to D", "Knock"],
			["Harry Kane", "7", "20 Aug", "75 to 100", "D to A", ""],
			["Short Row"]
		]}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{URL: server.URL, Logger: logging.NewNop()})

	records, err := client.FetchStatusChanges(context.Background())
	if err != nil {
		t.Fatalf("FetchStatusChanges: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.PlayerID != 42 || first.PlayerName != "Mohamed Salah" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.RawDate != "15 Aug" || first.Probability != "100 to 75" || first.Status != "A to D" {
		t.Fatalf("unexpected first record columns: %+v", first)
	}

	// Short rows come back empty so the pipeline can count them.
	if records[2].PlayerID != 0 || records[2].PlayerName != "" {
		t.Fatalf("expected an empty record for the short row, got %+v", records[2])
	}
}

func TestFetchStatusChanges_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"aaData": [["Mohamed Salah", "42", "15 Aug", "100 to 75", "A to D", ""]]}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{URL: server.URL, MaxRetries: 1, Logger: logging.NewNop()})

	records, err := client.FetchStatusChanges(context.Background())
	if err != nil {
		t.Fatalf("FetchStatusChanges after retry: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestFetchStatusChanges_ClientErrorIsFatal(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{URL: server.URL, MaxRetries: 3, Logger: logging.NewNop()})

	if _, err := client.FetchStatusChanges(context.Background()); err == nil {
		t.Fatal("expected an error for a 403 response")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("client errors must not retry, got %d attempts", got)
	}
}
