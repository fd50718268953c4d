package judge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codegrid/arena/internal/apperrors"
	"github.com/codegrid/arena/internal/config"
)

func testClient(url string) *Client {
	return NewClient(config.Judge{
		URL:          url,
		PollInterval: config.Duration(5 * time.Millisecond),
		PollBackoff:  config.Duration(20 * time.Millisecond),
		MaxWait:      config.Duration(time.Second),
	})
}

func TestSubmitBatchReturnsTokensInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var body struct {
			Submissions []wireSubmission `json:"submissions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode batch body: %v", err)
		}
		tokens := make([]wireToken, len(body.Submissions))
		for i := range tokens {
			tokens[i] = wireToken{Token: body.Submissions[i].Stdin} // echo for order check
		}
		json.NewEncoder(w).Encode(tokens)
	}))
	defer server.Close()

	tokens, err := testClient(server.URL).SubmitBatch(context.Background(), []Test{
		{Code: "x", LanguageID: 54, Stdin: "t1"},
		{Code: "x", LanguageID: 54, Stdin: "t2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 2 || tokens[0] != "t1" || tokens[1] != "t2" {
		t.Errorf("tokens out of order: %v", tokens)
	}
}

func TestSubmitBatchMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "nope"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).SubmitBatch(context.Background(), []Test{{Code: "x", LanguageID: 54}})
	if !errors.Is(err, apperrors.ErrJudgeUnavailable) {
		t.Errorf("expected ErrJudgeUnavailable, got %v", err)
	}
}

func TestAwaitResultsPollsUntilTerminal(t *testing.T) {
	var polls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&polls, 1)
		status := StatusProcessing
		if n >= 3 {
			status = StatusAccepted
		}
		json.NewEncoder(w).Encode(wireBatchResults{Submissions: []wireResult{
			{Status: wireStatus{ID: status}, Time: "0.042", Memory: 1024},
		}})
	}))
	defer server.Close()

	results, err := testClient(server.URL).AwaitResults(context.Background(), []string{"tok-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&polls) < 3 {
		t.Errorf("expected at least 3 polls, got %d", polls)
	}
	if results[0].StatusID != StatusAccepted {
		t.Errorf("expected terminal status, got %d", results[0].StatusID)
	}
	if results[0].TimeMS != 42 {
		t.Errorf("expected 42ms parsed from \"0.042\", got %d", results[0].TimeMS)
	}
}

func TestAwaitResultsTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(wireBatchResults{Submissions: []wireResult{
			{Status: wireStatus{ID: StatusInQueue}},
		}})
	}))
	defer server.Close()

	client := NewClient(config.Judge{
		URL:          server.URL,
		PollInterval: config.Duration(5 * time.Millisecond),
		PollBackoff:  config.Duration(10 * time.Millisecond),
		MaxWait:      config.Duration(50 * time.Millisecond),
	})

	_, err := client.AwaitResults(context.Background(), []string{"tok-1"})
	if !errors.Is(err, apperrors.ErrJudgeTimeout) {
		t.Errorf("expected ErrJudgeTimeout, got %v", err)
	}
}

func TestAwaitResultsRespectsCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(wireBatchResults{Submissions: []wireResult{
			{Status: wireStatus{ID: StatusInQueue}},
		}})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := testClient(server.URL).AwaitResults(ctx, []string{"tok-1"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		in        string
		canonical string
		wantErr   bool
	}{
		{"cpp", "c++", false},
		{"C++", "c++", false},
		{"golang", "go", false},
		{"Python3", "python", false},
		{"java", "java", false},
		{"brainfuck", "", true},
	}
	for _, tc := range cases {
		canonical, id, err := NormalizeLanguage(tc.in)
		if tc.wantErr {
			if !errors.Is(err, apperrors.ErrUnsupportedLanguage) {
				t.Errorf("%q: expected ErrUnsupportedLanguage, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.in, err)
			continue
		}
		if canonical != tc.canonical {
			t.Errorf("%q: expected canonical %q, got %q", tc.in, tc.canonical, canonical)
		}
		if id == 0 {
			t.Errorf("%q: expected a judge language id", tc.in)
		}
	}
}
