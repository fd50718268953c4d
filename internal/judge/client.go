package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codegrid/arena/internal/apperrors"
	"github.com/codegrid/arena/internal/config"
	"go.uber.org/zap"
)

// Judge0 status ids. Anything above Processing is terminal.
const (
	StatusInQueue    = 1
	StatusProcessing = 2
	StatusAccepted   = 3
	StatusWrongAnswer = 4
)

// Test is one execution to dispatch to the judge.
type Test struct {
	Code           string
	LanguageID     int
	Stdin          string
	ExpectedOutput string
}

// TestResult is the terminal verdict of one test execution.
type TestResult struct {
	StatusID      int
	TimeMS        int
	MemoryKB      int
	Stdout        string
	Stderr        string
	CompileOutput string
}

// Client talks the judge's batch submit/poll protocol.
type Client struct {
	baseURL      string
	authToken    string
	pollInterval time.Duration
	pollBackoff  time.Duration
	maxWait      time.Duration
	http         *http.Client
}

func NewClient(cfg config.Judge) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		authToken:    cfg.AuthToken,
		pollInterval: cfg.PollInterval.Std(),
		pollBackoff:  cfg.PollBackoff.Std(),
		maxWait:      cfg.MaxWait.Std(),
		http:         &http.Client{Timeout: 30 * time.Second},
	}
}

type wireSubmission struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

type wireToken struct {
	Token string `json:"token"`
}

type wireStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type wireResult struct {
	Status        wireStatus `json:"status"`
	Time          string     `json:"time"`
	Memory        int        `json:"memory"`
	Stdout        string     `json:"stdout"`
	Stderr        string     `json:"stderr"`
	CompileOutput string     `json:"compile_output"`
}

type wireBatchResults struct {
	Submissions []wireResult `json:"submissions"`
}

// SubmitBatch dispatches all tests of one submission as a single batch and
// returns one opaque token per test, in submission order.
func (c *Client) SubmitBatch(ctx context.Context, tests []Test) ([]string, error) {
	if len(tests) == 0 {
		return nil, fmt.Errorf("%w: no tests to submit", apperrors.ErrValidation)
	}

	subs := make([]wireSubmission, 0, len(tests))
	for _, t := range tests {
		subs = append(subs, wireSubmission{
			SourceCode:     t.Code,
			LanguageID:     t.LanguageID,
			Stdin:          t.Stdin,
			ExpectedOutput: t.ExpectedOutput,
		})
	}

	body, err := json.Marshal(map[string]interface{}{"submissions": subs})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/submissions/batch?base64_encoded=false"
	data, err := c.do(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var tokens []wireToken
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("%w: malformed batch response: %v", apperrors.ErrJudgeUnavailable, err)
	}
	if len(tokens) != len(tests) {
		return nil, fmt.Errorf("%w: expected %d tokens, got %d", apperrors.ErrJudgeUnavailable, len(tests), len(tokens))
	}

	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Token == "" {
			return nil, fmt.Errorf("%w: empty token in batch response", apperrors.ErrJudgeUnavailable)
		}
		out = append(out, t.Token)
	}
	return out, nil
}

// AwaitResults polls the batch status endpoint until every token reports a
// terminal status. Polling starts at the configured interval and backs off
// exponentially up to a cap; the overall wait is bounded, so a stuck judge
// surfaces as ErrJudgeTimeout instead of hanging the caller forever.
func (c *Client) AwaitResults(ctx context.Context, tokens []string) ([]TestResult, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens to await", apperrors.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, c.maxWait)
	defer cancel()

	url := fmt.Sprintf("%s/submissions/batch?tokens=%s&base64_encoded=false&fields=*",
		c.baseURL, strings.Join(tokens, ","))

	interval := c.pollInterval
	for {
		results, done, err := c.pollOnce(ctx, url, len(tokens))
		if err != nil {
			// A deadline can also fire mid-request; report it as a timeout
			// either way.
			if ctx.Err() == context.DeadlineExceeded {
				return nil, fmt.Errorf("%w: gave up after %s", apperrors.ErrJudgeTimeout, c.maxWait)
			}
			return nil, err
		}
		if done {
			return results, nil
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, fmt.Errorf("%w: gave up after %s", apperrors.ErrJudgeTimeout, c.maxWait)
			}
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		interval *= 2
		if interval > c.pollBackoff {
			interval = c.pollBackoff
		}
	}
}

func (c *Client) pollOnce(ctx context.Context, url string, want int) ([]TestResult, bool, error) {
	data, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}

	var batch wireBatchResults
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, false, fmt.Errorf("%w: malformed poll response: %v", apperrors.ErrJudgeUnavailable, err)
	}
	if len(batch.Submissions) != want {
		return nil, false, fmt.Errorf("%w: expected %d results, got %d", apperrors.ErrJudgeUnavailable, want, len(batch.Submissions))
	}

	results := make([]TestResult, 0, want)
	for _, r := range batch.Submissions {
		if r.Status.ID <= StatusProcessing {
			return nil, false, nil
		}
		results = append(results, TestResult{
			StatusID:      r.Status.ID,
			TimeMS:        parseSeconds(r.Time),
			MemoryKB:      r.Memory,
			Stdout:        r.Stdout,
			Stderr:        r.Stderr,
			CompileOutput: r.CompileOutput,
		})
	}
	return results, true, nil
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("X-Auth-Token", c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrJudgeUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", apperrors.ErrJudgeUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		zap.S().Warnf("judge returned %d for %s %s", resp.StatusCode, method, url)
		return nil, fmt.Errorf("%w: status %d", apperrors.ErrJudgeUnavailable, resp.StatusCode)
	}
	return data, nil
}

// parseSeconds converts the judge's fractional-seconds runtime ("0.042") to
// whole milliseconds.
func parseSeconds(s string) int {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(math.Round(f * 1000))
}
