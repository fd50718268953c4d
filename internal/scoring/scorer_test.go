package scoring

import (
	"testing"
	"time"

	"github.com/codegrid/arena/internal/database/models"
	"github.com/codegrid/arena/internal/judge"
)

func window(start time.Time, duration time.Duration) *Window {
	return &Window{Start: start, End: start.Add(duration)}
}

func passing(runtimeMS, memoryKB int) judge.TestResult {
	return judge.TestResult{StatusID: judge.StatusAccepted, TimeMS: runtimeMS, MemoryKB: memoryKB}
}

func TestScoreFullPassMidWindow(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w := window(start, 60*time.Minute)

	out := Score(models.DifficultyMedium, w, start.Add(30*time.Minute), []judge.TestResult{
		passing(10, 1024),
		passing(20, 2048),
	})

	if out.Status != models.StatusAccepted {
		t.Fatalf("expected Accepted, got %s", out.Status)
	}
	// 200 + round(200 * 0.5 * 0.5)
	if out.Score != 250 {
		t.Errorf("expected score 250, got %d", out.Score)
	}
	if out.Runtime != 30 {
		t.Errorf("expected accumulated runtime 30ms, got %d", out.Runtime)
	}
	if out.Memory != 2048 {
		t.Errorf("expected peak memory 2048KB, got %d", out.Memory)
	}
	if out.TestsPassed != 2 || out.TestsTotal != 2 {
		t.Errorf("expected 2/2 tests, got %d/%d", out.TestsPassed, out.TestsTotal)
	}
}

func TestScorePartialCredit(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w := window(start, time.Hour)

	results := []judge.TestResult{
		passing(5, 100),
		passing(5, 100),
		passing(5, 100),
		{StatusID: judge.StatusWrongAnswer, Stderr: "diff mismatch"},
		{StatusID: judge.StatusWrongAnswer, Stderr: "diff mismatch"},
	}
	out := Score(models.DifficultyHard, w, start.Add(10*time.Minute), results)

	if out.Status != models.StatusWrongAnswer {
		t.Fatalf("expected WrongAnswer, got %s", out.Status)
	}
	// round(150 * 3/5)
	if out.Score != 90 {
		t.Errorf("expected score 90, got %d", out.Score)
	}
	if out.TestsPassed != 3 {
		t.Errorf("expected 3 passed, got %d", out.TestsPassed)
	}
}

func TestScoreZeroWhenNothingPasses(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	out := Score(models.DifficultyEasy, window(start, time.Hour), start, []judge.TestResult{
		{StatusID: judge.StatusWrongAnswer, Stderr: "wrong"},
	})
	if out.Score != 0 {
		t.Errorf("expected score 0, got %d", out.Score)
	}
}

func TestScoreTimeRatioIsNotClamped(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w := window(start, 60*time.Minute)

	// Evaluated half a window after the end: ratio = -0.5, bonus = -75.
	out := Score(models.DifficultyHard, w, start.Add(90*time.Minute), []judge.TestResult{passing(1, 1)})

	if out.Score != 225 {
		t.Errorf("expected score 225 (base 300 with negative bonus), got %d", out.Score)
	}
}

func TestScoreLastFailureDeterminesStatus(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w := window(start, time.Hour)

	results := []judge.TestResult{
		{StatusID: judge.StatusWrongAnswer, Stderr: "wrong answer on test 1"},
		passing(10, 100),
		{StatusID: 5, Stderr: "time limit exceeded"},
	}
	out := Score(models.DifficultyEasy, w, start, results)

	if out.Status != models.StatusError {
		t.Fatalf("expected Error (last failure wins), got %s", out.Status)
	}
	if out.ErrorMessage == nil || *out.ErrorMessage != "time limit exceeded" {
		t.Errorf("expected message of the last failing test, got %v", out.ErrorMessage)
	}
}

func TestScoreCompileErrorUsesCompileOutput(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	out := Score(models.DifficultyEasy, window(start, time.Hour), start, []judge.TestResult{
		{StatusID: 6, CompileOutput: "main.cpp:3: expected ';'"},
	})
	if out.Status != models.StatusCompilerError {
		t.Fatalf("expected CompilerError, got %s", out.Status)
	}
	if out.ErrorMessage == nil || *out.ErrorMessage != "main.cpp:3: expected ';'" {
		t.Errorf("expected compile output as message, got %v", out.ErrorMessage)
	}
}

func TestScorePracticeHasNoTimeBonus(t *testing.T) {
	out := Score(models.DifficultyMedium, nil, time.Now(), []judge.TestResult{passing(1, 1)})
	if out.Score != 200 {
		t.Errorf("expected base score 200 for practice, got %d", out.Score)
	}
}
