package scoring

import (
	"math"
	"time"

	"github.com/codegrid/arena/internal/database/models"
	"github.com/codegrid/arena/internal/judge"
)

// Base score for a fully accepted solution, per difficulty.
var difficultyBase = map[models.Difficulty]int{
	models.DifficultyEasy:   100,
	models.DifficultyMedium: 200,
	models.DifficultyHard:   300,
}

// Base for partial credit when only some hidden tests pass.
var partialBase = map[models.Difficulty]int{
	models.DifficultyEasy:   50,
	models.DifficultyMedium: 100,
	models.DifficultyHard:   150,
}

// Window is a contest's [start, end] time bounds. A nil window means a
// practice submission, which earns the difficulty base with no time bonus.
type Window struct {
	Start time.Time
	End   time.Time
}

// Outcome is the scored verdict of one submission.
type Outcome struct {
	Status       models.SubmissionStatus
	TestsPassed  int
	TestsTotal   int
	Runtime      int // sum over passed tests, ms
	Memory       int // max over passed tests, KB
	Score        int
	ErrorMessage *string
}

// Score folds per-test judge verdicts into a submission outcome.
//
// A test passes iff its status id is Accepted (3). Passing tests accumulate
// runtime and track peak memory. Every failing test overwrites the reported
// status and error message, so when several tests fail for different reasons
// the LAST one inspected wins; that precedence is long-standing observable
// behavior and is kept as-is.
//
// A full pass earns base + round(base * 0.5 * timeRatio), where timeRatio is
// 1.0 at contest start and 0.0 at contest end. The ratio is deliberately not
// clamped: a submission evaluated after the window (e.g. judge delay) earns a
// negative bonus.
func Score(difficulty models.Difficulty, window *Window, submittedAt time.Time, results []judge.TestResult) Outcome {
	out := Outcome{
		Status:     models.StatusAccepted,
		TestsTotal: len(results),
	}

	for _, r := range results {
		if r.StatusID == judge.StatusAccepted {
			out.TestsPassed++
			out.Runtime += r.TimeMS
			if r.MemoryKB > out.Memory {
				out.Memory = r.MemoryKB
			}
			continue
		}

		switch r.StatusID {
		case judge.StatusWrongAnswer:
			out.Status = models.StatusWrongAnswer
		case 6: // compilation error
			out.Status = models.StatusCompilerError
		default:
			out.Status = models.StatusError
		}
		msg := r.CompileOutput
		if msg == "" {
			msg = r.Stderr
		}
		out.ErrorMessage = &msg
	}

	switch {
	case out.Status == models.StatusAccepted:
		base := difficultyBase[difficulty]
		if window == nil {
			out.Score = base
			break
		}
		ratio := 1 - float64(submittedAt.Sub(window.Start))/float64(window.End.Sub(window.Start))
		out.Score = base + int(math.Round(float64(base)*0.5*ratio))
	case out.TestsPassed > 0:
		out.Score = int(math.Round(float64(partialBase[difficulty]) * float64(out.TestsPassed) / float64(out.TestsTotal)))
	default:
		out.Score = 0
	}

	return out
}
