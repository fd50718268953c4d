package leaderboard

import (
	"sort"
	"time"

	"github.com/codegrid/arena/internal/database/models"
)

// ProblemResult is a user's best known state for one problem.
type ProblemResult struct {
	Status      models.SubmissionStatus `json:"status"`
	Score       int                     `json:"score"`
	Runtime     int                     `json:"runtime"`
	SubmittedAt time.Time               `json:"submitted_at"`
}

// Entry is one user's row in a ranked leaderboard.
type Entry struct {
	Rank           int                      `json:"rank"`
	UserID         string                   `json:"user_id"`
	Username       string                   `json:"username,omitempty"`
	Nickname       string                   `json:"nickname,omitempty"`
	TotalScore     int                      `json:"total_score"`
	ProblemsSolved int                      `json:"problems_solved"`
	TotalRuntime   int                      `json:"total_runtime"`
	Problems       map[string]ProblemResult `json:"problems"`
}

// Board is a ranked leaderboard, either a live recomputed view or the
// finalized snapshot.
type Board struct {
	ContestID   string    `json:"contest_id"`
	Rankings    []Entry   `json:"rankings"`
	IsFinalized bool      `json:"is_finalized"`
	LastUpdated time.Time `json:"last_updated"`
}

type pairKey struct {
	userID    string
	problemID string
}

// Aggregate folds a contest's submissions into a ranked leaderboard. It is a
// pure function of its input: the same submission set always yields identical
// rankings, which lets the live view, the manual finalize and the scheduled
// sweep all share this one implementation.
//
// The fold processes submissions in chronological order (ties broken by id).
// A (user, problem) entry is replaced iff there is no entry yet, or the new
// submission is Accepted and either the stored entry is not Accepted or the
// new runtime is strictly lower. The problems-solved counter increments
// exactly once per pair, on the first Accepted submission; faster accepted
// resubmissions update the displayed score and runtime without re-counting.
func Aggregate(contestID string, submissions []models.Submission) *Board {
	subs := make([]models.Submission, len(submissions))
	copy(subs, submissions)
	sort.SliceStable(subs, func(i, j int) bool {
		if !subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].CreatedAt.Before(subs[j].CreatedAt)
		}
		return subs[i].ID < subs[j].ID
	})

	best := make(map[pairKey]ProblemResult)
	counted := make(map[pairKey]bool)
	solved := make(map[string]int)
	seen := make(map[string]bool)
	var userOrder []string

	for _, sub := range subs {
		if !sub.Status.Terminal() {
			continue
		}
		if !seen[sub.UserID] {
			seen[sub.UserID] = true
			userOrder = append(userOrder, sub.UserID)
		}

		key := pairKey{sub.UserID, sub.ProblemID}
		current, exists := best[key]

		replace := !exists ||
			(sub.Status == models.StatusAccepted &&
				(current.Status != models.StatusAccepted || sub.Runtime < current.Runtime))
		if !replace {
			continue
		}

		best[key] = ProblemResult{
			Status:      sub.Status,
			Score:       sub.Score,
			Runtime:     sub.Runtime,
			SubmittedAt: sub.CreatedAt,
		}
		if sub.Status == models.StatusAccepted && !counted[key] {
			counted[key] = true
			solved[sub.UserID]++
		}
	}

	entries := make([]Entry, 0, len(userOrder))
	for _, userID := range userOrder {
		entry := Entry{
			UserID:         userID,
			ProblemsSolved: solved[userID],
			Problems:       make(map[string]ProblemResult),
		}
		for key, result := range best {
			if key.userID != userID {
				continue
			}
			entry.Problems[key.problemID] = result
			entry.TotalScore += result.Score
			if result.Status == models.StatusAccepted {
				entry.TotalRuntime += result.Runtime
			}
		}
		entries = append(entries, entry)
	}

	// Deterministic base order before the ranking sort, so full-key ties
	// still come out identically on every fold.
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		if entries[i].ProblemsSolved != entries[j].ProblemsSolved {
			return entries[i].ProblemsSolved > entries[j].ProblemsSolved
		}
		return entries[i].TotalRuntime < entries[j].TotalRuntime
	})

	// Ranks are distinct and consecutive even for ties.
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return &Board{
		ContestID:   contestID,
		Rankings:    entries,
		LastUpdated: time.Now(),
	}
}
