package leaderboard

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/codegrid/arena/internal/database/models"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sub(id, userID, problemID string, minute int, status models.SubmissionStatus, score, runtime int) models.Submission {
	contestID := "contest-1"
	return models.Submission{
		ID:        id,
		CreatedAt: baseTime.Add(time.Duration(minute) * time.Minute),
		UserID:    userID,
		ContestID: &contestID,
		ProblemID: problemID,
		Status:    status,
		Score:     score,
		Runtime:   runtime,
	}
}

func TestAggregateRanksAreConsecutiveAndDistinct(t *testing.T) {
	// Three users tied on every sort key.
	var subs []models.Submission
	for i, u := range []string{"alice", "bob", "carol"} {
		subs = append(subs, sub(fmt.Sprintf("s%d", i), u, "p1", i, models.StatusAccepted, 100, 50))
	}

	board := Aggregate("contest-1", subs)
	if len(board.Rankings) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(board.Rankings))
	}
	for i, entry := range board.Rankings {
		if entry.Rank != i+1 {
			t.Errorf("entry %d: expected rank %d, got %d", i, i+1, entry.Rank)
		}
	}
}

func TestAggregateTieBreakBySolvedCount(t *testing.T) {
	subs := []models.Submission{
		// A: 300 total over two problems, huge runtime.
		sub("s1", "userA", "p1", 1, models.StatusAccepted, 150, 9000),
		sub("s2", "userA", "p2", 2, models.StatusAccepted, 150, 9000),
		// B: 300 on one problem, tiny runtime.
		sub("s3", "userB", "p1", 3, models.StatusAccepted, 300, 1),
	}

	board := Aggregate("contest-1", subs)
	if board.Rankings[0].UserID != "userA" {
		t.Errorf("expected userA (2 solved) above userB (1 solved), got %s first", board.Rankings[0].UserID)
	}
	if board.Rankings[0].Rank != 1 || board.Rankings[1].Rank != 2 {
		t.Errorf("expected ranks 1,2, got %d,%d", board.Rankings[0].Rank, board.Rankings[1].Rank)
	}
}

func TestAggregateSolvedCounterIncrementsOncePerProblem(t *testing.T) {
	subs := []models.Submission{
		sub("s1", "alice", "p1", 1, models.StatusAccepted, 250, 100),
		// Faster accepted resubmission: replaces runtime, must not re-count.
		sub("s2", "alice", "p1", 10, models.StatusAccepted, 240, 40),
	}

	board := Aggregate("contest-1", subs)
	entry := board.Rankings[0]
	if entry.ProblemsSolved != 1 {
		t.Errorf("expected problems solved to stay 1, got %d", entry.ProblemsSolved)
	}
	if entry.Problems["p1"].Runtime != 40 {
		t.Errorf("expected runtime replaced by faster submission, got %d", entry.Problems["p1"].Runtime)
	}
	if entry.Problems["p1"].Score != 240 {
		t.Errorf("expected score of the kept submission, got %d", entry.Problems["p1"].Score)
	}
}

func TestAggregateSlowerAcceptedDoesNotReplace(t *testing.T) {
	subs := []models.Submission{
		sub("s1", "alice", "p1", 1, models.StatusAccepted, 250, 40),
		sub("s2", "alice", "p1", 10, models.StatusAccepted, 240, 100),
	}

	board := Aggregate("contest-1", subs)
	if got := board.Rankings[0].Problems["p1"].Runtime; got != 40 {
		t.Errorf("expected the faster entry to be kept, got runtime %d", got)
	}
}

func TestAggregateRejectedNeverReplacesAccepted(t *testing.T) {
	subs := []models.Submission{
		sub("s1", "alice", "p1", 1, models.StatusAccepted, 250, 40),
		sub("s2", "alice", "p1", 10, models.StatusWrongAnswer, 30, 0),
	}

	board := Aggregate("contest-1", subs)
	entry := board.Rankings[0]
	if entry.Problems["p1"].Status != models.StatusAccepted {
		t.Errorf("expected accepted entry kept, got %s", entry.Problems["p1"].Status)
	}
	if entry.TotalScore != 250 {
		t.Errorf("expected total score 250, got %d", entry.TotalScore)
	}
}

func TestAggregateAcceptedReplacesRejected(t *testing.T) {
	subs := []models.Submission{
		sub("s1", "alice", "p1", 1, models.StatusWrongAnswer, 30, 0),
		sub("s2", "alice", "p1", 10, models.StatusAccepted, 240, 55),
	}

	board := Aggregate("contest-1", subs)
	entry := board.Rankings[0]
	if entry.Problems["p1"].Status != models.StatusAccepted {
		t.Fatalf("expected accepted entry to replace rejected one")
	}
	if entry.ProblemsSolved != 1 {
		t.Errorf("expected 1 solved, got %d", entry.ProblemsSolved)
	}
}

func TestAggregateTotalRuntimeCountsOnlyAccepted(t *testing.T) {
	subs := []models.Submission{
		sub("s1", "alice", "p1", 1, models.StatusAccepted, 250, 40),
		sub("s2", "alice", "p2", 2, models.StatusWrongAnswer, 30, 70),
	}

	board := Aggregate("contest-1", subs)
	entry := board.Rankings[0]
	if entry.TotalRuntime != 40 {
		t.Errorf("expected total runtime 40 (accepted only), got %d", entry.TotalRuntime)
	}
	if entry.TotalScore != 280 {
		t.Errorf("expected total score 280 (all kept entries), got %d", entry.TotalScore)
	}
}

func TestAggregatePendingSubmissionsAreIgnored(t *testing.T) {
	subs := []models.Submission{
		sub("s1", "alice", "p1", 1, models.StatusPending, 0, 0),
	}
	board := Aggregate("contest-1", subs)
	if len(board.Rankings) != 0 {
		t.Errorf("expected no entries for pending-only submissions, got %d", len(board.Rankings))
	}
}

func TestAggregateIsDeterministicUnderPermutation(t *testing.T) {
	var subs []models.Submission
	users := []string{"u1", "u2", "u3", "u4"}
	problems := []string{"p1", "p2", "p3"}
	statuses := []models.SubmissionStatus{models.StatusAccepted, models.StatusWrongAnswer, models.StatusError}
	n := 0
	for _, u := range users {
		for _, p := range problems {
			for k := 0; k < 3; k++ {
				n++
				subs = append(subs, sub(
					fmt.Sprintf("s%03d", n), u, p, n,
					statuses[(n+k)%len(statuses)],
					(n*37)%300, (n*13)%500,
				))
			}
		}
	}

	reference := Aggregate("contest-1", subs)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]models.Submission, len(subs))
		copy(shuffled, subs)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		board := Aggregate("contest-1", shuffled)
		if !reflect.DeepEqual(board.Rankings, reference.Rankings) {
			t.Fatalf("trial %d: rankings differ under permutation", trial)
		}
	}
}
