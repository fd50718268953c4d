package contest

import (
	"context"
	"fmt"
	"time"

	"github.com/codegrid/arena/internal/apperrors"
	"github.com/codegrid/arena/internal/database"
	"github.com/codegrid/arena/internal/database/models"
	"github.com/codegrid/arena/internal/judge"
	"github.com/codegrid/arena/internal/pubsub"
	"github.com/codegrid/arena/internal/scoring"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Submit validates a scored contest submission, persists it as Pending and
// enqueues it for judging. It returns the submission id immediately; the
// verdict arrives asynchronously via the submission record and the contest's
// realtime topic.
//
// The Pending row is written before the judge is ever contacted, so a judge
// outage leaves an auditable record instead of losing the submission.
func (s *Service) Submit(ctx context.Context, userID, contestID, problemID, code, language string) (string, error) {
	contest, err := database.GetContest(s.db, contestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", fmt.Errorf("%w: contest %s", apperrors.ErrNotFound, contestID)
		}
		return "", err
	}

	var problem *models.Problem
	for i := range contest.Problems {
		if contest.Problems[i].ID == problemID {
			problem = &contest.Problems[i]
			break
		}
	}
	if problem == nil {
		return "", fmt.Errorf("%w: problem %s does not belong to contest %s", apperrors.ErrNotFound, problemID, contestID)
	}

	now := time.Now()
	if now.Before(contest.StartTime) || now.After(contest.EndTime) {
		return "", fmt.Errorf("%w: contest runs %s to %s", apperrors.ErrContestWindow,
			contest.StartTime.Format(time.RFC3339), contest.EndTime.Format(time.RFC3339))
	}

	canonical, _, err := judge.NormalizeLanguage(language)
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", fmt.Errorf("%w: empty source code", apperrors.ErrValidation)
	}

	sub := models.Submission{
		ID:        uuid.NewString(),
		UserID:    userID,
		ContestID: &contestID,
		ProblemID: problemID,
		Code:      code,
		Language:  canonical,
		Status:    models.StatusPending,
	}
	if err := database.CreateSubmission(s.db, &sub); err != nil {
		return "", err
	}

	select {
	case s.queue <- judgeJob{submissionID: sub.ID}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	zap.S().Infof("submission %s by %s for problem %s queued", sub.ID, userID, problemID)
	return sub.ID, nil
}

// SubmitPractice persists and judges a submission outside any contest window.
// Practice submissions score the difficulty base and never touch a
// leaderboard.
func (s *Service) SubmitPractice(ctx context.Context, userID, problemID, code, language string) (string, error) {
	if _, err := database.GetProblem(s.db, problemID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", fmt.Errorf("%w: problem %s", apperrors.ErrNotFound, problemID)
		}
		return "", err
	}

	canonical, _, err := judge.NormalizeLanguage(language)
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", fmt.Errorf("%w: empty source code", apperrors.ErrValidation)
	}

	sub := models.Submission{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProblemID: problemID,
		Code:      code,
		Language:  canonical,
		Status:    models.StatusPending,
	}
	if err := database.CreateSubmission(s.db, &sub); err != nil {
		return "", err
	}

	select {
	case s.queue <- judgeJob{submissionID: sub.ID}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return sub.ID, nil
}

// process runs the full judge -> score -> persist -> notify pipeline for one
// queued submission.
func (s *Service) process(ctx context.Context, job judgeJob) {
	sub, err := database.GetSubmission(s.db, job.submissionID)
	if err != nil {
		zap.S().Errorf("failed to load queued submission %s: %v", job.submissionID, err)
		return
	}
	if sub.Status.Terminal() {
		zap.S().Warnf("submission %s already has terminal status %s, skipping", sub.ID, sub.Status)
		return
	}

	problem, err := database.GetProblem(s.db, sub.ProblemID)
	if err != nil {
		zap.S().Errorf("problem %s for submission %s not found: %v", sub.ProblemID, sub.ID, err)
		return
	}

	var window *scoring.Window
	if sub.ContestID != nil {
		contest, err := database.GetContest(s.db, *sub.ContestID)
		if err != nil {
			zap.S().Errorf("contest %s for submission %s not found: %v", *sub.ContestID, sub.ID, err)
			return
		}
		window = &scoring.Window{Start: contest.StartTime, End: contest.EndTime}
	}

	results, err := s.runTests(ctx, sub.Code, sub.Language, hiddenTests(problem))
	if err != nil {
		// The Pending record stays persisted for inspection and a later
		// retry; judging failure never rolls the submission back.
		zap.S().Errorf("judging failed for submission %s: %v", sub.ID, err)
		return
	}

	outcome := scoring.Score(problem.Difficulty, window, sub.CreatedAt, results)
	terminal := models.Submission{
		Status:       outcome.Status,
		Runtime:      outcome.Runtime,
		Memory:       outcome.Memory,
		TestsPassed:  outcome.TestsPassed,
		TestsTotal:   outcome.TestsTotal,
		Score:        outcome.Score,
		ErrorMessage: outcome.ErrorMessage,
	}
	if err := database.FinishSubmission(s.db, sub.ID, &terminal); err != nil {
		zap.S().Errorf("failed to persist verdict for submission %s: %v", sub.ID, err)
		return
	}
	zap.S().Infof("submission %s judged: %s, %d/%d tests, score %d",
		sub.ID, outcome.Status, outcome.TestsPassed, outcome.TestsTotal, outcome.Score)

	if outcome.Status == models.StatusAccepted {
		newlySolved, err := database.MarkProblemSolved(s.db, sub.UserID, sub.ProblemID)
		if err != nil {
			zap.S().Errorf("failed to update solved set for user %s: %v", sub.UserID, err)
		} else if newlySolved && sub.ContestID != nil {
			s.broker.Publish(*sub.ContestID, pubsub.Event{
				Kind:      pubsub.KindProfileUpdate,
				ContestID: *sub.ContestID,
				Payload:   map[string]string{"userId": sub.UserID, "problemSolved": sub.ProblemID},
			})
		}
	}

	if sub.ContestID == nil {
		return
	}

	if err := database.RegisterForContest(s.db, sub.UserID, *sub.ContestID); err != nil {
		zap.S().Errorf("failed to register %s as participant of %s: %v", sub.UserID, *sub.ContestID, err)
	}

	s.cache.Invalidate(*sub.ContestID)
	board, err := s.Leaderboard(*sub.ContestID)
	if err != nil {
		zap.S().Errorf("failed to recompute leaderboard for contest %s: %v", *sub.ContestID, err)
		return
	}
	s.broker.Publish(*sub.ContestID, pubsub.Event{
		Kind:      pubsub.KindLeaderboardUpdate,
		ContestID: *sub.ContestID,
		Payload:   board,
	})
}

func (s *Service) runTests(ctx context.Context, code, language string, cases []models.TestCase) ([]judge.TestResult, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("%w: problem has no test cases", apperrors.ErrValidation)
	}

	_, languageID, err := judge.NormalizeLanguage(language)
	if err != nil {
		return nil, err
	}

	tests := make([]judge.Test, 0, len(cases))
	for _, tc := range cases {
		tests = append(tests, judge.Test{
			Code:           code,
			LanguageID:     languageID,
			Stdin:          tc.Stdin,
			ExpectedOutput: tc.ExpectedOutput,
		})
	}

	tokens, err := s.judge.SubmitBatch(ctx, tests)
	if err != nil {
		return nil, err
	}
	return s.judge.AwaitResults(ctx, tokens)
}

func hiddenTests(problem *models.Problem) []models.TestCase {
	var cases []models.TestCase
	for _, tc := range problem.TestCases {
		if tc.Hidden {
			cases = append(cases, tc)
		}
	}
	return cases
}

func visibleTests(problem *models.Problem) []models.TestCase {
	var cases []models.TestCase
	for _, tc := range problem.TestCases {
		if !tc.Hidden {
			cases = append(cases, tc)
		}
	}
	return cases
}
