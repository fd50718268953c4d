package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/codegrid/arena/internal/apperrors"
	"github.com/codegrid/arena/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// User CRUD
func CreateUser(db *gorm.DB, user *models.User) error {
	return db.Create(user).Error
}

func GetUserByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUsersByIDs(db *gorm.DB, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// MarkProblemSolved appends problemID to the user's solved set. It returns
// true only when the problem was not in the set before, so the caller can tell
// a first solve from an accepted resubmission.
func MarkProblemSolved(db *gorm.DB, userID, problemID string) (bool, error) {
	newlySolved := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}
		for _, id := range user.SolvedProblems {
			if id == problemID {
				return nil
			}
		}
		user.SolvedProblems = append(user.SolvedProblems, problemID)
		newlySolved = true
		return tx.Save(&user).Error
	})
	return newlySolved, err
}

// Contest CRUD
func CreateContest(db *gorm.DB, contest *models.Contest) error {
	return db.Create(contest).Error
}

func GetContest(db *gorm.DB, id string) (*models.Contest, error) {
	var contest models.Contest
	if err := db.Preload("Problems").Where("id = ?", id).First(&contest).Error; err != nil {
		return nil, err
	}
	return &contest, nil
}

func GetAllContests(db *gorm.DB) ([]models.Contest, error) {
	var contests []models.Contest
	if err := db.Order("start_time desc").Find(&contests).Error; err != nil {
		return nil, err
	}
	return contests, nil
}

func UpdateContest(db *gorm.DB, contest *models.Contest) error {
	return db.Save(contest).Error
}

func DeleteContest(db *gorm.DB, contestID string) error {
	return db.Delete(&models.Contest{}, "id = ?", contestID).Error
}

// GetEndedContestsWithoutLeaderboard returns contests whose window has elapsed
// and that have no finalized leaderboard yet. The finalization sweep runs on
// exactly this set.
func GetEndedContestsWithoutLeaderboard(db *gorm.DB, now time.Time) ([]models.Contest, error) {
	var contests []models.Contest
	err := db.Where("end_time < ?", now).
		Where("id NOT IN (?)", db.Model(&models.Leaderboard{}).Select("contest_id")).
		Find(&contests).Error
	if err != nil {
		return nil, err
	}
	return contests, nil
}

// Problem CRUD
func CreateProblem(db *gorm.DB, problem *models.Problem) error {
	return db.Create(problem).Error
}

func GetProblem(db *gorm.DB, id string) (*models.Problem, error) {
	var problem models.Problem
	if err := db.Preload("TestCases").Where("id = ?", id).First(&problem).Error; err != nil {
		return nil, err
	}
	return &problem, nil
}

func DeleteProblem(db *gorm.DB, problemID string) error {
	return db.Delete(&models.Problem{}, "id = ?", problemID).Error
}

// Participants
func RegisterForContest(db *gorm.DB, userID, contestID string) error {
	participant := models.ContestParticipant{
		UserID:    userID,
		ContestID: contestID,
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&participant).Error
}

func IsUserRegisteredForContest(db *gorm.DB, userID, contestID string) (bool, error) {
	var count int64
	err := db.Model(&models.ContestParticipant{}).
		Where("user_id = ? AND contest_id = ?", userID, contestID).
		Count(&count).Error
	return count > 0, err
}

func GetUserContestIDs(db *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.ContestParticipant{}).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Pluck("contest_id", &ids).Error
	return ids, err
}

// Submission CRUD
func CreateSubmission(db *gorm.DB, sub *models.Submission) error {
	return db.Create(sub).Error
}

func GetSubmission(db *gorm.DB, id string) (*models.Submission, error) {
	var sub models.Submission
	if err := db.Where("id = ?", id).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// FinishSubmission records the terminal outcome of a submission. The WHERE
// clause only matches the Pending row, so the Pending -> terminal transition
// can happen at most once even if two workers race on the same submission.
func FinishSubmission(db *gorm.DB, id string, result *models.Submission) error {
	if !result.Status.Terminal() {
		return fmt.Errorf("%w: refusing to finish submission %s with non-terminal status %s",
			apperrors.ErrInternal, id, result.Status)
	}
	res := db.Model(&models.Submission{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":        result.Status,
			"runtime":       result.Runtime,
			"memory":        result.Memory,
			"tests_passed":  result.TestsPassed,
			"tests_total":   result.TestsTotal,
			"score":         result.Score,
			"error_message": result.ErrorMessage,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: submission %s already has a terminal status", apperrors.ErrInternal, id)
	}
	return nil
}

// GetSubmissionsForContest returns every submission of a contest in stable
// chronological order. The leaderboard fold depends on this ordering for its
// determinism, so ties on created_at are broken by id.
func GetSubmissionsForContest(db *gorm.DB, contestID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := db.Where("contest_id = ?", contestID).
		Order("created_at asc").Order("id asc").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func GetUserProblemSubmissions(db *gorm.DB, userID, contestID, problemID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := db.Where("user_id = ? AND contest_id = ? AND problem_id = ?", userID, contestID, problemID).
		Order("created_at desc").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func GetAllSubmissions(db *gorm.DB) ([]models.Submission, error) {
	var subs []models.Submission
	if err := db.Order("created_at desc").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// Leaderboard
func GetFinalizedLeaderboard(db *gorm.DB, contestID string) (*models.Leaderboard, error) {
	var lb models.Leaderboard
	err := db.Where("contest_id = ?", contestID).First(&lb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lb, nil
}

// SaveFinalizedLeaderboard inserts the one finalized leaderboard for a contest.
// The unique index on contest_id makes the existence check atomic: when the
// scheduled sweep and a manual finalize race, exactly one insert wins and the
// loser gets ErrAlreadyFinalized.
func SaveFinalizedLeaderboard(db *gorm.DB, lb *models.Leaderboard) error {
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contest_id"}},
		DoNothing: true,
	}).Create(lb)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: contest %s", apperrors.ErrAlreadyFinalized, lb.ContestID)
	}
	return nil
}
