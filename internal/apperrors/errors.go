package apperrors

import "errors"

// Sentinel errors for the whole platform. Services wrap these with %w and the
// API layer maps them to HTTP status codes, so callers match with errors.Is.
var (
	ErrValidation          = errors.New("invalid request")
	ErrNotFound            = errors.New("entity not found")
	ErrContestWindow       = errors.New("contest is not accepting submissions at this time")
	ErrUnsupportedLanguage = errors.New("language is not supported")
	ErrJudgeUnavailable    = errors.New("judge service unavailable")
	ErrJudgeTimeout        = errors.New("judge did not finish in time")
	ErrAlreadyFinalized    = errors.New("leaderboard is already finalized")
	ErrForbidden           = errors.New("not allowed to perform this action")
	ErrInternal            = errors.New("internal service error")
)
