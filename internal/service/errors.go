package service

import "errors"

var (
	// ErrValidation marks bad input from the caller.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing user, session, portfolio or
	// recommendation.
	ErrNotFound = errors.New("not found")
	// ErrDataUnavailable marks a run that could not obtain the market
	// data or advisor opinions it needs.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrExecution marks a trade that could not be filled.
	ErrExecution = errors.New("execution error")
	// ErrAnalysisInProgress marks a second concurrent run for the same
	// user.
	ErrAnalysisInProgress = errors.New("analysis already in progress")
)
