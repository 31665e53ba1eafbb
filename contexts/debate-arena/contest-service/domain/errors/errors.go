package errors

import "errors"

var (
	ErrContestNotFound      = errors.New("contest not found")
	ErrNoActiveContest      = errors.New("no active contest")
	ErrWinnerRecordNotFound = errors.New("winner record not found")
	ErrContestNotClaimable  = errors.New("contest is not claimable for completion")
	ErrInvalidContestInput  = errors.New("invalid contest input")
	ErrConflict             = errors.New("contest conflict")
)
