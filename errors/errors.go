package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrRosterNotFound    = fmt.Errorf("roster not found")
	ErrRosterExists      = fmt.Errorf("roster already exists")
	ErrRosterClosed      = fmt.Errorf("roster is closed")
	ErrCapacityExceeded  = fmt.Errorf("roster capacity exceeded")
	ErrOwnerCannotLeave  = fmt.Errorf("roster owner cannot leave")
	ErrConflict          = fmt.Errorf("roster write conflict, retries exhausted")
	ErrInvalidCommand    = fmt.Errorf("invalid command")
	ErrPermissionDenied  = fmt.Errorf("permission denied")
	ErrBatchTooLarge     = fmt.Errorf("profile batch too large")
	ErrChatNotFound      = fmt.Errorf("chat thread not found")
	ErrPartialSideEffect = fmt.Errorf("side effect partially failed")
)
