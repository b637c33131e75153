package appointments

import "errors"

var (
	// ErrNotFound indicates no appointment exists with the given id.
	ErrNotFound = errors.New("appointment not found")

	// ErrNotCancellable indicates the appointment is in a terminal state.
	ErrNotCancellable = errors.New("appointment can no longer be cancelled")

	// ErrPastDateTime indicates the requested slot is not in the future.
	ErrPastDateTime = errors.New("appointment time must be in the future")

	// ErrUnknownDoctor indicates the doctor/department pair is not in the directory.
	ErrUnknownDoctor = errors.New("doctor not found in the selected department")
)
