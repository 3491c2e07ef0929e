package worker

import "errors"

var (
	ErrWorkerNotFound        = errors.New("worker not found")
	ErrWorkerInactive        = errors.New("worker is not active")
	ErrInvalidRole           = errors.New("invalid worker role")
	ErrInvalidRotationOffset = errors.New("rotation offset must be between 0 and 4")
	ErrNotFieldWorker        = errors.New("worker role does not work shifts")
)
