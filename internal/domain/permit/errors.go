package permit

import "errors"

var (
	ErrPermitNotFound         = errors.New("permit not found")
	ErrPermitAlreadyProcessed = errors.New("permit already processed")
	ErrOverlappingPermit      = errors.New("permit overlaps an existing permit")
	ErrInvalidPermitType      = errors.New("invalid permit type")
	ErrRejectionReasonMissing = errors.New("rejection reason is required")
)
