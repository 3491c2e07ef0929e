package report

import "errors"

var (
	ErrInvalidDateRange       = errors.New("end date must not be before start date")
	ErrNoWorkersFound         = errors.New("no workers match the report filter")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
