package permit

import "context"

type PermitService interface {
	Submit(ctx context.Context, req SubmitPermitRequest) (PermitResponse, error)
	Approve(ctx context.Context, req ReviewPermitRequest) (PermitResponse, error)
	Reject(ctx context.Context, req ReviewPermitRequest) (PermitResponse, error)
	List(ctx context.Context, filter PermitFilter) ([]PermitResponse, error)
}
