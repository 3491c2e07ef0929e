package permit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/permit"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
)

type PermitServiceImpl struct {
	permitRepo          permit.Repository
	workerRepo          worker.Repository
	notificationService notification.Service
	loc                 *time.Location
	now                 func() time.Time
}

func NewPermitService(
	permitRepo permit.Repository,
	workerRepo worker.Repository,
	notificationService notification.Service,
	loc *time.Location,
) permit.PermitService {
	if loc == nil {
		loc = time.UTC
	}
	return &PermitServiceImpl{
		permitRepo:          permitRepo,
		workerRepo:          workerRepo,
		notificationService: notificationService,
		loc:                 loc,
		now:                 time.Now,
	}
}

// Submit implements permit.PermitService.
func (s *PermitServiceImpl) Submit(ctx context.Context, req permit.SubmitPermitRequest) (permit.PermitResponse, error) {
	dateRange, err := req.Validate()
	if err != nil {
		return permit.PermitResponse{}, err
	}

	w, err := s.workerRepo.GetByID(ctx, req.WorkerID)
	if err != nil {
		return permit.PermitResponse{}, fmt.Errorf("failed to get worker: %w", err)
	}
	if !w.IsActive {
		return permit.PermitResponse{}, worker.ErrWorkerInactive
	}

	overlap, err := s.permitRepo.HasOverlap(ctx, w.ID, dateRange)
	if err != nil {
		return permit.PermitResponse{}, fmt.Errorf("failed to check overlapping permits: %w", err)
	}
	if overlap {
		return permit.PermitResponse{}, permit.ErrOverlappingPermit
	}

	created, err := s.permitRepo.Create(ctx, permit.Permit{
		WorkerID:  w.ID,
		StartDate: dateRange.From,
		EndDate:   dateRange.To,
		Type:      permit.Type(req.Type),
		Status:    permit.StatusPending,
		Reason:    req.Reason,
	})
	if err != nil {
		return permit.PermitResponse{}, fmt.Errorf("failed to create permit: %w", err)
	}
	created.WorkerName = &w.FullName

	slog.Info("permit submitted",
		"permit_id", created.ID,
		"worker_id", w.ID,
		"type", string(created.Type),
		"from", dateRange.From.String(),
		"to", dateRange.To.String(),
	)
	s.notifySupervisors(ctx, w, created)

	return s.toResponse(created), nil
}

// Approve implements permit.PermitService.
func (s *PermitServiceImpl) Approve(ctx context.Context, req permit.ReviewPermitRequest) (permit.PermitResponse, error) {
	p, err := s.review(ctx, req, permit.StatusApproved)
	if err != nil {
		return permit.PermitResponse{}, err
	}
	s.notifyWorker(ctx, p, notification.TypePermitApproved, "Permit approved",
		fmt.Sprintf("Your %s permit for %s to %s was approved", p.Type, p.StartDate, p.EndDate))
	return s.toResponse(p), nil
}

// Reject implements permit.PermitService.
func (s *PermitServiceImpl) Reject(ctx context.Context, req permit.ReviewPermitRequest) (permit.PermitResponse, error) {
	if req.RejectionReason == nil || strings.TrimSpace(*req.RejectionReason) == "" {
		return permit.PermitResponse{}, permit.ErrRejectionReasonMissing
	}
	p, err := s.review(ctx, req, permit.StatusRejected)
	if err != nil {
		return permit.PermitResponse{}, err
	}
	s.notifyWorker(ctx, p, notification.TypePermitRejected, "Permit rejected",
		fmt.Sprintf("Your %s permit for %s to %s was rejected: %s", p.Type, p.StartDate, p.EndDate, *p.RejectionReason))
	return s.toResponse(p), nil
}

func (s *PermitServiceImpl) review(ctx context.Context, req permit.ReviewPermitRequest, status permit.Status) (permit.Permit, error) {
	p, err := s.permitRepo.GetByID(ctx, req.PermitID)
	if err != nil {
		return permit.Permit{}, err
	}
	if p.Status != permit.StatusPending {
		return permit.Permit{}, permit.ErrPermitAlreadyProcessed
	}

	reviewedAt := s.now()
	p.Status = status
	p.ReviewedBy = &req.ReviewerID
	p.ReviewedAt = &reviewedAt
	if status == permit.StatusRejected {
		reason := strings.TrimSpace(*req.RejectionReason)
		p.RejectionReason = &reason
	}

	if err := s.permitRepo.UpdateStatus(ctx, p); err != nil {
		return permit.Permit{}, fmt.Errorf("failed to update permit: %w", err)
	}

	slog.Info("permit reviewed", "permit_id", p.ID, "status", string(status), "reviewer_id", req.ReviewerID)
	return p, nil
}

// List implements permit.PermitService.
func (s *PermitServiceImpl) List(ctx context.Context, filter permit.PermitFilter) ([]permit.PermitResponse, error) {
	f, err := filter.Validate()
	if err != nil {
		return nil, err
	}

	permits, err := s.permitRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list permits: %w", err)
	}

	out := make([]permit.PermitResponse, len(permits))
	for i, p := range permits {
		out[i] = s.toResponse(p)
	}
	return out, nil
}

func (s *PermitServiceImpl) notifySupervisors(ctx context.Context, w worker.Worker, p permit.Permit) {
	if s.notificationService == nil {
		return
	}
	role := worker.RoleSupervisor
	supervisors, err := s.workerRepo.List(ctx, worker.Filter{Role: &role, ActiveOnly: true})
	if err != nil {
		slog.Warn("failed to list supervisors for permit notification", "permit_id", p.ID, "error", err)
		return
	}

	reqs := make([]notification.CreateNotificationRequest, 0, len(supervisors))
	for _, sup := range supervisors {
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID: sup.ID,
			SenderID:    &w.ID,
			Type:        notification.TypePermitSubmitted,
			Title:       "New permit request",
			Message:     fmt.Sprintf("%s requested %s from %s to %s", w.FullName, p.Type, p.StartDate, p.EndDate),
			Data: map[string]interface{}{
				"permit_id": p.ID,
				"worker_id": w.ID,
			},
		})
	}
	_ = s.notificationService.QueueBulkNotification(ctx, reqs)
}

func (s *PermitServiceImpl) notifyWorker(ctx context.Context, p permit.Permit, kind notification.NotificationType, title, message string) {
	if s.notificationService == nil {
		return
	}
	err := s.notificationService.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: p.WorkerID,
		SenderID:    p.ReviewedBy,
		Type:        kind,
		Title:       title,
		Message:     message,
		Data: map[string]interface{}{
			"permit_id": p.ID,
			"status":    string(p.Status),
		},
	})
	if err != nil {
		slog.Warn("failed to queue permit notification", "permit_id", p.ID, "error", err)
	}
}

func (s *PermitServiceImpl) toResponse(p permit.Permit) permit.PermitResponse {
	var reviewedAt *string
	if p.ReviewedAt != nil {
		v := p.ReviewedAt.In(s.loc).Format(time.RFC3339)
		reviewedAt = &v
	}
	return permit.PermitResponse{
		ID:              p.ID,
		WorkerID:        p.WorkerID,
		WorkerName:      p.WorkerName,
		StartDate:       p.StartDate.String(),
		EndDate:         p.EndDate.String(),
		Type:            p.Type,
		Status:          p.Status,
		Reason:          p.Reason,
		ReviewedBy:      p.ReviewedBy,
		ReviewedAt:      reviewedAt,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt.In(s.loc).Format(time.RFC3339),
	}
}
