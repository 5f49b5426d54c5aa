package service

import (
	"context"
	"fmt"
	"time"

	"friendnet/internal/cache"
	"friendnet/internal/models"
	"friendnet/internal/observability"
	"friendnet/internal/repository"
)

// Per-sender throttle on sends, counted over a trailing window in the
// database so it holds without Redis.
const (
	sendLimit  = 3
	sendWindow = time.Minute
)

// FriendService provides the friend-request workflow business logic. The
// caller's identity is always passed in explicitly by the handler layer.
type FriendService struct {
	requestRepo repository.FriendRequestRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

// NewFriendService returns a new FriendService.
func NewFriendService(requestRepo repository.FriendRequestRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// SendFriendRequest creates a pending request from the caller to the target.
func (s *FriendService) SendFriendRequest(ctx context.Context, callerID, targetID uint) (*models.FriendRequest, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceMethod(ctx, "FriendService", "SendFriendRequest")
	defer span.End()

	if targetID == 0 {
		return nil, models.NewValidationError("Bad Request")
	}
	if callerID == targetID {
		return nil, models.NewValidationError("You cannot send a friend request to yourself.")
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	// Only the same direction blocks; a counter-request from the target is
	// a distinct record.
	existing, err := s.requestRepo.GetDirected(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		observability.RecordFriendRequest(observability.FriendRequestOutcomeDuplicate)
		return nil, models.NewValidationError("Friend request already sent.")
	}

	count, err := s.requestRepo.CountRecentFrom(ctx, callerID, s.now().Add(-sendWindow))
	if err != nil {
		return nil, err
	}
	if count >= sendLimit {
		observability.RecordFriendRequest(observability.FriendRequestOutcomeRateLimited)
		return nil, models.NewValidationError("You can only send 3 friend requests per minute.")
	}

	request := &models.FriendRequest{
		FromUserID: callerID,
		ToUserID:   targetID,
		Status:     models.FriendRequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		// A concurrent duplicate loses the race at the unique index and
		// surfaces as the already-sent error.
		observability.RecordErrorInContext(ctx, err)
		return nil, err
	}

	observability.RecordFriendRequest(observability.FriendRequestOutcomeSent)
	return s.requestRepo.GetDirected(ctx, callerID, targetID)
}

// resolve finds the request addressed to the caller by the given sender and
// applies the transition to target status.
func (s *FriendService) resolve(ctx context.Context, callerID, requesterID uint, target models.FriendRequestStatus) (*models.FriendRequest, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceMethod(ctx, "FriendService", "resolve")
	defer span.End()

	if requesterID == 0 {
		return nil, models.NewValidationError("Request ID is required.")
	}

	request, err := s.requestRepo.GetDirected(ctx, requesterID, callerID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, models.NewNotFoundError("Friend request not found.")
	}

	if !request.Status.CanTransitionTo(target) {
		return nil, models.NewConflictError(fmt.Sprintf("Friend request already %s.", request.Status))
	}

	if err := s.requestRepo.UpdateStatus(ctx, request.ID, target); err != nil {
		return nil, err
	}
	request.Status = target

	if target == models.FriendRequestStatusAccepted {
		cache.InvalidateFriends(ctx, callerID)
		cache.InvalidateFriends(ctx, requesterID)
	}
	return request, nil
}

// AcceptFriendRequest accepts the pending request sent by requesterID to the caller.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, callerID, requesterID uint) (*models.FriendRequest, error) {
	request, err := s.resolve(ctx, callerID, requesterID, models.FriendRequestStatusAccepted)
	if err == nil {
		observability.RecordFriendRequest(observability.FriendRequestOutcomeAccepted)
	}
	return request, err
}

// RejectFriendRequest rejects the pending request sent by requesterID to the caller.
func (s *FriendService) RejectFriendRequest(ctx context.Context, callerID, requesterID uint) (*models.FriendRequest, error) {
	request, err := s.resolve(ctx, callerID, requesterID, models.FriendRequestStatusRejected)
	if err == nil {
		observability.RecordFriendRequest(observability.FriendRequestOutcomeRejected)
	}
	return request, err
}

// ListRequests returns the requests received by the caller with the given
// status, in wire form.
func (s *FriendService) ListRequests(ctx context.Context, callerID uint, status string) ([]models.FriendRequestView, error) {
	st := models.FriendRequestStatus(status)
	if !st.Valid() {
		return nil, models.NewValidationError("Invalid status")
	}

	requests, err := s.requestRepo.ListByReceiver(ctx, callerID, st)
	if err != nil {
		return nil, err
	}

	views := make([]models.FriendRequestView, 0, len(requests))
	for i := range requests {
		views = append(views, requests[i].View())
	}
	return views, nil
}

// ListFriends returns the users connected to the caller through an accepted
// request in either direction.
func (s *FriendService) ListFriends(ctx context.Context, callerID uint) ([]models.User, error) {
	var friends []models.User
	err := cache.Aside(ctx, cache.FriendsKey(callerID), &friends, cache.FriendsTTL, func() error {
		var loadErr error
		friends, loadErr = s.requestRepo.GetAcceptedFriends(ctx, callerID)
		return loadErr
	})
	if err != nil {
		return nil, err
	}
	return friends, nil
}
