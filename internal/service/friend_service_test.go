package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"friendnet/internal/models"
)

type friendRequestRepoStub struct {
	createFn          func(context.Context, *models.FriendRequest) error
	getDirectedFn     func(context.Context, uint, uint) (*models.FriendRequest, error)
	updateStatusFn    func(context.Context, uint, models.FriendRequestStatus) error
	listByReceiverFn  func(context.Context, uint, models.FriendRequestStatus) ([]models.FriendRequest, error)
	countRecentFromFn func(context.Context, uint, time.Time) (int64, error)
	acceptedFriendsFn func(context.Context, uint) ([]models.User, error)
}

func (s *friendRequestRepoStub) Create(ctx context.Context, request *models.FriendRequest) error {
	return s.createFn(ctx, request)
}
func (s *friendRequestRepoStub) GetDirected(ctx context.Context, fromUserID, toUserID uint) (*models.FriendRequest, error) {
	return s.getDirectedFn(ctx, fromUserID, toUserID)
}
func (s *friendRequestRepoStub) UpdateStatus(ctx context.Context, requestID uint, status models.FriendRequestStatus) error {
	return s.updateStatusFn(ctx, requestID, status)
}
func (s *friendRequestRepoStub) ListByReceiver(ctx context.Context, toUserID uint, status models.FriendRequestStatus) ([]models.FriendRequest, error) {
	return s.listByReceiverFn(ctx, toUserID, status)
}
func (s *friendRequestRepoStub) CountRecentFrom(ctx context.Context, fromUserID uint, since time.Time) (int64, error) {
	return s.countRecentFromFn(ctx, fromUserID, since)
}
func (s *friendRequestRepoStub) GetAcceptedFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.acceptedFriendsFn(ctx, userID)
}

type userRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
	searchFn     func(context.Context, string, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, q string, limit, offset int) ([]models.User, error) {
	return s.searchFn(ctx, q, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:    func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn: func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		createFn:     func(context.Context, *models.User) error { return nil },
		searchFn:     func(context.Context, string, int, int) ([]models.User, error) { return nil, nil },
	}
}

func noopFriendRequestRepo() *friendRequestRepoStub {
	return &friendRequestRepoStub{
		createFn:          func(context.Context, *models.FriendRequest) error { return nil },
		getDirectedFn:     func(context.Context, uint, uint) (*models.FriendRequest, error) { return nil, nil },
		updateStatusFn:    func(context.Context, uint, models.FriendRequestStatus) error { return nil },
		listByReceiverFn:  func(context.Context, uint, models.FriendRequestStatus) ([]models.FriendRequest, error) { return nil, nil },
		countRecentFromFn: func(context.Context, uint, time.Time) (int64, error) { return 0, nil },
		acceptedFriendsFn: func(context.Context, uint) ([]models.User, error) { return nil, nil },
	}
}

func expectAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected app error, got %#v", err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code)
	}
	if message != "" && appErr.Message != message {
		t.Fatalf("expected message %q, got %q", message, appErr.Message)
	}
}

func TestFriendServiceSendMissingTarget(t *testing.T) {
	svc := NewFriendService(noopFriendRequestRepo(), noopUserRepo())
	_, err := svc.SendFriendRequest(context.Background(), 3, 0)
	expectAppError(t, err, models.CodeValidation, "Bad Request")
}

func TestFriendServiceSendToSelf(t *testing.T) {
	svc := NewFriendService(noopFriendRequestRepo(), noopUserRepo())
	_, err := svc.SendFriendRequest(context.Background(), 3, 3)
	expectAppError(t, err, models.CodeValidation, "You cannot send a friend request to yourself.")
}

func TestFriendServiceSendUnknownTarget(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return nil, models.NewNotFoundError("Object doesn't exists.")
	}

	svc := NewFriendService(noopFriendRequestRepo(), users)
	_, err := svc.SendFriendRequest(context.Background(), 3, 99)
	expectAppError(t, err, models.CodeNotFound, "Object doesn't exists.")
}

func TestFriendServiceSendDuplicateDirection(t *testing.T) {
	repo := noopFriendRequestRepo()
	repo.getDirectedFn = func(_ context.Context, from, to uint) (*models.FriendRequest, error) {
		if from == 3 && to == 7 {
			return &models.FriendRequest{ID: 1, FromUserID: 3, ToUserID: 7, Status: models.FriendRequestStatusRejected}, nil
		}
		return nil, nil
	}

	svc := NewFriendService(repo, noopUserRepo())
	_, err := svc.SendFriendRequest(context.Background(), 3, 7)
	// Any status in the same direction blocks a re-send.
	expectAppError(t, err, models.CodeValidation, "Friend request already sent.")
}

func TestFriendServiceSendCounterDirectionAllowed(t *testing.T) {
	created := false
	repo := noopFriendRequestRepo()
	repo.getDirectedFn = func(_ context.Context, from, to uint) (*models.FriendRequest, error) {
		if from == 7 && to == 3 {
			return &models.FriendRequest{ID: 1, FromUserID: 7, ToUserID: 3, Status: models.FriendRequestStatusPending}, nil
		}
		if created && from == 3 && to == 7 {
			return &models.FriendRequest{ID: 2, FromUserID: 3, ToUserID: 7, Status: models.FriendRequestStatusPending}, nil
		}
		return nil, nil
	}
	repo.createFn = func(_ context.Context, r *models.FriendRequest) error {
		created = true
		r.ID = 2
		return nil
	}

	svc := NewFriendService(repo, noopUserRepo())
	request, err := svc.SendFriendRequest(context.Background(), 3, 7)
	if err != nil {
		t.Fatalf("counter-direction send should succeed, got %v", err)
	}
	if request == nil || request.FromUserID != 3 || request.ToUserID != 7 {
		t.Fatalf("unexpected request %#v", request)
	}
}

func TestFriendServiceSendRateLimited(t *testing.T) {
	repo := noopFriendRequestRepo()
	repo.countRecentFromFn = func(context.Context, uint, time.Time) (int64, error) { return 3, nil }

	svc := NewFriendService(repo, noopUserRepo())
	_, err := svc.SendFriendRequest(context.Background(), 3, 7)
	expectAppError(t, err, models.CodeValidation, "You can only send 3 friend requests per minute.")
}

func TestFriendServiceSendUnderRateLimit(t *testing.T) {
	repo := noopFriendRequestRepo()
	repo.countRecentFromFn = func(context.Context, uint, time.Time) (int64, error) { return 2, nil }

	svc := NewFriendService(repo, noopUserRepo())
	if _, err := svc.SendFriendRequest(context.Background(), 3, 7); err != nil {
		t.Fatalf("third send inside the window should succeed, got %v", err)
	}
}

func TestFriendServiceSendWindowBound(t *testing.T) {
	var gotSince time.Time
	repo := noopFriendRequestRepo()
	repo.countRecentFromFn = func(_ context.Context, _ uint, since time.Time) (int64, error) {
		gotSince = since
		return 0, nil
	}

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewFriendService(repo, noopUserRepo())
	svc.now = func() time.Time { return fixed }

	if _, err := svc.SendFriendRequest(context.Background(), 3, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := fixed.Add(-time.Minute); !gotSince.Equal(want) {
		t.Fatalf("expected trailing window start %v, got %v", want, gotSince)
	}
}

func TestFriendServiceAcceptMissingID(t *testing.T) {
	svc := NewFriendService(noopFriendRequestRepo(), noopUserRepo())
	_, err := svc.AcceptFriendRequest(context.Background(), 3, 0)
	expectAppError(t, err, models.CodeValidation, "Request ID is required.")
}

func TestFriendServiceAcceptNotFound(t *testing.T) {
	svc := NewFriendService(noopFriendRequestRepo(), noopUserRepo())
	_, err := svc.AcceptFriendRequest(context.Background(), 3, 9)
	expectAppError(t, err, models.CodeNotFound, "Friend request not found.")
}

func TestFriendServiceAcceptPending(t *testing.T) {
	var updatedTo models.FriendRequestStatus
	repo := noopFriendRequestRepo()
	repo.getDirectedFn = func(_ context.Context, from, to uint) (*models.FriendRequest, error) {
		if from == 9 && to == 3 {
			return &models.FriendRequest{ID: 5, FromUserID: 9, ToUserID: 3, Status: models.FriendRequestStatusPending}, nil
		}
		return nil, nil
	}
	repo.updateStatusFn = func(_ context.Context, _ uint, status models.FriendRequestStatus) error {
		updatedTo = status
		return nil
	}

	svc := NewFriendService(repo, noopUserRepo())
	request, err := svc.AcceptFriendRequest(context.Background(), 3, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.Status != models.FriendRequestStatusAccepted || updatedTo != models.FriendRequestStatusAccepted {
		t.Fatalf("expected accepted, got %s (persisted %s)", request.Status, updatedTo)
	}
}

func TestFriendServiceAcceptConflicts(t *testing.T) {
	tests := []struct {
		name     string
		current  models.FriendRequestStatus
		expected string
	}{
		{"already accepted", models.FriendRequestStatusAccepted, "Friend request already accepted."},
		{"already rejected", models.FriendRequestStatusRejected, "Friend request already rejected."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopFriendRequestRepo()
			repo.getDirectedFn = func(context.Context, uint, uint) (*models.FriendRequest, error) {
				return &models.FriendRequest{ID: 5, FromUserID: 9, ToUserID: 3, Status: tt.current}, nil
			}

			svc := NewFriendService(repo, noopUserRepo())
			_, err := svc.AcceptFriendRequest(context.Background(), 3, 9)
			expectAppError(t, err, models.CodeConflict, tt.expected)
		})
	}
}

func TestFriendServiceRejectPending(t *testing.T) {
	repo := noopFriendRequestRepo()
	repo.getDirectedFn = func(context.Context, uint, uint) (*models.FriendRequest, error) {
		return &models.FriendRequest{ID: 5, FromUserID: 9, ToUserID: 3, Status: models.FriendRequestStatusPending}, nil
	}

	svc := NewFriendService(repo, noopUserRepo())
	request, err := svc.RejectFriendRequest(context.Background(), 3, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.Status != models.FriendRequestStatusRejected {
		t.Fatalf("expected rejected, got %s", request.Status)
	}
}

func TestFriendServiceRejectAlreadyRejected(t *testing.T) {
	repo := noopFriendRequestRepo()
	repo.getDirectedFn = func(context.Context, uint, uint) (*models.FriendRequest, error) {
		return &models.FriendRequest{ID: 5, Status: models.FriendRequestStatusRejected}, nil
	}

	svc := NewFriendService(repo, noopUserRepo())
	_, err := svc.RejectFriendRequest(context.Background(), 3, 9)
	expectAppError(t, err, models.CodeConflict, "Friend request already rejected.")
}

func TestFriendServiceListRequestsInvalidStatus(t *testing.T) {
	svc := NewFriendService(noopFriendRequestRepo(), noopUserRepo())
	for _, status := range []string{"", "PENDING", "unknown", "accepted "} {
		_, err := svc.ListRequests(context.Background(), 3, status)
		expectAppError(t, err, models.CodeValidation, "Invalid status")
	}
}

func TestFriendServiceListRequests(t *testing.T) {
	repo := noopFriendRequestRepo()
	repo.listByReceiverFn = func(_ context.Context, toUserID uint, status models.FriendRequestStatus) ([]models.FriendRequest, error) {
		return []models.FriendRequest{
			{
				ID: 1, FromUserID: 9, ToUserID: toUserID, Status: status,
				FromUser: models.User{ID: 9, Email: "sender@example.com"},
				ToUser:   models.User{ID: toUserID, Email: "me@example.com"},
			},
		}, nil
	}

	svc := NewFriendService(repo, noopUserRepo())
	views, err := svc.ListRequests(context.Background(), 3, "pending")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one view, got %d", len(views))
	}
	if views[0].FromUser != "sender@example.com, 9" {
		t.Fatalf("unexpected composite endpoint %q", views[0].FromUser)
	}
}

func TestFriendServiceListFriends(t *testing.T) {
	repo := noopFriendRequestRepo()
	repo.acceptedFriendsFn = func(context.Context, uint) ([]models.User, error) {
		return []models.User{{ID: 9}, {ID: 12}}, nil
	}

	svc := NewFriendService(repo, noopUserRepo())
	friends, err := svc.ListFriends(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(friends) != 2 {
		t.Fatalf("expected two friends, got %d", len(friends))
	}
}
