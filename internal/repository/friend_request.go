// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"friendnet/internal/models"
	"friendnet/internal/observability"

	"gorm.io/gorm"
)

// FriendRequestRepository defines the interface for friend request data operations
type FriendRequestRepository interface {
	Create(ctx context.Context, request *models.FriendRequest) error
	GetDirected(ctx context.Context, fromUserID, toUserID uint) (*models.FriendRequest, error)
	UpdateStatus(ctx context.Context, requestID uint, status models.FriendRequestStatus) error
	ListByReceiver(ctx context.Context, toUserID uint, status models.FriendRequestStatus) ([]models.FriendRequest, error)
	CountRecentFrom(ctx context.Context, fromUserID uint, since time.Time) (int64, error)
	GetAcceptedFriends(ctx context.Context, userID uint) ([]models.User, error)
}

// friendRequestRepository implements FriendRequestRepository
type friendRequestRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
	logger  *observability.RepoLogger
}

// NewFriendRequestRepository creates a new friend request repository
func NewFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &friendRequestRepository{
		db:      db,
		metrics: observability.NewDatabaseMetrics(db),
		logger:  observability.NewRepoLogger("friend_requests"),
	}
}

// Create persists a new request. A concurrent duplicate of the same directed
// pair trips the unique index and is reported as the duplicate-send error.
func (r *friendRequestRepository) Create(ctx context.Context, request *models.FriendRequest) error {
	defer r.metrics.TrackQuery("insert", "friend_requests")()

	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Friend request already sent.")
		}
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]interface{}{
		"from_user_id": request.FromUserID,
		"to_user_id":   request.ToUserID,
	})
	return nil
}

// GetDirected finds the request sent by fromUserID to toUserID, regardless of
// status. Absence is reported as (nil, nil).
func (r *friendRequestRepository) GetDirected(ctx context.Context, fromUserID, toUserID uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Preload("FromUser").
		Preload("ToUser").
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *friendRequestRepository) UpdateStatus(ctx context.Context, requestID uint, status models.FriendRequestStatus) error {
	defer r.metrics.TrackQuery("update", "friend_requests")()

	if err := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("id = ?", requestID).
		Update("status", status).Error; err != nil {
		r.logger.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	r.logger.LogUpdate(ctx, map[string]interface{}{
		"request_id": requestID,
		"status":     status,
	})
	return nil
}

func (r *friendRequestRepository) ListByReceiver(ctx context.Context, toUserID uint, status models.FriendRequestStatus) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND status = ?", toUserID, status).
		Preload("FromUser").
		Preload("ToUser").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

// CountRecentFrom counts requests created by the sender at or after the given
// instant, across all statuses.
func (r *friendRequestRepository) CountRecentFrom(ctx context.Context, fromUserID uint, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("from_user_id = ? AND created_at >= ?", fromUserID, since).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// GetAcceptedFriends returns every user connected to userID through an
// accepted request in either direction, deduplicated.
func (r *friendRequestRepository) GetAcceptedFriends(ctx context.Context, userID uint) ([]models.User, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "GetAcceptedFriends", "friend_requests")
	defer span.End()
	defer r.metrics.TrackQuery("select", "friend_requests")()

	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Distinct("users.*").
		Joins("JOIN friend_requests fr ON (users.id = fr.from_user_id AND fr.to_user_id = ?) OR (users.id = fr.to_user_id AND fr.from_user_id = ?)", userID, userID).
		Where("fr.status = ?", models.FriendRequestStatusAccepted).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
