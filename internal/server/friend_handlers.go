package server

import (
	"github.com/gofiber/fiber/v2"
)

// SendFriendRequest handles POST /api/friends/requests
// @Summary Send a friend request
// @Description Create a pending friend request toward another user
// @Tags friends
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{to_user=int} true "Recipient user id"
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /friends/requests [post]
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	var req struct {
		ToUser uint `json:"to_user"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, sendBadRequest())
	}

	request, err := s.friendService.SendFriendRequest(c.Context(), currentUserID(c), req.ToUser)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Friend request sent.", request.View())
}

// AcceptFriendRequest handles POST /api/friends/requests/accept
// @Summary Accept a friend request
// @Description Accept the pending request sent by the given user
// @Tags friends
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{request_id=int} true "Sender user id"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /friends/requests/accept [post]
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	var req struct {
		RequestID uint `json:"request_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, sendBadRequest())
	}

	request, err := s.friendService.AcceptFriendRequest(c.Context(), currentUserID(c), req.RequestID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Friend request accepted.", request.View())
}

// RejectFriendRequest handles POST /api/friends/requests/reject
// @Summary Reject a friend request
// @Description Reject the pending request sent by the given user
// @Tags friends
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{request_id=int} true "Sender user id"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /friends/requests/reject [post]
func (s *Server) RejectFriendRequest(c *fiber.Ctx) error {
	var req struct {
		RequestID uint `json:"request_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, sendBadRequest())
	}

	request, err := s.friendService.RejectFriendRequest(c.Context(), currentUserID(c), req.RequestID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Friend request rejected.", request.View())
}

// ListFriendRequests handles GET /api/friends/requests
// @Summary List received friend requests
// @Description List requests received by the caller, filtered by exact status
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param status query string true "pending, accepted or rejected"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Router /friends/requests [get]
func (s *Server) ListFriendRequests(c *fiber.Ctx) error {
	views, err := s.friendService.ListRequests(c.Context(), currentUserID(c), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Friend requests retrieved.", views)
}

// ListFriends handles GET /api/friends
// @Summary List friends
// @Description List users connected to the caller through an accepted request
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope
// @Router /friends [get]
func (s *Server) ListFriends(c *fiber.Ctx) error {
	friends, err := s.friendService.ListFriends(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Friends retrieved.", friends)
}
