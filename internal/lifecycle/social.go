package lifecycle

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/pubsub"
	"github.com/mauv0809/shuttle-league/internal/social"
)

func (s *Service) socialEvent(actorID, otherID, resourceID string) pubsub.SocialEvent {
	return pubsub.SocialEvent{ActorID: actorID, OtherID: otherID, ResourceID: resourceID, At: s.now().UTC()}
}

func (s *Service) SendFriendRequest(ctx context.Context, senderID, receiverID string) (*social.FriendRequest, error) {
	if _, err := s.users.GetUser(ctx, receiverID); err != nil {
		return nil, s.fail("send friend request", err)
	}
	req, err := s.social.SendFriendRequest(ctx, senderID, receiverID)
	if err != nil {
		return nil, s.fail("send friend request", err)
	}
	log.Info("Sent friend request", "requestID", req.ID, "sender", senderID, "receiver", receiverID)
	s.record(ctx, pubsub.EventFriendRequestSent, s.socialEvent(senderID, receiverID, req.ID),
		FriendRequestsKey(senderID), FriendRequestsKey(receiverID))
	return req, nil
}

// AcceptFriendRequest makes the two users friends. Only the receiver can accept.
func (s *Service) AcceptFriendRequest(ctx context.Context, requestID, userID string) (*social.Friend, error) {
	f, err := s.social.AcceptFriendRequest(ctx, requestID, userID)
	if err != nil {
		return nil, s.fail("accept friend request", err)
	}
	other := f.Other(userID)
	log.Info("Accepted friend request", "requestID", requestID, "friendshipID", f.ID)
	s.record(ctx, pubsub.EventFriendRequestAccepted, s.socialEvent(userID, other, f.ID),
		FriendRequestsKey(userID), FriendRequestsKey(other), FriendsKey(userID), FriendsKey(other))
	return f, nil
}

// DeclineFriendRequest is the receiver's way to drop a request. A request that is already gone is not an error.
func (s *Service) DeclineFriendRequest(ctx context.Context, requestID, userID string) error {
	req, err := s.social.GetFriendRequest(ctx, requestID)
	if errors.Is(err, apperr.ErrFriendRequestNotFound) {
		return nil
	}
	if err != nil {
		return s.fail("decline friend request", err)
	}
	if err := s.social.DeclineFriendRequest(ctx, requestID, userID); err != nil {
		return s.fail("decline friend request", err)
	}
	log.Info("Declined friend request", "requestID", requestID)
	s.hub.Notify(FriendRequestsKey(req.SenderID), FriendRequestsKey(req.ReceiverID))
	return nil
}

// CancelFriendRequest is the sender's way to withdraw a request.
func (s *Service) CancelFriendRequest(ctx context.Context, requestID, userID string) error {
	req, err := s.social.GetFriendRequest(ctx, requestID)
	if errors.Is(err, apperr.ErrFriendRequestNotFound) {
		return nil
	}
	if err != nil {
		return s.fail("cancel friend request", err)
	}
	if err := s.social.CancelFriendRequest(ctx, requestID, userID); err != nil {
		return s.fail("cancel friend request", err)
	}
	log.Info("Cancelled friend request", "requestID", requestID)
	s.hub.Notify(FriendRequestsKey(req.SenderID), FriendRequestsKey(req.ReceiverID))
	return nil
}

func (s *Service) ListFriendRequests(ctx context.Context, userID string, direction social.Direction) ([]social.FriendRequest, error) {
	requests, err := s.social.ListFriendRequests(ctx, userID, direction)
	if err != nil {
		return nil, s.fail("list friend requests", err)
	}
	return requests, nil
}

func (s *Service) ListFriends(ctx context.Context, userID string) ([]social.Friend, error) {
	friends, err := s.social.ListFriends(ctx, userID)
	if err != nil {
		return nil, s.fail("list friends", err)
	}
	return friends, nil
}

func (s *Service) Unfriend(ctx context.Context, friendshipID, userID string) error {
	f, err := s.social.GetFriendship(ctx, friendshipID)
	if err != nil {
		return s.fail("unfriend", err)
	}
	if err := s.social.Unfriend(ctx, friendshipID, userID); err != nil {
		return s.fail("unfriend", err)
	}
	other := f.Other(userID)
	log.Info("Removed friendship", "friendshipID", friendshipID, "by", userID)
	s.record(ctx, pubsub.EventFriendshipRemoved, s.socialEvent(userID, other, friendshipID),
		FriendsKey(userID), FriendsKey(other))
	return nil
}
