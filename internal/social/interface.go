package social

import "context"

// SocialStore defines the interface for friend requests and friendships.
type SocialStore interface {
	SendFriendRequest(ctx context.Context, senderID, receiverID string) (*FriendRequest, error)
	GetFriendRequest(ctx context.Context, requestID string) (*FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, requestID, userID string) (*Friend, error)
	DeclineFriendRequest(ctx context.Context, requestID, userID string) error
	CancelFriendRequest(ctx context.Context, requestID, userID string) error
	ListFriendRequests(ctx context.Context, userID string, direction Direction) ([]FriendRequest, error)

	GetFriendship(ctx context.Context, friendshipID string) (*Friend, error)
	ListFriends(ctx context.Context, userID string) ([]Friend, error)
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	Unfriend(ctx context.Context, friendshipID, userID string) error
}
