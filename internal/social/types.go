package social

import (
	"database/sql"
	"sync"
	"time"
)

// store handles friend requests and friendships.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

type FriendRequest struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Friend is a friendship between an unordered pair of users.
type Friend struct {
	ID    string    `json:"id"`
	Users [2]string `json:"users"`
	Since time.Time `json:"since"`
}

// Other returns the member of the pair that is not userID.
func (f Friend) Other(userID string) string {
	if f.Users[0] == userID {
		return f.Users[1]
	}
	return f.Users[0]
}

// Direction selects which side of a request a listing is for.
type Direction string

const (
	Incoming Direction = "incoming"
	Outgoing Direction = "outgoing"
)

// pair orders two user ids so (a, b) and (b, a) map to the same row.
func pair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}
