package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. It doubles as the topic name.
type EventType string

const (
	EventLeagueCreated         EventType = "league-created"
	EventLeagueDeleted         EventType = "league-deleted"
	EventRulesUpdated          EventType = "league-rules-updated"
	EventInvitationSent        EventType = "invitation-sent"
	EventInvitationAccepted    EventType = "invitation-accepted"
	EventInvitationDeclined    EventType = "invitation-declined"
	EventParticipantJoined     EventType = "participant-joined"
	EventParticipantLeft       EventType = "participant-left"
	EventMatchFinished         EventType = "match-finished"
	EventFriendRequestSent     EventType = "friend-request-sent"
	EventFriendRequestAccepted EventType = "friend-request-accepted"
	EventFriendshipRemoved     EventType = "friendship-removed"
)

// LeagueEvent is the payload for league scoped events.
type LeagueEvent struct {
	LeagueID   string    `msgpack:"league_id"`
	ActorID    string    `msgpack:"actor_id"`
	SubjectID  string    `msgpack:"subject_id,omitempty"`
	ResourceID string    `msgpack:"resource_id,omitempty"`
	At         time.Time `msgpack:"at"`
}

// SocialEvent is the payload for friend request and friendship events.
type SocialEvent struct {
	ActorID    string    `msgpack:"actor_id"`
	OtherID    string    `msgpack:"other_id"`
	ResourceID string    `msgpack:"resource_id"`
	At         time.Time `msgpack:"at"`
}
