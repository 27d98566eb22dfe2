package lifecycle

// Watch keys. Writers notify the keys they touched; readers subscribe to one of them.

func StandingsKey(leagueID string) string { return "standings:" + leagueID }
func ParticipantsKey(leagueID string) string { return "participants:" + leagueID }
func MatchesKey(leagueID string) string { return "matches:" + leagueID }
func LeaguesKey(userID string) string { return "leagues:" + userID }
func InvitationsKey(userID string) string { return "invitations:" + userID }
func FriendRequestsKey(userID string) string { return "friend-requests:" + userID }
func FriendsKey(userID string) string { return "friends:" + userID }
