// Package identity models the caller's session. The browser original kept
// auth state in ambient globals; here it is an explicit value constructed
// at startup and threaded through every component that needs it.
package identity

// Session identifies the current user for the lifetime of a command.
type Session struct {
	UserID string
	Guest  bool
}

// Begin starts a session for the given user id. An empty id yields a
// guest session: guests can take quizzes but are denied registered-only
// features (spaced repetition, CME, bookmarks, leaderboard), which fail
// soft rather than erroring.
func Begin(userID string) Session {
	if userID == "" {
		return Session{UserID: "guest", Guest: true}
	}
	return Session{UserID: userID}
}

// IsRegistered reports whether the session belongs to a registered user.
func (s Session) IsRegistered() bool {
	return !s.Guest
}
