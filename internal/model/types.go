package model

// JoinRequest is an application by a user to enter a group. Handle is the
// opaque platform token used to resolve the request; callers identify a
// pending request strictly by Handle, never by re-deriving it from
// rendered text.
type JoinRequest struct {
	GroupID string
	UserID  string
	Comment string
	Handle  string
}

// LeaveEvent reports a user leaving a group voluntarily.
type LeaveEvent struct {
	GroupID string
	UserID  string
}

// JoinCompletedEvent reports a new member present in a group.
type JoinCompletedEvent struct {
	GroupID string
	UserID  string
}

// GroupMessage is an inbound group chat message. Quoted carries the text of
// the replied-to message when the sender quoted one, empty otherwise.
type GroupMessage struct {
	GroupID string
	UserID  string
	Text    string
	Quoted  string
}

// Profile is the result of a stranger/profile lookup. Level is nil when the
// platform does not report one.
type Profile struct {
	Nickname string
	Level    *int
}

// Verdict is the outcome of an admission evaluation. Rule identifies the
// rule that produced the verdict, for audit and alerting.
type Verdict struct {
	Approve bool
	Reason  string
	Rule    string
}

// AttemptKey identifies a (group, user) pair in the attempt tracker.
type AttemptKey struct {
	GroupID string
	UserID  string
}
