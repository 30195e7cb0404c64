package domain

// RoomID identifies a meeting. Created when the meeting starts,
// marked ended when it finishes; records are not hard-deleted here.
type RoomID string

type Room struct {
	ID       RoomID
	Name     string
	Owner    UserID
	JoinPass string // empty means the room is open
	Ended    bool
}

// Protected reports whether joining requires a password.
func (r *Room) Protected() bool { return r.JoinPass != "" }
