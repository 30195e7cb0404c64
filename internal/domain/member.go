package domain

// Member is one user's participation in a room. The display name may
// be empty when the caller never announced one; a non-empty name obeys
// the User rules.
type Member struct {
	UserID      UserID
	DisplayName string
}

// NewMember validates the display name through NewUser so room events
// never carry an oversized name.
func NewMember(uid UserID, displayName string) (*Member, error) {
	if displayName == "" {
		return &Member{UserID: uid}, nil
	}
	user, err := NewUser(uid, displayName)
	if err != nil {
		return nil, err
	}
	return &Member{UserID: user.ID, DisplayName: user.DisplayName}, nil
}
