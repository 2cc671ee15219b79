package model

import "fmt"

type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	s, err := decodeID(b)
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(s)
	return nil
}

// User is the minimal profile kept with the session.
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
