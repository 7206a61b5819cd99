package models

// User is the authenticated operator as reported by the backend's
// /user/@me endpoint. The session itself is managed upstream.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
