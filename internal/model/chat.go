package model

// Chat is a known-chat registry entry maintained by the transport layer.
type Chat struct {
	ChatID       int64
	Title        string
	MembersCount int
}

// User is a known bot user, registered on first private /start.
type User struct {
	UserID   int64
	Username string
}
