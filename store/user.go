package store

// User is an authenticated account. All chat data is scoped by User.ID.
type User struct {
	ID           int32
	UID          string
	Email        string
	PasswordHash string
	CreatedTs    int64
}

// FindUser filters for ListUsers.
type FindUser struct {
	ID    *int32
	UID   *string
	Email *string
}
