package model

// User is a back-office account. There are no roles: any user may use the
// admin screens.
//
// PasswordHash holds a bcrypt hash and is never serialised.
type User struct {
	ID           int64  `json:"id"       db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-"        db:"password_hash"`
}
