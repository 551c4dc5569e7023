package domain

import "time"

type LoginOutcome string

const (
	LoginSuccess LoginOutcome = "success"
	LoginFailed  LoginOutcome = "failed"
)

// LoginTransaction is an append-only audit row.
type LoginTransaction struct {
	ID        string
	UserID    string
	Outcome   LoginOutcome
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

type LoginTransactionFilter struct {
	UserID string
	Limit  int
	Offset int
}
