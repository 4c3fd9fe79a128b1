package model

import "time"

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	TotalSessions int       `json:"totalSessions"`
	TotalPoints   int       `json:"totalPoints"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u User) Totals() Totals {
	return Totals{Sessions: u.TotalSessions, Points: u.TotalPoints}
}
