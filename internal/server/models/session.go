package models

import "time"

type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	IsActive  bool       `json:"isActive"`
}

// ElapsedMinutes returns whole minutes between StartTime and now.
func (s *Session) ElapsedMinutes(now time.Time) int {
	d := now.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
