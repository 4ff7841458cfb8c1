package model

import "time"

// Notification is an alert stored for a student.
type Notification struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	Kind      string    `json:"kind"`
	Level     string    `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
