package models

import (
	"time"

	"github.com/google/uuid"
)

// StudySession is a row of 'study_sessions'
type StudySession struct {
	ID          uuid.UUID   `db:"id"`
	Title       string      `db:"title"`
	CourseCode  string      `db:"course_code"`
	Description *string     `db:"description"`
	Date        string      `db:"date"`
	Time        string      `db:"time"`
	Location    string      `db:"location"`
	MeetingType MeetingType `db:"meeting_type"`
	MaxCapacity int         `db:"max_capacity"`
	CreatorID   uuid.UUID   `db:"creator_id"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

// SessionDetails is a session enriched with its derived fields.
type SessionDetails struct {
	StudySession
	CreatorName     string
	CurrentCapacity int
}

// IsFull is derived, never stored
func (d *SessionDetails) IsFull() bool {
	return d.CurrentCapacity >= d.MaxCapacity
}

// SessionFilter narrows the school-scoped listing. Empty fields do not filter.
type SessionFilter struct {
	CourseCode  string
	MeetingType MeetingType
	ExcludeFull bool
}

// SessionUpdate is a partial update. Nil means unchanged.
type SessionUpdate struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	Location    *string
	MeetingType *MeetingType
	MaxCapacity *int
}

// Empty reports whether the update changes nothing
func (u *SessionUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Date == nil && u.Time == nil &&
		u.Location == nil && u.MeetingType == nil && u.MaxCapacity == nil
}
