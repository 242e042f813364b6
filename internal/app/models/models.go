package models

// MeetingType is where a study session takes place
type MeetingType string

const (
	MeetingOnCampus  MeetingType = "on_campus"
	MeetingOffCampus MeetingType = "off_campus"
	MeetingOnline    MeetingType = "online"
)

// Valid reports whether m is one of the known meeting types
func (m MeetingType) Valid() bool {
	switch m {
	case MeetingOnCampus, MeetingOffCampus, MeetingOnline:
		return true
	}
	return false
}
