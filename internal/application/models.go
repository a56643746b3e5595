// Package application implements the talk submission and scheduling use
// cases on top of the persistence contract. Services validate input, apply
// the conflict rules and translate storage errors into caller-facing ones.
package application

import "time"

// SubmissionInput carries the public proposal form fields before validation.
type SubmissionInput struct {
	FirstName   string
	LastName    string
	Email       string
	SendCopy    bool
	Title       string
	Abstract    string
	Affiliation string
	Questions   string
}

// ScheduleInput carries the fields needed to book a talk into a room. Either
// SubmissionID or EventTitle must be set; the Event* fields describe
// free-standing entries such as breaks and keynotes without a proposal.
type ScheduleInput struct {
	SubmissionID     *int64
	RoomID           int64
	EventTitle       string
	EventSpeaker     string
	EventAffiliation string
	EventAbstract    string
	Start            time.Time
	End              time.Time
	Status           string
	PublishToWebsite bool
	Notes            string
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
