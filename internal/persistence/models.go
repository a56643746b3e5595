package persistence

import "time"

// Room represents a venue room available for scheduling. Rooms are reference
// data seeded at startup; they are deactivated rather than deleted.
type Room struct {
	ID        int64
	Name      string
	Building  string
	Capacity  int
	Features  *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Submission represents a talk proposal entered through the public form.
type Submission struct {
	ID          int64
	FirstName   string
	LastName    string
	Email       string
	SendCopy    bool
	Title       string
	Abstract    string
	Affiliation string
	Questions   *string
	SubmittedAt time.Time
}

// ScheduledTalk represents a room booking, optionally backed by a submission.
// When SubmissionID is nil the booking is a free-standing event and the Event*
// fields are the sole source of display data.
type ScheduledTalk struct {
	ID               int64
	SubmissionID     *int64
	RoomID           int64
	EventTitle       *string
	EventSpeaker     *string
	EventAffiliation *string
	EventAbstract    *string
	Start            time.Time
	End              time.Time
	Status           string
	PublishToWebsite bool
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined display fields, populated by listing queries.
	SpeakerFirstName *string
	SpeakerLastName  *string
	TalkTitle        *string
	TalkAbstract     *string
	TalkAffiliation  *string
	RoomName         *string
}

// ScheduledTalkPatch carries a partial update; nil fields keep their stored
// values.
type ScheduledTalkPatch struct {
	SubmissionID     *int64
	RoomID           *int64
	EventTitle       *string
	EventSpeaker     *string
	EventAffiliation *string
	EventAbstract    *string
	Start            *time.Time
	End              *time.Time
	Status           *string
	PublishToWebsite *bool
	Notes            *string
}
