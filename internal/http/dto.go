package http

import (
	"time"

	"github.com/example/talk-scheduler/internal/persistence"
)

type submissionDTO struct {
	ID          int64   `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	SendCopy    bool    `json:"send_copy"`
	TalkTitle   string  `json:"talk_title"`
	Abstract    string  `json:"talk_abstract"`
	Affiliation string  `json:"affiliation"`
	Questions   *string `json:"questions"`
	SubmittedAt string  `json:"submitted_at"`
}

func toSubmissionDTO(submission persistence.Submission) submissionDTO {
	return submissionDTO{
		ID:          submission.ID,
		FirstName:   submission.FirstName,
		LastName:    submission.LastName,
		Email:       submission.Email,
		SendCopy:    submission.SendCopy,
		TalkTitle:   submission.Title,
		Abstract:    submission.Abstract,
		Affiliation: submission.Affiliation,
		Questions:   submission.Questions,
		SubmittedAt: submission.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

func toSubmissionDTOs(submissions []persistence.Submission) []submissionDTO {
	out := make([]submissionDTO, 0, len(submissions))
	for _, submission := range submissions {
		out = append(out, toSubmissionDTO(submission))
	}
	return out
}

type scheduledTalkDTO struct {
	ID               int64   `json:"id"`
	SubmissionID     *int64  `json:"submission_id"`
	RoomID           int64   `json:"room_id"`
	EventTitle       *string `json:"event_title,omitempty"`
	EventSpeaker     *string `json:"event_speaker,omitempty"`
	EventAffiliation *string `json:"event_affiliation,omitempty"`
	EventAbstract    *string `json:"event_abstract,omitempty"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	Status           string  `json:"status"`
	PublishToWebsite bool    `json:"publish_to_website"`
	Notes            *string `json:"notes,omitempty"`

	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	TalkTitle    *string `json:"talk_title,omitempty"`
	TalkAbstract *string `json:"talk_abstract,omitempty"`
	Affiliation  *string `json:"affiliation,omitempty"`
	RoomName     *string `json:"room_name,omitempty"`
}

func toScheduledTalkDTO(talk persistence.ScheduledTalk) scheduledTalkDTO {
	return scheduledTalkDTO{
		ID:               talk.ID,
		SubmissionID:     talk.SubmissionID,
		RoomID:           talk.RoomID,
		EventTitle:       talk.EventTitle,
		EventSpeaker:     talk.EventSpeaker,
		EventAffiliation: talk.EventAffiliation,
		EventAbstract:    talk.EventAbstract,
		StartTime:        talk.Start.UTC().Format(time.RFC3339),
		EndTime:          talk.End.UTC().Format(time.RFC3339),
		Status:           talk.Status,
		PublishToWebsite: talk.PublishToWebsite,
		Notes:            talk.Notes,
		FirstName:        talk.SpeakerFirstName,
		LastName:         talk.SpeakerLastName,
		TalkTitle:        talk.TalkTitle,
		TalkAbstract:     talk.TalkAbstract,
		Affiliation:      talk.TalkAffiliation,
		RoomName:         talk.RoomName,
	}
}

func toScheduledTalkDTOs(talks []persistence.ScheduledTalk) []scheduledTalkDTO {
	out := make([]scheduledTalkDTO, 0, len(talks))
	for _, talk := range talks {
		out = append(out, toScheduledTalkDTO(talk))
	}
	return out
}

type roomDTO struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Building string  `json:"building"`
	Capacity int     `json:"capacity"`
	Features *string `json:"features"`
	Active   bool    `json:"active"`
}

func toRoomDTO(room persistence.Room) roomDTO {
	return roomDTO{
		ID:       room.ID,
		Name:     room.Name,
		Building: room.Building,
		Capacity: room.Capacity,
		Features: room.Features,
		Active:   room.Active,
	}
}

func toRoomDTOs(rooms []persistence.Room) []roomDTO {
	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	return out
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	// Datetime-local inputs arrive without a zone; treat them as UTC.
	if ts, err := time.Parse("2006-01-02T15:04", value); err == nil {
		return ts.UTC()
	}
	return time.Time{}
}
