package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/talk-scheduler/internal/persistence"
)

const scheduledTalkJoin = `
	SELECT st.id, st.submission_id, st.room_id,
	       st.event_title, st.event_speaker, st.event_affiliation, st.event_abstract,
	       st.start_time, st.end_time, st.status, st.publish_to_website, st.notes,
	       st.created_at, st.updated_at,
	       ts.first_name, ts.last_name, ts.talk_title, ts.talk_abstract, ts.affiliation,
	       r.name
	FROM scheduled_talks st
	LEFT JOIN talk_submissions ts ON ts.id = st.submission_id
	LEFT JOIN rooms r ON r.id = st.room_id
`

func scanScheduledTalk(row pgx.Row) (persistence.ScheduledTalk, error) {
	var talk persistence.ScheduledTalk
	err := row.Scan(
		&talk.ID,
		&talk.SubmissionID,
		&talk.RoomID,
		&talk.EventTitle,
		&talk.EventSpeaker,
		&talk.EventAffiliation,
		&talk.EventAbstract,
		&talk.Start,
		&talk.End,
		&talk.Status,
		&talk.PublishToWebsite,
		&talk.Notes,
		&talk.CreatedAt,
		&talk.UpdatedAt,
		&talk.SpeakerFirstName,
		&talk.SpeakerLastName,
		&talk.TalkTitle,
		&talk.TalkAbstract,
		&talk.TalkAffiliation,
		&talk.RoomName,
	)
	return talk, err
}

// CreateScheduledTalk inserts a booking and returns it with joined display
// fields.
func (s *Store) CreateScheduledTalk(ctx context.Context, talk persistence.ScheduledTalk) (persistence.ScheduledTalk, error) {
	query := `
		INSERT INTO scheduled_talks
			(submission_id, room_id, event_title, event_speaker, event_affiliation, event_abstract,
			 start_time, end_time, status, publish_to_website, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		talk.SubmissionID,
		talk.RoomID,
		talk.EventTitle,
		talk.EventSpeaker,
		talk.EventAffiliation,
		talk.EventAbstract,
		talk.Start.UTC(),
		talk.End.UTC(),
		talk.Status,
		talk.PublishToWebsite,
		talk.Notes,
	).Scan(&id)
	if err != nil {
		return persistence.ScheduledTalk{}, fmt.Errorf("create scheduled talk: %w", mapError(err))
	}

	return s.GetScheduledTalk(ctx, id)
}

// GetScheduledTalk returns a booking with joined display fields.
func (s *Store) GetScheduledTalk(ctx context.Context, id int64) (persistence.ScheduledTalk, error) {
	talk, err := scanScheduledTalk(s.pool.QueryRow(ctx, scheduledTalkJoin+` WHERE st.id = $1`, id))
	if err != nil {
		return persistence.ScheduledTalk{}, fmt.Errorf("get scheduled talk: %w", mapError(err))
	}
	return talk, nil
}

// ListScheduledTalks returns every booking joined with submission and room
// fields, ordered by start time ascending.
func (s *Store) ListScheduledTalks(ctx context.Context) ([]persistence.ScheduledTalk, error) {
	rows, err := s.pool.Query(ctx, scheduledTalkJoin+` ORDER BY st.start_time ASC, st.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list scheduled talks: %w", mapError(err))
	}
	defer rows.Close()

	var talks []persistence.ScheduledTalk
	for rows.Next() {
		talk, err := scanScheduledTalk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scheduled talk: %w", err)
		}
		talks = append(talks, talk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scheduled talks: %w", mapError(err))
	}

	return talks, nil
}

// UpdateScheduledTalk applies a partial update; nil patch fields keep their
// stored values. The updated_at column is always bumped.
func (s *Store) UpdateScheduledTalk(ctx context.Context, id int64, patch persistence.ScheduledTalkPatch) (persistence.ScheduledTalk, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.SubmissionID != nil {
		addSet("submission_id", *patch.SubmissionID)
	}
	if patch.RoomID != nil {
		addSet("room_id", *patch.RoomID)
	}
	if patch.EventTitle != nil {
		addSet("event_title", *patch.EventTitle)
	}
	if patch.EventSpeaker != nil {
		addSet("event_speaker", *patch.EventSpeaker)
	}
	if patch.EventAffiliation != nil {
		addSet("event_affiliation", *patch.EventAffiliation)
	}
	if patch.EventAbstract != nil {
		addSet("event_abstract", *patch.EventAbstract)
	}
	if patch.Start != nil {
		addSet("start_time", patch.Start.UTC())
	}
	if patch.End != nil {
		addSet("end_time", patch.End.UTC())
	}
	if patch.Status != nil {
		addSet("status", *patch.Status)
	}
	if patch.PublishToWebsite != nil {
		addSet("publish_to_website", *patch.PublishToWebsite)
	}
	if patch.Notes != nil {
		addSet("notes", *patch.Notes)
	}

	query := fmt.Sprintf(`UPDATE scheduled_talks SET %s WHERE id = $1`, strings.Join(sets, ", "))
	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return persistence.ScheduledTalk{}, fmt.Errorf("update scheduled talk: %w", mapError(err))
	}
	if result.RowsAffected() == 0 {
		return persistence.ScheduledTalk{}, persistence.ErrNotFound
	}

	return s.GetScheduledTalk(ctx, id)
}

// DeleteScheduledTalk removes a booking and reports whether a row existed.
func (s *Store) DeleteScheduledTalk(ctx context.Context, id int64) (bool, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM scheduled_talks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete scheduled talk: %w", mapError(err))
	}
	return result.RowsAffected() > 0, nil
}

// FindConflicts returns bookings in roomID overlapping the half-open interval
// [start, end), excluding excludeID when non-zero. Exactly touching intervals
// do not overlap.
func (s *Store) FindConflicts(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]persistence.ScheduledTalk, error) {
	query := scheduledTalkJoin + `
		WHERE st.room_id = $1
		  AND st.start_time < $3
		  AND st.end_time > $2
		  AND ($4 = 0 OR st.id <> $4)
		ORDER BY st.start_time ASC, st.id ASC
	`

	rows, err := s.pool.Query(ctx, query, roomID, start.UTC(), end.UTC(), excludeID)
	if err != nil {
		return nil, fmt.Errorf("find conflicts: %w", mapError(err))
	}
	defer rows.Close()

	var conflicts []persistence.ScheduledTalk
	for rows.Next() {
		talk, err := scanScheduledTalk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}
		conflicts = append(conflicts, talk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find conflicts: %w", mapError(err))
	}

	return conflicts, nil
}
