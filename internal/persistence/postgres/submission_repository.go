package postgres

import (
	"context"
	"fmt"

	"github.com/example/talk-scheduler/internal/persistence"
)

const submissionColumns = "id, first_name, last_name, email, send_copy, talk_title, talk_abstract, affiliation, questions, submitted_at"

// InsertSubmission stores a new talk proposal and returns it with the
// database-assigned id and timestamp.
func (s *Store) InsertSubmission(ctx context.Context, submission persistence.Submission) (persistence.Submission, error) {
	query := `
		INSERT INTO talk_submissions (first_name, last_name, email, send_copy, talk_title, talk_abstract, affiliation, questions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, submitted_at
	`

	err := s.pool.QueryRow(ctx, query,
		submission.FirstName,
		submission.LastName,
		submission.Email,
		submission.SendCopy,
		submission.Title,
		submission.Abstract,
		submission.Affiliation,
		submission.Questions,
	).Scan(&submission.ID, &submission.SubmittedAt)
	if err != nil {
		return persistence.Submission{}, fmt.Errorf("insert submission: %w", mapError(err))
	}

	return submission, nil
}

// ListSubmissions returns all submissions ordered newest first.
func (s *Store) ListSubmissions(ctx context.Context) ([]persistence.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM talk_submissions
		ORDER BY submitted_at DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", mapError(err))
	}
	defer rows.Close()

	var submissions []persistence.Submission
	for rows.Next() {
		var submission persistence.Submission
		err := rows.Scan(
			&submission.ID,
			&submission.FirstName,
			&submission.LastName,
			&submission.Email,
			&submission.SendCopy,
			&submission.Title,
			&submission.Abstract,
			&submission.Affiliation,
			&submission.Questions,
			&submission.SubmittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		submissions = append(submissions, submission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", mapError(err))
	}

	return submissions, nil
}

// GetSubmission returns a single submission by id.
func (s *Store) GetSubmission(ctx context.Context, id int64) (persistence.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM talk_submissions
		WHERE id = $1
	`

	var submission persistence.Submission
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&submission.ID,
		&submission.FirstName,
		&submission.LastName,
		&submission.Email,
		&submission.SendCopy,
		&submission.Title,
		&submission.Abstract,
		&submission.Affiliation,
		&submission.Questions,
		&submission.SubmittedAt,
	)
	if err != nil {
		return persistence.Submission{}, fmt.Errorf("get submission: %w", mapError(err))
	}

	return submission, nil
}

// DeleteSubmission removes a submission; the ON DELETE CASCADE constraint
// drops any scheduled talk referencing it.
func (s *Store) DeleteSubmission(ctx context.Context, id int64) (bool, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM talk_submissions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete submission: %w", mapError(err))
	}
	return result.RowsAffected() > 0, nil
}
