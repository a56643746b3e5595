package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/example/talk-scheduler/internal/persistence"
)

// emailPattern accepts anything shaped like local@domain.tld without
// whitespace. Deliverability is not checked.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const abstractMinLength = 50

// SubmissionService handles the public proposal form and the admin views over
// submitted talks.
type SubmissionService struct {
	submissions persistence.SubmissionRepository
	logger      *slog.Logger
}

// NewSubmissionService wires dependencies for submission operations.
func NewSubmissionService(submissions persistence.SubmissionRepository) *SubmissionService {
	return NewSubmissionServiceWithLogger(submissions, nil)
}

// NewSubmissionServiceWithLogger constructs a SubmissionService with a specified logger.
func NewSubmissionServiceWithLogger(submissions persistence.SubmissionRepository, logger *slog.Logger) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		logger:      defaultLogger(logger),
	}
}

func (s *SubmissionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SubmissionService", operation, attrs...)
}

// Submit validates a proposal and stores it. No authentication is required;
// this is the public entry point.
func (s *SubmissionService) Submit(ctx context.Context, input SubmissionInput) (submission persistence.Submission, err error) {
	if s == nil {
		err = fmt.Errorf("SubmissionService is nil")
		return
	}
	if s.submissions == nil {
		err = fmt.Errorf("submission repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Submit")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "submission rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("submission_id", submission.ID).InfoContext(ctx, "submission stored")
	}()

	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	input.Title = strings.TrimSpace(input.Title)
	input.Abstract = strings.TrimSpace(input.Abstract)
	input.Affiliation = strings.TrimSpace(input.Affiliation)
	input.Questions = strings.TrimSpace(input.Questions)

	vErr := &ValidationError{}
	validateSubmission(input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	submission, err = s.submissions.InsertSubmission(ctx, persistence.Submission{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		SendCopy:    input.SendCopy,
		Title:       input.Title,
		Abstract:    input.Abstract,
		Affiliation: input.Affiliation,
		Questions:   optional(input.Questions),
	})
	if err != nil {
		err = mapRepoError(err)
		submission = persistence.Submission{}
	}
	return
}

// List returns all submissions, newest first.
func (s *SubmissionService) List(ctx context.Context) ([]persistence.Submission, error) {
	if s == nil || s.submissions == nil {
		return nil, fmt.Errorf("submission repository not configured")
	}
	submissions, err := s.submissions.ListSubmissions(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return submissions, nil
}

// Get returns a single submission by id.
func (s *SubmissionService) Get(ctx context.Context, id int64) (persistence.Submission, error) {
	if s == nil || s.submissions == nil {
		return persistence.Submission{}, fmt.Errorf("submission repository not configured")
	}
	submission, err := s.submissions.GetSubmission(ctx, id)
	if err != nil {
		return persistence.Submission{}, mapRepoError(err)
	}
	return submission, nil
}

// Delete removes a submission along with any scheduled talk that references
// it. Deleting an unknown id returns ErrNotFound.
func (s *SubmissionService) Delete(ctx context.Context, id int64) error {
	if s == nil || s.submissions == nil {
		return fmt.Errorf("submission repository not configured")
	}

	logger := s.loggerWith(ctx, "Delete", "submission_id", id)

	existed, err := s.submissions.DeleteSubmission(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "delete failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if !existed {
		return ErrNotFound
	}
	logger.InfoContext(ctx, "submission deleted")
	return nil
}

// validateSubmission measures all limits in characters, not bytes.
func validateSubmission(input SubmissionInput, vErr *ValidationError) {
	if input.FirstName == "" {
		vErr.add("firstName", "first name is required")
	} else if utf8.RuneCountInString(input.FirstName) > 255 {
		vErr.add("firstName", "first name must be at most 255 characters")
	}

	if input.LastName == "" {
		vErr.add("lastName", "last name is required")
	} else if utf8.RuneCountInString(input.LastName) > 255 {
		vErr.add("lastName", "last name must be at most 255 characters")
	}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if utf8.RuneCountInString(input.Email) > 255 || !emailPattern.MatchString(input.Email) {
		vErr.add("email", "email must be a valid address")
	}

	if input.Title == "" {
		vErr.add("talkTitle", "talk title is required")
	} else if utf8.RuneCountInString(input.Title) > 500 {
		vErr.add("talkTitle", "talk title must be at most 500 characters")
	}

	if input.Abstract == "" {
		vErr.add("talkAbstract", "abstract is required")
	} else if utf8.RuneCountInString(input.Abstract) < abstractMinLength {
		vErr.add("talkAbstract", fmt.Sprintf("abstract must be at least %d characters", abstractMinLength))
	}

	if input.Affiliation == "" {
		vErr.add("affiliation", "affiliation is required")
	} else if utf8.RuneCountInString(input.Affiliation) > 500 {
		vErr.add("affiliation", "affiliation must be at most 500 characters")
	}

	if utf8.RuneCountInString(input.Questions) > 2000 {
		vErr.add("questions", "questions must be at most 2000 characters")
	}
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("submissionId", "related records are missing")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "end must be after start")
		return vErr
	}
	return err
}
