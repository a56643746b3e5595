package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/talk-scheduler/internal/persistence"
)

type submissionRepoStub struct {
	submissions []persistence.Submission
	nextID      int64
	insertErr   error
}

func (s *submissionRepoStub) InsertSubmission(_ context.Context, submission persistence.Submission) (persistence.Submission, error) {
	if s.insertErr != nil {
		return persistence.Submission{}, s.insertErr
	}
	s.nextID++
	submission.ID = s.nextID
	submission.SubmittedAt = time.Date(2026, time.February, 10, 8, 0, 0, 0, time.UTC)
	s.submissions = append(s.submissions, submission)
	return submission, nil
}

func (s *submissionRepoStub) ListSubmissions(context.Context) ([]persistence.Submission, error) {
	out := make([]persistence.Submission, len(s.submissions))
	copy(out, s.submissions)
	return out, nil
}

func (s *submissionRepoStub) GetSubmission(_ context.Context, id int64) (persistence.Submission, error) {
	for _, submission := range s.submissions {
		if submission.ID == id {
			return submission, nil
		}
	}
	return persistence.Submission{}, persistence.ErrNotFound
}

func (s *submissionRepoStub) DeleteSubmission(_ context.Context, id int64) (bool, error) {
	for i, submission := range s.submissions {
		if submission.ID == id {
			s.submissions = append(s.submissions[:i], s.submissions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func validSubmissionInput() SubmissionInput {
	return SubmissionInput{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.org",
		SendCopy:    true,
		Title:       "Notes on the Analytical Engine",
		Abstract:    strings.Repeat("The engine weaves algebraic patterns. ", 3),
		Affiliation: "University of London",
		Questions:   "Is there a projector?",
	}
}

func TestSubmissionService_Submit(t *testing.T) {
	t.Run("stores valid proposal", func(t *testing.T) {
		repo := &submissionRepoStub{}
		service := NewSubmissionService(repo)

		input := validSubmissionInput()
		input.FirstName = "  Ada  "

		submission, err := service.Submit(context.Background(), input)
		if err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
		if submission.ID == 0 {
			t.Fatalf("expected assigned id")
		}
		if submission.FirstName != "Ada" {
			t.Fatalf("expected trimmed first name, got %q", submission.FirstName)
		}
		if submission.Questions == nil || *submission.Questions != "Is there a projector?" {
			t.Fatalf("unexpected questions %v", submission.Questions)
		}
	})

	t.Run("empty questions stored as null", func(t *testing.T) {
		repo := &submissionRepoStub{}
		service := NewSubmissionService(repo)

		input := validSubmissionInput()
		input.Questions = "   "

		submission, err := service.Submit(context.Background(), input)
		if err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
		if submission.Questions != nil {
			t.Fatalf("expected nil questions, got %q", *submission.Questions)
		}
	})

	t.Run("collects field errors", func(t *testing.T) {
		repo := &submissionRepoStub{}
		service := NewSubmissionService(repo)

		_, err := service.Submit(context.Background(), SubmissionInput{
			Email:    "not-an-email",
			Abstract: "too short",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"firstName", "lastName", "email", "talkTitle", "talkAbstract", "affiliation"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected error for field %q", field)
			}
		}
		if len(repo.submissions) != 0 {
			t.Fatalf("expected no write on validation failure")
		}
	})

	t.Run("abstract below minimum length", func(t *testing.T) {
		service := NewSubmissionService(&submissionRepoStub{})

		input := validSubmissionInput()
		input.Abstract = strings.Repeat("x", abstractMinLength-1)

		_, err := service.Submit(context.Background(), input)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["talkAbstract"]; !ok {
			t.Fatalf("expected talkAbstract error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("abstract at exactly the minimum length accepted", func(t *testing.T) {
		service := NewSubmissionService(&submissionRepoStub{})

		input := validSubmissionInput()
		input.Abstract = strings.Repeat("x", abstractMinLength)

		if _, err := service.Submit(context.Background(), input); err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
	})

	t.Run("lengths are counted in characters, not bytes", func(t *testing.T) {
		service := NewSubmissionService(&submissionRepoStub{})

		// 49 two-byte runes: 98 bytes, still one character short.
		input := validSubmissionInput()
		input.Abstract = strings.Repeat("å", abstractMinLength-1)

		_, err := service.Submit(context.Background(), input)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["talkAbstract"]; !ok {
			t.Fatalf("expected talkAbstract error, got %v", vErr.FieldErrors)
		}

		input.Abstract = strings.Repeat("å", abstractMinLength)
		if _, err := service.Submit(context.Background(), input); err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
	})

	t.Run("oversized fields rejected", func(t *testing.T) {
		service := NewSubmissionService(&submissionRepoStub{})

		input := validSubmissionInput()
		input.FirstName = strings.Repeat("a", 256)
		input.Title = strings.Repeat("b", 501)
		input.Questions = strings.Repeat("c", 2001)

		_, err := service.Submit(context.Background(), input)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"firstName", "talkTitle", "questions"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected error for field %q", field)
			}
		}
	})
}

func TestSubmissionService_GetDelete(t *testing.T) {
	repo := &submissionRepoStub{}
	service := NewSubmissionService(repo)

	stored, err := service.Submit(context.Background(), validSubmissionInput())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if _, err := service.Get(context.Background(), stored.ID); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if _, err := service.Get(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := service.Delete(context.Background(), stored.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := service.Delete(context.Background(), stored.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
