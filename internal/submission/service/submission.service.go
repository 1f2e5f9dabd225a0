package service

import (
	"errors"
	"strings"

	"prophecyorb/internal/submission/model"
	"prophecyorb/internal/submission/repository"
	"prophecyorb/pkg/logger"
	"prophecyorb/socket"
)

// maxTextRunes is the clamp applied to prophecy text before storage.
const maxTextRunes = 2000

// ErrNothingToSubmit is returned when a submission carries neither text nor
// a doodle.
var ErrNothingToSubmit = errors.New("must provide either text or image")

type SubmissionService struct {
	Repo *repository.SubmissionRepository
	Hub  *socket.Hub
}

func NewSubmissionService(repo *repository.SubmissionRepository, hub *socket.Hub) *SubmissionService {
	return &SubmissionService{Repo: repo, Hub: hub}
}

// Submit stores one prophecy and announces it to viewers watching the orb.
// textContent is trimmed and clamped; doodleFilename is the name returned by
// the upload store, or empty for text-only prophecies.
func (s *SubmissionService) Submit(textContent, doodleFilename string) (int64, error) {
	textContent = clampText(textContent)
	if textContent == "" && doodleFilename == "" {
		return 0, ErrNothingToSubmit
	}

	id, err := s.Repo.Insert(textContent, doodleFilename)
	if err != nil {
		return 0, err
	}

	if s.Hub != nil {
		total, err := s.Repo.Count()
		if err != nil {
			logger.Sugar.Errorf("Failed to count submissions for orb push: %v", err)
		} else {
			s.Hub.Notify(total)
		}
	}
	return id, nil
}

// Scry fetches one prior prophecy chosen uniformly at random.
func (s *SubmissionService) Scry() (*model.Submission, error) {
	return s.Repo.Random()
}

func (s *SubmissionService) Count() (int, error) {
	return s.Repo.Count()
}

func clampText(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > maxTextRunes {
		runes = runes[:maxTextRunes]
	}
	// Re-trim in case the clamp cut into trailing whitespace.
	return strings.TrimSpace(string(runes))
}
