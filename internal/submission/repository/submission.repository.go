package repository

import (
	"database/sql"
	"errors"

	"prophecyorb/internal/submission/model"
	"prophecyorb/pkg/logger"
)

// ErrEmptyOrb is returned by Random when no submissions exist yet.
var ErrEmptyOrb = errors.New("the orb is empty")

type SubmissionRepository struct {
	DB *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// Insert persists one prophecy. The kind is derived from which parts are
// present; at least one of textContent or doodleFilename must be non-empty.
func (r *SubmissionRepository) Insert(textContent, doodleFilename string) (int64, error) {
	var kind string
	switch {
	case textContent != "" && doodleFilename != "":
		kind = model.KindBoth
	case textContent != "":
		kind = model.KindText
	case doodleFilename != "":
		kind = model.KindDoodle
	default:
		return 0, errors.New("nothing to store")
	}

	result, err := r.DB.Exec(
		`INSERT INTO submissions (text_content, doodle_filename, submission_type) VALUES (?, ?, ?)`,
		nullable(textContent), nullable(doodleFilename), kind,
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert submission: %v", err)
		return 0, err
	}
	return result.LastInsertId()
}

// Random returns one submission chosen uniformly over the rows present at
// call time. SQLite evaluates RANDOM() per row, so the ordering is a fresh
// shuffle on every query.
func (r *SubmissionRepository) Random() (*model.Submission, error) {
	var (
		s      model.Submission
		text   sql.NullString
		doodle sql.NullString
	)
	err := r.DB.QueryRow(
		`SELECT id, text_content, doodle_filename, submission_type, timestamp
		 FROM submissions ORDER BY RANDOM() LIMIT 1`,
	).Scan(&s.ID, &text, &doodle, &s.Kind, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrEmptyOrb
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to fetch random submission: %v", err)
		return nil, err
	}
	s.TextContent = text.String
	s.DoodleFilename = doodle.String
	return &s, nil
}

func (r *SubmissionRepository) Count() (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM submissions`).Scan(&count)
	if err != nil {
		logger.Sugar.Errorf("Failed to count submissions: %v", err)
		return 0, err
	}
	return count, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
