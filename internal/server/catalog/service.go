// Package catalog implements the ownership-scoped resource services:
// sections and their categories, dresses with hosted images, stats, JSON
// backup/restore and feedback. Every operation is scoped to the requesting
// user; shared default sections are visible to all but owned by nobody.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/avolkov/wardrobe/internal/common"
	"github.com/avolkov/wardrobe/internal/logging"
	"github.com/avolkov/wardrobe/internal/server/config"
	"github.com/avolkov/wardrobe/internal/server/dresses"
	"github.com/avolkov/wardrobe/internal/server/feedback"
	"github.com/avolkov/wardrobe/internal/server/mail"
	"github.com/avolkov/wardrobe/internal/server/media"
	"github.com/avolkov/wardrobe/internal/server/models"
	"github.com/avolkov/wardrobe/internal/server/sections"
)

const (
	recentLimit = 5
	mailTimeout = 15 * time.Second
)

type Service struct {
	sections sections.Repository
	dresses  dresses.Repository
	feedback feedback.Repository
	media    media.Storage
	mailer   mail.Mailer
	logger   logging.Logger

	feedbackEmail string
}

func NewService(
	sectionRepo sections.Repository,
	dressRepo dresses.Repository,
	feedbackRepo feedback.Repository,
	mediaStorage media.Storage,
	mailer mail.Mailer,
	logger logging.Logger,
	cfg *config.Config,
) *Service {
	return &Service{
		sections:      sectionRepo,
		dresses:       dressRepo,
		feedback:      feedbackRepo,
		media:         mediaStorage,
		mailer:        mailer,
		logger:        logger,
		feedbackEmail: cfg.FeedbackEmail,
	}
}

// SeedDefaults inserts the shared default sections once.
func (s *Service) SeedDefaults(ctx context.Context) error {

	count, err := s.sections.CountDefaults(ctx)
	if err != nil {
		return fmt.Errorf("error counting default sections: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, d := range defaultSections {
		section := d
		if err := s.sections.Insert(ctx, &section); err != nil {
			return fmt.Errorf("error seeding default section %q: %w", d.Name, err)
		}
	}

	s.logger.Info(ctx, "default shared sections seeded", "count", len(defaultSections))

	return nil
}

func (s *Service) ListSections(ctx context.Context, email string) ([]*models.Section, error) {
	return s.sections.List(ctx, email)
}

func (s *Service) CreateSection(ctx context.Context, email, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: section name required", common.ErrorValidation)
	}
	return s.sections.Create(ctx, email, name)
}

// DeleteSection removes a section the user owns, together with its dresses
// and, best-effort, their hosted images. Shared defaults are not deletable.
func (s *Service) DeleteSection(ctx context.Context, email, name string) error {

	section, err := s.sections.GetVisible(ctx, email, name)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	if err != nil || section.UserEmail == nil || *section.UserEmail != email {
		return common.ErrorForbidden
	}

	owned, err := s.dresses.ListBySection(ctx, email, name)
	if err != nil {
		return fmt.Errorf("error listing dresses for cleanup: %w", err)
	}
	for _, d := range owned {
		if d.ImageURL == "" {
			continue
		}
		if err := s.media.Delete(ctx, d.ImageURL); err != nil {
			s.logger.Warn(ctx, "could not delete hosted image", "url", d.ImageURL, "error", err)
		}
	}

	if err := s.dresses.DeleteBySection(ctx, email, name); err != nil {
		return err
	}

	return s.sections.DeleteOwned(ctx, email, name)
}

func (s *Service) AddCategory(ctx context.Context, email, section, category string) error {
	if strings.TrimSpace(section) == "" || strings.TrimSpace(category) == "" {
		return fmt.Errorf("%w: section and category required", common.ErrorValidation)
	}
	return s.sections.AddCategory(ctx, email, section, category)
}

// RemoveCategory drops a category and the user's dresses filed under it.
// Seed categories of the shared default sections are protected.
func (s *Service) RemoveCategory(ctx context.Context, email, section, category string) error {

	if isDefaultCategory(section, category) {
		return common.ErrorForbidden
	}

	if err := s.sections.RemoveCategory(ctx, email, section, category); err != nil {
		return err
	}

	return s.dresses.DeleteByCategory(ctx, email, section, category)
}

// UploadDress relays the image to object storage and stores the dress with
// the returned URL.
func (s *Service) UploadDress(ctx context.Context, email, name, section, category string, body io.Reader, size int64, contentType string) (*models.Dress, error) {

	url, err := s.media.Upload(ctx, body, size, contentType)
	if err != nil {
		return nil, err
	}

	dress, err := s.dresses.Create(ctx, &models.Dress{
		Name:      name,
		Section:   section,
		Category:  category,
		ImageURL:  url,
		UserEmail: email,
	})
	if err != nil {
		return nil, fmt.Errorf("error storing dress: %w", err)
	}

	return dress, nil
}

func (s *Service) ListDresses(ctx context.Context, email string) ([]*models.Dress, error) {
	return s.dresses.ListByUser(ctx, email)
}

func (s *Service) ListFavourites(ctx context.Context, email string) ([]*models.Dress, error) {
	return s.dresses.ListFavourites(ctx, email)
}

// Search returns no results for a blank query rather than everything.
func (s *Service) Search(ctx context.Context, email, query string) ([]*models.Dress, error) {
	if strings.TrimSpace(query) == "" {
		return []*models.Dress{}, nil
	}
	return s.dresses.Search(ctx, email, strings.TrimSpace(query))
}

func (s *Service) UpdateDress(ctx context.Context, id, email, name, section, category string, tags []string) (*models.Dress, error) {
	if name == "" || section == "" || category == "" {
		return nil, fmt.Errorf("%w: all fields are required", common.ErrorValidation)
	}
	return s.dresses.Update(ctx, id, email, name, section, category, tags)
}

// DeleteDress removes a dress the user owns and, best-effort, its image.
func (s *Service) DeleteDress(ctx context.Context, id, email string) error {

	dress, err := s.dresses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if dress.UserEmail != email {
		return common.ErrorForbidden
	}

	if dress.ImageURL != "" {
		if err := s.media.Delete(ctx, dress.ImageURL); err != nil {
			s.logger.Warn(ctx, "could not delete hosted image", "url", dress.ImageURL, "error", err)
		}
	}

	return s.dresses.Delete(ctx, id)
}

func (s *Service) ToggleFavourite(ctx context.Context, id, email string) (bool, error) {
	return s.dresses.ToggleFavourite(ctx, id, email)
}

type Stats struct {
	Dresses    int             `json:"dresses"`
	Sections   int             `json:"sections"`
	Categories int             `json:"categories"`
	Recent     []*models.Dress `json:"recent"`
}

func (s *Service) Stats(ctx context.Context, email string) (*Stats, error) {

	count, err := s.dresses.CountByUser(ctx, email)
	if err != nil {
		return nil, err
	}

	visible, err := s.sections.List(ctx, email)
	if err != nil {
		return nil, err
	}

	categories := 0
	for _, sec := range visible {
		categories += len(sec.Categories)
	}

	recent, err := s.dresses.ListRecent(ctx, email, recentLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []*models.Dress{}
	}

	return &Stats{
		Dresses:    count,
		Sections:   len(visible),
		Categories: categories,
		Recent:     recent,
	}, nil
}

type BackupUser struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Backup is the exported JSON snapshot of a user's sections and dresses.
type Backup struct {
	ExportedAt time.Time         `json:"exportedAt"`
	User       BackupUser        `json:"user"`
	Sections   []*models.Section `json:"sections"`
	Dresses    []*models.Dress   `json:"dresses"`
}

func (s *Service) Backup(ctx context.Context, user *models.SessionUser) (*Backup, error) {

	owned, err := s.sections.List(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	// the export carries only the user's own sections; defaults are
	// recreated by seeding
	var ownSections []*models.Section
	for _, sec := range owned {
		if sec.UserEmail != nil && *sec.UserEmail == user.Email {
			ownSections = append(ownSections, sec)
		}
	}
	if ownSections == nil {
		ownSections = []*models.Section{}
	}

	dressList, err := s.dresses.ListByUser(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if dressList == nil {
		dressList = []*models.Dress{}
	}

	return &Backup{
		ExportedAt: time.Now(),
		User:       BackupUser{Name: user.Name, Username: user.Username, Email: user.Email},
		Sections:   ownSections,
		Dresses:    dressList,
	}, nil
}

// Restore replaces the user's sections and dresses with the imported
// snapshot and reports how many of each were added.
func (s *Service) Restore(ctx context.Context, email string, sectionList []*models.Section, dressList []*models.Dress) (int, int, error) {

	if sectionList == nil || dressList == nil {
		return 0, 0, fmt.Errorf("%w: invalid restore data", common.ErrorValidation)
	}

	if err := s.sections.DeleteAllFor(ctx, email); err != nil {
		return 0, 0, err
	}
	if err := s.dresses.DeleteAllFor(ctx, email); err != nil {
		return 0, 0, err
	}

	addedSections := 0
	for _, sec := range sectionList {
		owner := email
		if err := s.sections.Insert(ctx, &models.Section{
			Name:       sec.Name,
			Categories: sec.Categories,
			UserEmail:  &owner,
		}); err != nil {
			return addedSections, 0, err
		}
		addedSections++
	}

	addedDresses := 0
	for _, d := range dressList {
		if _, err := s.dresses.Create(ctx, &models.Dress{
			Name:       d.Name,
			Section:    d.Section,
			Category:   d.Category,
			ImageURL:   d.ImageURL,
			UserEmail:  email,
			IsFavorite: d.IsFavorite,
			Tags:       d.Tags,
			CreatedAt:  d.CreatedAt,
		}); err != nil {
			return addedSections, addedDresses, err
		}
		addedDresses++
	}

	return addedSections, addedDresses, nil
}

// ResetDefaults drops the user's own sections and dresses, leaving only the
// shared defaults visible.
func (s *Service) ResetDefaults(ctx context.Context, email string) error {
	if err := s.sections.DeleteAllFor(ctx, email); err != nil {
		return err
	}
	return s.dresses.DeleteAllFor(ctx, email)
}

// SubmitFeedback stores the submission and forwards it by mail to the
// configured feedback address, fire-and-forget.
func (s *Service) SubmitFeedback(ctx context.Context, userName, message string) error {

	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: feedback message required", common.ErrorValidation)
	}

	fb, err := s.feedback.Create(ctx, &models.Feedback{UserName: userName, Message: message})
	if err != nil {
		return fmt.Errorf("error storing feedback: %w", err)
	}

	if s.feedbackEmail != "" {
		msg := mail.FeedbackMessage(s.feedbackEmail, fb.UserName, fb.Message)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
			defer cancel()

			if err := s.mailer.Send(ctx, msg); err != nil {
				s.logger.Error(ctx, "feedback email delivery failed", "error", err)
			}
		}()
	}

	return nil
}
