package catalog

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avolkov/wardrobe/internal/common"
	"github.com/avolkov/wardrobe/internal/server/mail"
	"github.com/avolkov/wardrobe/internal/server/models"
)

type memSections struct {
	mu   sync.Mutex
	list []*models.Section
	seq  int
}

func newMemSections() *memSections {
	return &memSections{}
}

func (m *memSections) List(ctx context.Context, email string) ([]*models.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Section
	for _, s := range m.list {
		if s.UserEmail == nil || *s.UserEmail == email {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memSections) Create(ctx context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.list {
		if s.Name == name && (s.UserEmail == nil || *s.UserEmail == email) {
			return common.ErrorAlreadyExists
		}
	}
	m.seq++
	owner := email
	m.list = append(m.list, &models.Section{
		ID:        fmt.Sprintf("sec%d", m.seq),
		Name:      name,
		UserEmail: &owner,
	})
	return nil
}

func (m *memSections) Insert(ctx context.Context, section *models.Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	stored := *section
	stored.ID = fmt.Sprintf("sec%d", m.seq)
	m.list = append(m.list, &stored)
	return nil
}

func (m *memSections) GetVisible(ctx context.Context, email, name string) (*models.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var def *models.Section
	for _, s := range m.list {
		if s.Name != name {
			continue
		}
		if s.UserEmail != nil && *s.UserEmail == email {
			copied := *s
			return &copied, nil
		}
		if s.UserEmail == nil {
			def = s
		}
	}
	if def != nil {
		copied := *def
		return &copied, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memSections) DeleteOwned(ctx context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.list {
		if s.Name == name && s.UserEmail != nil && *s.UserEmail == email {
			m.list = append(m.list[:i], m.list[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (m *memSections) AddCategory(ctx context.Context, email, section, category string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.list {
		if s.Name != section {
			continue
		}
		if s.UserEmail != nil && *s.UserEmail != email {
			continue
		}
		for _, c := range s.Categories {
			if c == category {
				return common.ErrorAlreadyExists
			}
		}
		s.Categories = append(s.Categories, category)
		return nil
	}
	return common.ErrorNotFound
}

func (m *memSections) RemoveCategory(ctx context.Context, email, section, category string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.list {
		if s.Name != section {
			continue
		}
		if s.UserEmail != nil && *s.UserEmail != email {
			continue
		}
		for i, c := range s.Categories {
			if c == category {
				s.Categories = append(s.Categories[:i], s.Categories[i+1:]...)
				return nil
			}
		}
		return nil
	}
	return common.ErrorNotFound
}

func (m *memSections) DeleteAllFor(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.list[:0]
	for _, s := range m.list {
		if s.UserEmail == nil || *s.UserEmail != email {
			kept = append(kept, s)
		}
	}
	m.list = kept
	return nil
}

func (m *memSections) CountDefaults(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.list {
		if s.UserEmail == nil {
			n++
		}
	}
	return n, nil
}

type memDresses struct {
	mu   sync.Mutex
	list []*models.Dress
	seq  int
}

func newMemDresses() *memDresses {
	return &memDresses{}
}

func (m *memDresses) Create(ctx context.Context, dress *models.Dress) (*models.Dress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	stored := *dress
	stored.ID = fmt.Sprintf("d%d", m.seq)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.list = append(m.list, &stored)
	out := stored
	return &out, nil
}

func (m *memDresses) GetByID(ctx context.Context, id string) (*models.Dress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.list {
		if d.ID == id {
			copied := *d
			return &copied, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memDresses) ListByUser(ctx context.Context, email string) ([]*models.Dress, error) {
	return m.filter(func(d *models.Dress) bool { return d.UserEmail == email }), nil
}

func (m *memDresses) ListFavourites(ctx context.Context, email string) ([]*models.Dress, error) {
	return m.filter(func(d *models.Dress) bool { return d.UserEmail == email && d.IsFavorite }), nil
}

func (m *memDresses) ListBySection(ctx context.Context, email, section string) ([]*models.Dress, error) {
	return m.filter(func(d *models.Dress) bool { return d.UserEmail == email && d.Section == section }), nil
}

func (m *memDresses) ListByCategory(ctx context.Context, email, section, category string) ([]*models.Dress, error) {
	return m.filter(func(d *models.Dress) bool {
		return d.UserEmail == email && d.Section == section && d.Category == category
	}), nil
}

func (m *memDresses) ListRecent(ctx context.Context, email string, limit int) ([]*models.Dress, error) {
	out := m.filter(func(d *models.Dress) bool { return d.UserEmail == email })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memDresses) Search(ctx context.Context, email, query string) ([]*models.Dress, error) {
	q := strings.ToLower(query)
	return m.filter(func(d *models.Dress) bool {
		if d.UserEmail != email {
			return false
		}
		return strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Section), q) ||
			strings.Contains(strings.ToLower(d.Category), q)
	}), nil
}

func (m *memDresses) Update(ctx context.Context, id, email, name, section, category string, tags []string) (*models.Dress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.list {
		if d.ID == id && d.UserEmail == email {
			d.Name, d.Section, d.Category, d.Tags = name, section, category, tags
			copied := *d
			return &copied, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memDresses) ToggleFavourite(ctx context.Context, id, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.list {
		if d.ID == id && d.UserEmail == email {
			d.IsFavorite = !d.IsFavorite
			return d.IsFavorite, nil
		}
	}
	return false, common.ErrorNotFound
}

func (m *memDresses) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.list {
		if d.ID == id {
			m.list = append(m.list[:i], m.list[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (m *memDresses) DeleteBySection(ctx context.Context, email, section string) error {
	m.remove(func(d *models.Dress) bool { return d.UserEmail == email && d.Section == section })
	return nil
}

func (m *memDresses) DeleteByCategory(ctx context.Context, email, section, category string) error {
	m.remove(func(d *models.Dress) bool {
		return d.UserEmail == email && d.Section == section && d.Category == category
	})
	return nil
}

func (m *memDresses) DeleteAllFor(ctx context.Context, email string) error {
	m.remove(func(d *models.Dress) bool { return d.UserEmail == email })
	return nil
}

func (m *memDresses) CountByUser(ctx context.Context, email string) (int, error) {
	return len(m.filter(func(d *models.Dress) bool { return d.UserEmail == email })), nil
}

func (m *memDresses) filter(keep func(*models.Dress) bool) []*models.Dress {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Dress
	for _, d := range m.list {
		if keep(d) {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out
}

func (m *memDresses) remove(drop func(*models.Dress) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.list[:0]
	for _, d := range m.list {
		if !drop(d) {
			kept = append(kept, d)
		}
	}
	m.list = kept
}

type memFeedback struct {
	mu   sync.Mutex
	list []*models.Feedback
	seq  int
}

func (m *memFeedback) Create(ctx context.Context, fb *models.Feedback) (*models.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	stored := *fb
	stored.ID = fmt.Sprintf("f%d", m.seq)
	if stored.UserName == "" {
		stored.UserName = "Anonymous"
	}
	stored.CreatedAt = time.Now()
	m.list = append(m.list, &stored)
	out := stored
	return &out, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	uploads int
	deleted []string
}

func (f *fakeStorage) Upload(ctx context.Context, body io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	return fmt.Sprintf("https://img.test/obj%d", f.uploads), nil
}

func (f *fakeStorage) Delete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

type captureMailer struct {
	ch chan mail.Message
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{ch: make(chan mail.Message, 8)}
}

func (m *captureMailer) Send(ctx context.Context, msg mail.Message) error {
	m.ch <- msg
	return nil
}
