package httpapi

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

// In-memory repository implementations backing the handler tests.

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User
	seq  int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}}
}

func (m *memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	m.seq++
	stored := *user
	stored.ID = fmt.Sprintf("u%d", m.seq)
	stored.CreatedAt = time.Now()
	m.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (m *memUsers) SetVerified(ctx context.Context, id string) error {
	return m.update(id, func(u *models.User) { u.Verified = true })
}

func (m *memUsers) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (m *memUsers) UpdateName(ctx context.Context, id, name string) error {
	return m.update(id, func(u *models.User) { u.Name = name })
}

func (m *memUsers) UpdateUsername(ctx context.Context, id, username string) error {
	return m.update(id, func(u *models.User) { u.Username = username })
}

func (m *memUsers) UpdateProfilePic(ctx context.Context, id, url string) error {
	return m.update(id, func(u *models.User) { u.ProfilePic = url })
}

func (m *memUsers) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memUsers) update(id string, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

type memTokens struct {
	mu    sync.Mutex
	byKey map[string]*models.Token
	seq   int
}

func newMemTokens() *memTokens {
	return &memTokens{byKey: map[string]*models.Token{}}
}

func (m *memTokens) Put(ctx context.Context, userID, purpose, tokenHash string, validity time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.byKey[userID+"/"+purpose] = &models.Token{
		ID:        fmt.Sprintf("t%d", m.seq),
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: tokenHash,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(validity),
	}
	return nil
}

func (m *memTokens) FindActive(ctx context.Context, userID, purpose string) (*models.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byKey[userID+"/"+purpose]
	if !ok || time.Now().After(t.ExpiresAt) {
		return nil, common.ErrorNotFound
	}
	out := *t
	return &out, nil
}

func (m *memTokens) DeleteByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.byKey {
		if t.ID == id {
			delete(m.byKey, k)
		}
	}
	return nil
}

func (m *memTokens) DeleteAllFor(ctx context.Context, userID, purpose string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byKey, userID+"/"+purpose)
	return nil
}

func (m *memTokens) PurgeExpired(ctx context.Context) (int64, error) { return 0, nil }

type memSessions struct {
	mu   sync.Mutex
	byID map[string]*models.SessionUser
	seq  int
}

func newMemSessions() *memSessions {
	return &memSessions{byID: map[string]*models.SessionUser{}}
}

func (m *memSessions) Create(ctx context.Context, user *models.SessionUser) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := fmt.Sprintf("session-%d", m.seq)
	snapshot := *user
	m.byID[id] = &snapshot
	return id, nil
}

func (m *memSessions) Get(ctx context.Context, id string) (*models.SessionUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (m *memSessions) Destroy(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memSessions) DestroyAllForEmail(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.byID {
		if u.Email == email {
			delete(m.byID, id)
		}
	}
	return nil
}

func (m *memSessions) UpdateSnapshot(ctx context.Context, user *models.SessionUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.ID == user.ID {
			*u = *user
		}
	}
	return nil
}

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

type dropMailer struct{}

func (dropMailer) Send(ctx context.Context, msg mail.Message) error { return nil }
