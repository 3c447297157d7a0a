package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"swiftincorp.ng/api/models"
)

// Storage is the persistence boundary for every record the API serves.
// Lookups return (nil, nil) on a miss so callers can distinguish "not
// found" from a backend failure.
type Storage interface {
	ListPosts(ctx context.Context) ([]*models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	SavePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error

	ListSlides(ctx context.Context) ([]*models.Slide, error)
	SaveSlide(ctx context.Context, slide *models.Slide) error
	DeleteSlide(ctx context.Context, id string) error

	ListServices(ctx context.Context) ([]*models.Service, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	SaveService(ctx context.Context, service *models.Service) error

	ListApplications(ctx context.Context) ([]*models.Application, error)
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	FindApplicationByPaymentRef(ctx context.Context, ref string) (*models.Application, error)
	FindApplicationsByEmail(ctx context.Context, email string) ([]*models.Application, error)
	SaveApplication(ctx context.Context, app *models.Application) error

	GetAgentProfile(ctx context.Context) (*models.AgentProfile, error)
	SaveAgentProfile(ctx context.Context, profile *models.AgentProfile) error

	AppendAuditLog(ctx context.Context, entry *models.AuditLog) error
	ListAuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error)

	// MarkPaymentProcessed records a webhook transaction reference and
	// reports whether this call was the first to see it. The check is
	// backed by a unique constraint so concurrent gateway retries across
	// instances resolve to exactly one winner.
	MarkPaymentProcessed(ctx context.Context, reference string) (bool, error)

	Close() error
}

// MemoryStorage backs tests and local development. All maps are guarded by
// one mutex; contention is irrelevant at that scale.
type MemoryStorage struct {
	mu           sync.Mutex
	Posts        map[string]models.Post
	Slides       map[string]models.Slide
	Services     map[string]models.Service
	Applications map[string]models.Application
	Profile      *models.AgentProfile
	AuditLogs    []models.AuditLog
	Processed    map[string]bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		Posts:        make(map[string]models.Post),
		Slides:       make(map[string]models.Slide),
		Services:     make(map[string]models.Service),
		Applications: make(map[string]models.Application),
		Processed:    make(map[string]bool),
	}
}

func (m *MemoryStorage) ListPosts(ctx context.Context) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	posts := make([]*models.Post, 0, len(m.Posts))
	for _, post := range m.Posts {
		postCopy := post
		posts = append(posts, &postCopy)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *MemoryStorage) GetPost(ctx context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, exists := m.Posts[id]
	if !exists {
		return nil, nil
	}
	return &post, nil
}

func (m *MemoryStorage) SavePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Posts[post.ID] = *post
	return nil
}

func (m *MemoryStorage) DeletePost(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Posts, id)
	return nil
}

func (m *MemoryStorage) ListSlides(ctx context.Context) ([]*models.Slide, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slides := make([]*models.Slide, 0, len(m.Slides))
	for _, slide := range m.Slides {
		slideCopy := slide
		slides = append(slides, &slideCopy)
	}
	sort.Slice(slides, func(i, j int) bool {
		return slides[i].CreatedAt.Before(slides[j].CreatedAt)
	})
	return slides, nil
}

func (m *MemoryStorage) SaveSlide(ctx context.Context, slide *models.Slide) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Slides[slide.ID] = *slide
	return nil
}

func (m *MemoryStorage) DeleteSlide(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Slides, id)
	return nil
}

func (m *MemoryStorage) ListServices(ctx context.Context) ([]*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	services := make([]*models.Service, 0, len(m.Services))
	for _, service := range m.Services {
		serviceCopy := service
		services = append(services, &serviceCopy)
	}
	sort.Slice(services, func(i, j int) bool {
		return services[i].Name < services[j].Name
	})
	return services, nil
}

func (m *MemoryStorage) GetService(ctx context.Context, id string) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	service, exists := m.Services[id]
	if !exists {
		return nil, nil
	}
	return &service, nil
}

func (m *MemoryStorage) SaveService(ctx context.Context, service *models.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Services[service.ID] = *service
	return nil
}

func (m *MemoryStorage) ListApplications(ctx context.Context) ([]*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	apps := make([]*models.Application, 0, len(m.Applications))
	for _, app := range m.Applications {
		appCopy := app
		apps = append(apps, &appCopy)
	}
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps, nil
}

func (m *MemoryStorage) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, exists := m.Applications[id]
	if !exists {
		return nil, nil
	}
	return &app, nil
}

func (m *MemoryStorage) FindApplicationByPaymentRef(ctx context.Context, ref string) (*models.Application, error) {
	if ref == "" {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, app := range m.Applications {
		if app.PaymentRef == ref {
			appCopy := app
			return &appCopy, nil
		}
	}
	return nil, nil
}

func (m *MemoryStorage) FindApplicationsByEmail(ctx context.Context, email string) ([]*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var apps []*models.Application
	for _, app := range m.Applications {
		if strings.EqualFold(app.Email, email) {
			appCopy := app
			apps = append(apps, &appCopy)
		}
	}
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps, nil
}

func (m *MemoryStorage) SaveApplication(ctx context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Applications[app.ID] = *app
	return nil
}

func (m *MemoryStorage) GetAgentProfile(ctx context.Context) (*models.AgentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Profile == nil {
		return nil, nil
	}
	profileCopy := *m.Profile
	return &profileCopy, nil
}

func (m *MemoryStorage) SaveAgentProfile(ctx context.Context, profile *models.AgentProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	profileCopy := *profile
	m.Profile = &profileCopy
	return nil
}

func (m *MemoryStorage) AppendAuditLog(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AuditLogs = append(m.AuditLogs, *entry)
	return nil
}

func (m *MemoryStorage) ListAuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	logs := make([]*models.AuditLog, 0, len(m.AuditLogs))
	for i := len(m.AuditLogs) - 1; i >= 0; i-- {
		if limit > 0 && len(logs) >= limit {
			break
		}
		entry := m.AuditLogs[i]
		logs = append(logs, &entry)
	}
	return logs, nil
}

func (m *MemoryStorage) MarkPaymentProcessed(ctx context.Context, reference string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Processed[reference] {
		return false, nil
	}
	m.Processed[reference] = true
	return true, nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
