package storage

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/wardlink/wardlink-backend/internal/models"
)

const maxMemoryLogs = 1000

// MemoryStore holds all data in memory for development and tests.
type MemoryStore struct {
	members       map[string]*models.Member // keyed by phone
	issues        map[string]*models.Issue  // keyed by ticket code
	bursaries     map[string]*models.BursaryApplication
	announcements []*models.Announcement
	projects      []*models.Project
	logs          []*models.SessionLog

	memberMu  sync.RWMutex
	issueMu   sync.RWMutex
	bursaryMu sync.RWMutex
	readMu    sync.RWMutex
	logMu     sync.Mutex

	memberCounter uint
	issueCounter  uint
	logCounter    uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		members:   make(map[string]*models.Member),
		issues:    make(map[string]*models.Issue),
		bursaries: make(map[string]*models.BursaryApplication),
	}
}

// Member operations

func (m *MemoryStore) CreateMember(reg *models.MemberRegistration) (*models.Member, error) {
	m.memberMu.Lock()
	defer m.memberMu.Unlock()

	if _, exists := m.members[reg.Phone]; exists {
		return nil, fmt.Errorf("member already registered for %s", reg.Phone)
	}

	language := reg.Language
	if language == "" {
		language = "en"
	}

	m.memberCounter++
	member := &models.Member{
		Model:      gorm.Model{ID: m.memberCounter, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Phone:      reg.Phone,
		FullName:   reg.FullName,
		NationalID: reg.NationalID,
		Language:   language,
	}

	m.members[member.Phone] = member
	return member, nil
}

func (m *MemoryStore) GetMemberByPhone(phone string) (*models.Member, error) {
	m.memberMu.RLock()
	defer m.memberMu.RUnlock()

	member, exists := m.members[phone]
	if !exists {
		return nil, ErrNotFound
	}
	return member, nil
}

// Issue operations

func (m *MemoryStore) CreateIssue(issue *models.Issue) (*models.Issue, error) {
	m.issueMu.Lock()
	defer m.issueMu.Unlock()

	if _, exists := m.issues[issue.TicketCode]; exists {
		return nil, ErrDuplicateRefCode
	}

	m.issueCounter++
	issue.ID = m.issueCounter
	issue.CreatedAt = time.Now()
	issue.UpdatedAt = time.Now()
	if issue.Status == "" {
		issue.Status = models.IssueStatusOpen
	}

	m.issues[issue.TicketCode] = issue
	return issue, nil
}

func (m *MemoryStore) GetIssueByTicket(ticketCode string) (*models.Issue, error) {
	m.issueMu.RLock()
	defer m.issueMu.RUnlock()

	issue, exists := m.issues[ticketCode]
	if !exists {
		return nil, ErrNotFound
	}
	return issue, nil
}

// Bursary operations

func (m *MemoryStore) CreateBursary(app *models.BursaryApplication) (*models.BursaryApplication, error) {
	m.bursaryMu.Lock()
	defer m.bursaryMu.Unlock()

	if _, exists := m.bursaries[app.RefCode]; exists {
		return nil, ErrDuplicateRefCode
	}

	app.CreatedAt = time.Now()
	app.UpdatedAt = time.Now()
	if app.Status == "" {
		app.Status = models.BursaryStatusPending
	}

	m.bursaries[app.RefCode] = app
	return app, nil
}

func (m *MemoryStore) GetBursaryByRefCode(refCode string) (*models.BursaryApplication, error) {
	m.bursaryMu.RLock()
	defer m.bursaryMu.RUnlock()

	app, exists := m.bursaries[refCode]
	if !exists {
		return nil, ErrNotFound
	}
	return app, nil
}

// Read models

func (m *MemoryStore) ListAnnouncements(limit, offset int) ([]*models.Announcement, error) {
	m.readMu.RLock()
	defer m.readMu.RUnlock()
	return pageOf(m.announcements, limit, offset), nil
}

func (m *MemoryStore) ListProjects(limit, offset int) ([]*models.Project, error) {
	m.readMu.RLock()
	defer m.readMu.RUnlock()
	return pageOf(m.projects, limit, offset), nil
}

// SeedReadModels loads announcements and projects for dev/test runs.
func (m *MemoryStore) SeedReadModels(announcements []*models.Announcement, projects []*models.Project) {
	m.readMu.Lock()
	defer m.readMu.Unlock()
	m.announcements = announcements
	m.projects = projects
}

// Audit trail

func (m *MemoryStore) LogSessionRequest(entry *models.SessionLog) error {
	m.logMu.Lock()
	defer m.logMu.Unlock()

	m.logCounter++
	entry.ID = m.logCounter
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	m.logs = append(m.logs, entry)
	if len(m.logs) > maxMemoryLogs {
		m.logs = m.logs[len(m.logs)-maxMemoryLogs:]
	}
	return nil
}

// SessionLogs returns a copy of the retained log entries (for tests and
// the admin overview).
func (m *MemoryStore) SessionLogs() []*models.SessionLog {
	m.logMu.Lock()
	defer m.logMu.Unlock()

	out := make([]*models.SessionLog, len(m.logs))
	copy(out, m.logs)
	return out
}

func pageOf[T any](items []*T, limit, offset int) []*T {
	if offset >= len(items) || limit <= 0 {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
