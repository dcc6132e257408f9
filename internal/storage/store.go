package storage

import (
	"errors"
	"sync"

	"github.com/wardlink/wardlink-backend/internal/models"
)

// Sentinel errors shared by all store implementations. The dialog engine
// branches on these with errors.Is; anything else is treated as a
// collaborator failure.
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateRefCode = errors.New("duplicate reference code")
)

var (
	storeInstance Store
	storeOnce     sync.Once
)

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Member operations
	CreateMember(reg *models.MemberRegistration) (*models.Member, error)
	GetMemberByPhone(phone string) (*models.Member, error)

	// Issue operations
	CreateIssue(issue *models.Issue) (*models.Issue, error)
	GetIssueByTicket(ticketCode string) (*models.Issue, error)

	// Bursary operations
	CreateBursary(app *models.BursaryApplication) (*models.BursaryApplication, error)
	GetBursaryByRefCode(refCode string) (*models.BursaryApplication, error)

	// Read models for the announcement/project menus
	ListAnnouncements(limit, offset int) ([]*models.Announcement, error)
	ListProjects(limit, offset int) ([]*models.Project, error)

	// Audit trail
	LogSessionRequest(entry *models.SessionLog) error
}
