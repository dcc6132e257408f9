package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/wardlink/wardlink-backend/internal/models"
)

// DatabaseStore persists all records via GORM/PostgreSQL. Requires the
// connection to be opened with TranslateError so unique-constraint
// violations surface as gorm.ErrDuplicatedKey.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed storage
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Member operations

func (d *DatabaseStore) CreateMember(reg *models.MemberRegistration) (*models.Member, error) {
	member := &models.Member{
		Phone:      reg.Phone,
		FullName:   reg.FullName,
		NationalID: reg.NationalID,
		Language:   reg.Language,
	}
	if member.Language == "" {
		member.Language = "en"
	}

	if err := d.db.Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (d *DatabaseStore) GetMemberByPhone(phone string) (*models.Member, error) {
	var member models.Member
	err := d.db.Where("phone = ?", phone).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Issue operations

func (d *DatabaseStore) CreateIssue(issue *models.Issue) (*models.Issue, error) {
	err := d.db.Create(issue).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrDuplicateRefCode
	}
	if err != nil {
		return nil, err
	}
	return issue, nil
}

func (d *DatabaseStore) GetIssueByTicket(ticketCode string) (*models.Issue, error) {
	var issue models.Issue
	err := d.db.Where("ticket_code = ?", ticketCode).First(&issue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// Bursary operations

func (d *DatabaseStore) CreateBursary(app *models.BursaryApplication) (*models.BursaryApplication, error) {
	err := d.db.Create(app).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrDuplicateRefCode
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (d *DatabaseStore) GetBursaryByRefCode(refCode string) (*models.BursaryApplication, error) {
	var app models.BursaryApplication
	err := d.db.Where("ref_code = ?", refCode).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Read models

func (d *DatabaseStore) ListAnnouncements(limit, offset int) ([]*models.Announcement, error) {
	var announcements []*models.Announcement
	err := d.db.Where("active = ?", true).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&announcements).Error
	if err != nil {
		return nil, err
	}
	return announcements, nil
}

func (d *DatabaseStore) ListProjects(limit, offset int) ([]*models.Project, error) {
	var projects []*models.Project
	err := d.db.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Audit trail

func (d *DatabaseStore) LogSessionRequest(entry *models.SessionLog) error {
	return d.db.Create(entry).Error
}
