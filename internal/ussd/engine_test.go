package ussd

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardlink/wardlink-backend/internal/i18n"
	"github.com/wardlink/wardlink-backend/internal/models"
	"github.com/wardlink/wardlink-backend/internal/session"
	"github.com/wardlink/wardlink-backend/internal/storage"
)

const (
	testSID   = "ATUid_1234"
	testPhone = "+254712345678"
)

// fakeStore is a hand-rolled storage.Store for engine tests.
type fakeStore struct {
	members       map[string]*models.Member
	issues        []*models.Issue
	bursaries     map[string]*models.BursaryApplication
	announcements []*models.Announcement
	projects      []*models.Project
	logs          []*models.SessionLog

	failReads      bool
	dupIssues      int // next N CreateIssue calls report a ref-code collision
	issueAttempts  int
	errUnavailable error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members:        make(map[string]*models.Member),
		bursaries:      make(map[string]*models.BursaryApplication),
		errUnavailable: errors.New("db down"),
	}
}

func (f *fakeStore) CreateMember(reg *models.MemberRegistration) (*models.Member, error) {
	member := &models.Member{
		Phone:      reg.Phone,
		FullName:   reg.FullName,
		NationalID: reg.NationalID,
		Language:   reg.Language,
	}
	f.members[reg.Phone] = member
	return member, nil
}

func (f *fakeStore) GetMemberByPhone(phone string) (*models.Member, error) {
	if f.failReads {
		return nil, f.errUnavailable
	}
	member, ok := f.members[phone]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return member, nil
}

func (f *fakeStore) CreateIssue(issue *models.Issue) (*models.Issue, error) {
	f.issueAttempts++
	if f.dupIssues > 0 {
		f.dupIssues--
		return nil, storage.ErrDuplicateRefCode
	}
	f.issues = append(f.issues, issue)
	return issue, nil
}

func (f *fakeStore) GetIssueByTicket(ticketCode string) (*models.Issue, error) {
	for _, issue := range f.issues {
		if issue.TicketCode == ticketCode {
			return issue, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) CreateBursary(app *models.BursaryApplication) (*models.BursaryApplication, error) {
	if _, exists := f.bursaries[app.RefCode]; exists {
		return nil, storage.ErrDuplicateRefCode
	}
	if app.Status == "" {
		app.Status = models.BursaryStatusPending
	}
	f.bursaries[app.RefCode] = app
	return app, nil
}

func (f *fakeStore) GetBursaryByRefCode(refCode string) (*models.BursaryApplication, error) {
	if f.failReads {
		return nil, f.errUnavailable
	}
	app, ok := f.bursaries[refCode]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return app, nil
}

func (f *fakeStore) ListAnnouncements(limit, offset int) ([]*models.Announcement, error) {
	if f.failReads {
		return nil, f.errUnavailable
	}
	return pageAnnouncements(f.announcements, limit, offset), nil
}

func (f *fakeStore) ListProjects(limit, offset int) ([]*models.Project, error) {
	if f.failReads {
		return nil, f.errUnavailable
	}
	if offset >= len(f.projects) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.projects) {
		end = len(f.projects)
	}
	return f.projects[offset:end], nil
}

func pageAnnouncements(items []*models.Announcement, limit, offset int) []*models.Announcement {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (f *fakeStore) LogSessionRequest(entry *models.SessionLog) error {
	f.logs = append(f.logs, entry)
	return nil
}

func newTestEngine(fs *fakeStore) (*Engine, *session.Store) {
	sessions := session.NewStore(session.Config{
		MaxSessions:     100,
		TTL:             time.Minute,
		CleanupInterval: time.Hour,
	})
	return NewEngine(sessions, fs, i18n.NewProvider(), nil), sessions
}

// drive replays a dialog the way a gateway would: first an empty text,
// then the accumulated *-joined path growing by one token per turn.
func drive(e *Engine, sid, phone string, inputs ...string) Reply {
	reply := e.Handle(Request{SessionID: sid, Phone: phone, Text: ""})
	path := ""
	for _, input := range inputs {
		if path == "" {
			path = input
		} else {
			path += "*" + input
		}
		reply = e.Handle(Request{SessionID: sid, Phone: phone, Text: path})
	}
	return reply
}

func TestFreshSessionShowsLanguageMenu(t *testing.T) {
	e, sessions := newTestEngine(newFakeStore())

	reply := e.Handle(Request{SessionID: testSID, Phone: testPhone, Text: ""})

	assert.False(t, reply.End)
	assert.True(t, strings.HasPrefix(reply.Render(), "CON "))
	assert.Contains(t, reply.Text, "1. English")

	sess := sessions.Get(testSID)
	require.NotNil(t, sess)
	assert.Equal(t, StageLanguageSelect, sess.Stage)
}

func TestLanguageSelectionAdvancesToMainMenu(t *testing.T) {
	e, sessions := newTestEngine(newFakeStore())

	reply := drive(e, testSID, testPhone, "1")

	assert.False(t, reply.End)
	assert.Contains(t, reply.Text, "1. Register")

	sess := sessions.Get(testSID)
	require.NotNil(t, sess)
	assert.Equal(t, StageMainMenu, sess.Stage)
	assert.Equal(t, "en", sess.Fields["language"])
}

func TestKiswahiliSelection(t *testing.T) {
	e, _ := newTestEngine(newFakeStore())

	reply := drive(e, testSID, testPhone, "2")

	assert.Contains(t, reply.Text, "Jisajili")
}

func TestMainMenuIssueSelection(t *testing.T) {
	e, sessions := newTestEngine(newFakeStore())

	reply := drive(e, testSID, testPhone, "1", "2")

	assert.False(t, reply.End)
	assert.Contains(t, reply.Text, "Water")

	sess := sessions.Get(testSID)
	require.NotNil(t, sess)
	assert.Equal(t, StageIssueCategory, sess.Stage)
}

func TestIssueSubmission(t *testing.T) {
	fs := newFakeStore()
	e, sessions := newTestEngine(fs)

	reply := drive(e, testSID, testPhone, "1", "2", "1", "Pothole on Main Road")

	assert.True(t, reply.End)
	assert.Regexp(t, regexp.MustCompile(`WRD-[A-Z0-9]{6}`), reply.Text)

	require.Len(t, fs.issues, 1)
	assert.Equal(t, models.IssueCategoryWater, fs.issues[0].Category)
	assert.Equal(t, "Pothole on Main Road", fs.issues[0].Description)
	assert.Equal(t, testPhone, fs.issues[0].Phone)

	assert.Nil(t, sessions.Get(testSID), "terminal response must delete the session")
}

func TestInvalidMenuChoiceReprompts(t *testing.T) {
	e, sessions := newTestEngine(newFakeStore())

	menu := drive(e, testSID, testPhone, "1")
	before := sessions.Get(testSID)

	reply := e.Handle(Request{SessionID: testSID, Phone: testPhone, Text: "1*8"})

	assert.False(t, reply.End)
	assert.Contains(t, reply.Text, "Invalid choice.")
	assert.Contains(t, reply.Text, menu.Text, "re-prompt must show the same menu")

	after := sessions.Get(testSID)
	require.NotNil(t, after)
	assert.Equal(t, before.Stage, after.Stage)
	assert.Equal(t, before.Fields, after.Fields)
}

func TestRegistrationFlow(t *testing.T) {
	fs := newFakeStore()
	e, sessions := newTestEngine(fs)

	mid := drive(e, testSID, testPhone, "1", "1", "Jane Doe")
	assert.False(t, mid.End)

	sess := sessions.Get(testSID)
	require.NotNil(t, sess)
	assert.Equal(t, "Jane Doe", sess.Fields["name"])

	reply := e.Handle(Request{SessionID: testSID, Phone: testPhone, Text: "1*1*Jane Doe*12345678"})

	assert.True(t, reply.End)
	assert.Contains(t, reply.Text, "Jane Doe")

	member, ok := fs.members[testPhone]
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", member.FullName)
	assert.Equal(t, "12345678", member.NationalID)

	assert.Nil(t, sessions.Get(testSID))
}

func TestAlreadyRegistered(t *testing.T) {
	fs := newFakeStore()
	fs.members[testPhone] = &models.Member{Phone: testPhone, FullName: "Jane Doe"}
	e, sessions := newTestEngine(fs)

	reply := drive(e, testSID, testPhone, "1", "1")

	assert.True(t, reply.End)
	assert.Contains(t, reply.Text, "Jane Doe")
	assert.Nil(t, sessions.Get(testSID))
}

func TestBackFromRegisterID(t *testing.T) {
	e, sessions := newTestEngine(newFakeStore())

	drive(e, testSID, testPhone, "1", "1", "Jane Doe")
	reply := e.Handle(Request{SessionID: testSID, Phone: testPhone, Text: "1*1*Jane Doe*0"})

	assert.False(t, reply.End)
	assert.Contains(t, reply.Text, "Enter your full name")

	sess := sessions.Get(testSID)
	require.NotNil(t, sess)
	assert.Equal(t, StageRegisterName, sess.Stage)
}

func TestRefCodeNotFound(t *testing.T) {
	e, sessions := newTestEngine(newFakeStore())

	reply := drive(e, testSID, testPhone, "1", "5", "BSY-ABCDEF")

	assert.True(t, reply.End)
	assert.Contains(t, reply.Text, "No application found for ref BSY-ABCDEF")
	assert.Nil(t, sessions.Get(testSID))
}

func TestRefCodeLookup(t *testing.T) {
	fs := newFakeStore()
	fs.bursaries["BSY-4G7KQ2"] = &models.BursaryApplication{
		RefCode: "BSY-4G7KQ2",
		Status:  models.BursaryStatusApproved,
	}
	e, _ := newTestEngine(fs)

	// Lowercase input is normalized before lookup.
	reply := drive(e, testSID, testPhone, "1", "5", "bsy-4g7kq2")

	assert.True(t, reply.End)
	assert.Contains(t, reply.Text, "BSY-4G7KQ2")
	assert.Contains(t, reply.Text, models.BursaryStatusApproved)
}

func TestRefCodeBadFormatReprompts(t *testing.T) {
	e, sessions := newTestEngine(newFakeStore())

	reply := drive(e, testSID, testPhone, "1", "5", "garbage")

	assert.False(t, reply.End)
	assert.Contains(t, reply.Text, "Ref code looks wrong")

	sess := sessions.Get(testSID)
	require.NotNil(t, sess)
	assert.Equal(t, StageRefCode, sess.Stage)
}

func TestBursaryApplication(t *testing.T) {
	fs := newFakeStore()
	e, sessions := newTestEngine(fs)

	reply := drive(e, testSID, testPhone, "1", "6", "Mary Atieno", "Ward High School", "2")

	assert.True(t, reply.End)
	assert.Regexp(t, regexp.MustCompile(`BSY-[A-Z0-9]{6}`), reply.Text)

	require.Len(t, fs.bursaries, 1)
	for _, app := range fs.bursaries {
		assert.Equal(t, "Mary Atieno", app.StudentName)
		assert.Equal(t, "Ward High School", app.School)
		assert.Equal(t, "2", app.Year)
	}

	assert.Nil(t, sessions.Get(testSID))
}

func TestAnnouncements(t *testing.T) {
	fs := newFakeStore()
	fs.announcements = []*models.Announcement{
		{Title: "Water rationing this week"},
		{Title: "Bursary deadline Friday"},
	}
	e, _ := newTestEngine(fs)

	reply := drive(e, testSID, testPhone, "1", "3")

	assert.True(t, reply.End)
	assert.Contains(t, reply.Text, "Water rationing this week")
	assert.Contains(t, reply.Text, "Bursary deadline Friday")
}

func TestAnnouncementsEmpty(t *testing.T) {
	e, _ := newTestEngine(newFakeStore())

	reply := drive(e, testSID, testPhone, "1", "3")

	assert.True(t, reply.End)
	assert.Contains(t, reply.Text, "No announcements")
}

func TestProjectsPagination(t *testing.T) {
	fs := newFakeStore()
	for i := 1; i <= 7; i++ {
		fs.projects = append(fs.projects, &models.Project{
			Name:   fmt.Sprintf("Project %d", i),
			Status: "ongoing",
		})
	}
	e, sessions := newTestEngine(fs)

	page0 := drive(e, testSID, testPhone, "1", "4")
	assert.False(t, page0.End)
	assert.Contains(t, page0.Text, "Project 1")
	assert.Contains(t, page0.Text, "9. More")
	assert.NotContains(t, page0.Text, "Project 4")

	page1 := e.Handle(Request{SessionID: testSID, Phone: testPhone, Text: "1*4*9"})
	assert.Contains(t, page1.Text, "Project 4")
	assert.Equal(t, "1", sessions.Get(testSID).Fields["project_page"])

	page2 := e.Handle(Request{SessionID: testSID, Phone: testPhone, Text: "1*4*9*9"})
	assert.Contains(t, page2.Text, "Project 7")

	end := e.Handle(Request{SessionID: testSID, Phone: testPhone, Text: "1*4*9*9*9"})
	assert.True(t, end.End)
	assert.Contains(t, end.Text, "End of project list")
}

func TestProjectsBackToMainMenu(t *testing.T) {
	fs := newFakeStore()
	fs.projects = []*models.Project{{Name: "Borehole", Status: "ongoing"}}
	e, sessions := newTestEngine(fs)

	drive(e, testSID, testPhone, "1", "4")
	reply := e.Handle(Request{SessionID: testSID, Phone: testPhone, Text: "1*4*0"})

	assert.False(t, reply.End)
	assert.Contains(t, reply.Text, "1. Register")
	assert.Equal(t, StageMainMenu, sessions.Get(testSID).Stage)
}

func TestProjectsInvalidChoiceKeepsPage(t *testing.T) {
	fs := newFakeStore()
	fs.projects = []*models.Project{{Name: "Borehole", Status: "ongoing"}}
	e, sessions := newTestEngine(fs)

	drive(e, testSID, testPhone, "1", "4")
	reply := e.Handle(Request{SessionID: testSID, Phone: testPhone, Text: "1*4*x"})

	assert.False(t, reply.End)
	assert.Contains(t, reply.Text, "Invalid choice.")
	assert.Contains(t, reply.Text, "Borehole")
	assert.Equal(t, "0", sessions.Get(testSID).Fields["project_page"])
}

func TestExitFromMainMenu(t *testing.T) {
	e, sessions := newTestEngine(newFakeStore())

	reply := drive(e, testSID, testPhone, "1", "0")

	assert.True(t, reply.End)
	assert.Contains(t, reply.Text, "Thank you")
	assert.Nil(t, sessions.Get(testSID))
}

func TestCollaboratorFailureEndsCleanly(t *testing.T) {
	fs := newFakeStore()
	e, sessions := newTestEngine(fs)

	drive(e, testSID, testPhone, "1")
	fs.failReads = true

	reply := e.Handle(Request{SessionID: testSID, Phone: testPhone, Text: "1*1"})

	assert.True(t, reply.End)
	assert.Contains(t, reply.Text, "Service temporarily unavailable")
	assert.Nil(t, sessions.Get(testSID), "failed dialog must not be left half-advanced")
}

func TestTicketCollisionRetriedOnce(t *testing.T) {
	fs := newFakeStore()
	fs.dupIssues = 1
	e, _ := newTestEngine(fs)

	reply := drive(e, testSID, testPhone, "1", "2", "1", "Pothole on Main Road")

	assert.True(t, reply.End)
	assert.Regexp(t, regexp.MustCompile(`WRD-[A-Z0-9]{6}`), reply.Text)
	assert.Equal(t, 2, fs.issueAttempts)
}

func TestTicketCollisionTwiceFailsGeneric(t *testing.T) {
	fs := newFakeStore()
	fs.dupIssues = 2
	e, sessions := newTestEngine(fs)

	reply := drive(e, testSID, testPhone, "1", "2", "1", "Pothole on Main Road")

	assert.True(t, reply.End)
	assert.Contains(t, reply.Text, "Service temporarily unavailable")
	assert.Equal(t, 2, fs.issueAttempts)
	assert.Nil(t, sessions.Get(testSID))
}

func TestStaleTokenAfterExpiryIsDropped(t *testing.T) {
	e, _ := newTestEngine(newFakeStore())

	// No session exists for this id; the accumulated path is from a dead
	// dialog and must not be interpreted against the fresh entry stage.
	reply := e.Handle(Request{SessionID: "expired", Phone: testPhone, Text: "2*5*FOO"})

	assert.False(t, reply.End)
	assert.Contains(t, reply.Text, "1. English")
}

func TestTurnsAreLogged(t *testing.T) {
	fs := newFakeStore()
	e, _ := newTestEngine(fs)

	drive(e, testSID, testPhone, "1", "0")

	require.Len(t, fs.logs, 3)
	assert.Equal(t, string(StageLanguageSelect), fs.logs[0].Stage)
	assert.Equal(t, string(StageMainMenu), fs.logs[2].Stage)
	assert.True(t, fs.logs[2].Ended)
	assert.Equal(t, testPhone, fs.logs[1].Msisdn)
}
