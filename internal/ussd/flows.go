package ussd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wardlink/wardlink-backend/internal/i18n"
	"github.com/wardlink/wardlink-backend/internal/models"
	"github.com/wardlink/wardlink-backend/internal/session"
	"github.com/wardlink/wardlink-backend/internal/storage"
)

// Registration flow

func (e *Engine) handleRegisterID(sess *session.Session, token string) (Reply, session.Stage, error) {
	if token == "0" {
		return e.back(sess.Phone, sess.Stage)
	}
	if errKey := validateField("national_id", token); errKey != "" {
		return e.annotatedPrompt(sess.Phone, sess.Stage, errKey)
	}
	sess.Fields["national_id"] = token

	language := sess.Fields["language"]
	if language == "" {
		language = i18n.LangEnglish
	}

	member, err := e.store.CreateMember(&models.MemberRegistration{
		Phone:      sess.Phone,
		FullName:   sess.Fields["name"],
		NationalID: sess.Fields["national_id"],
		Language:   language,
	})
	if err != nil {
		return Reply{}, sess.Stage, err
	}

	text := fmt.Sprintf(e.texts.Text(sess.Phone, "register_done"), member.FullName)
	e.notify(sess.Phone, text)
	return Reply{End: true, Text: text}, StageTerminal, nil
}

// Issue reporting flow

var issueCategories = map[string]string{
	"1": models.IssueCategoryWater,
	"2": models.IssueCategoryRoads,
	"3": models.IssueCategorySecurity,
	"4": models.IssueCategoryOther,
}

func (e *Engine) handleIssueCategory(sess *session.Session, token string) (Reply, session.Stage, error) {
	if token == "0" {
		return e.back(sess.Phone, sess.Stage)
	}
	category, ok := issueCategories[token]
	if !ok {
		return e.reprompt(sess.Phone, sess.Stage)
	}
	sess.Fields["category"] = category
	return e.promptReply(sess.Phone, StageIssueDescription)
}

func (e *Engine) handleIssueDescription(sess *session.Session, token string) (Reply, session.Stage, error) {
	if token == "0" {
		return e.back(sess.Phone, sess.Stage)
	}
	if errKey := validateField("description", token); errKey != "" {
		return e.annotatedPrompt(sess.Phone, sess.Stage, errKey)
	}
	sess.Fields["description"] = token

	ticket, err := e.createIssue(sess)
	if err != nil {
		return Reply{}, sess.Stage, err
	}

	text := fmt.Sprintf(e.texts.Text(sess.Phone, "issue_done"), ticket)
	e.notify(sess.Phone, text)
	return Reply{End: true, Text: text}, StageTerminal, nil
}

// createIssue persists the issue under a fresh ticket code, regenerating
// once if the storage layer reports a collision.
func (e *Engine) createIssue(sess *session.Session) (string, error) {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		code := GenerateRefCode(TicketPrefix)
		_, err = e.store.CreateIssue(&models.Issue{
			TicketCode:  code,
			Phone:       sess.Phone,
			Category:    sess.Fields["category"],
			Description: sess.Fields["description"],
		})
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, storage.ErrDuplicateRefCode) {
			return "", err
		}
	}
	return "", err
}

// Announcements (read-only)

func (e *Engine) showAnnouncements(sess *session.Session) (Reply, session.Stage, error) {
	items, err := e.store.ListAnnouncements(announcementLimit, 0)
	if err != nil {
		return Reply{}, sess.Stage, err
	}
	if len(items) == 0 {
		return Reply{End: true, Text: e.texts.Text(sess.Phone, "announcements_none")}, StageTerminal, nil
	}

	var sb strings.Builder
	for i, a := range items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, a.Title)
	}
	return Reply{End: true, Text: strings.TrimRight(sb.String(), "\n")}, StageTerminal, nil
}

// Projects (paginated read model: 9 = next page, 0 = back to main menu)

func (e *Engine) handleProjects(sess *session.Session, token string) (Reply, session.Stage, error) {
	switch token {
	case "0":
		return e.promptReply(sess.Phone, StageMainMenu)
	case "9":
		page, _ := strconv.Atoi(sess.Fields["project_page"])
		return e.showProjects(sess, page+1)
	default:
		page, _ := strconv.Atoi(sess.Fields["project_page"])
		reply, _, err := e.showProjects(sess, page)
		if err != nil {
			return Reply{}, sess.Stage, err
		}
		reply.Text = e.texts.Text(sess.Phone, "invalid_choice") + "\n" + reply.Text
		return reply, StageProjects, nil
	}
}

func (e *Engine) showProjects(sess *session.Session, page int) (Reply, session.Stage, error) {
	items, err := e.store.ListProjects(projectPageSize, page*projectPageSize)
	if err != nil {
		return Reply{}, sess.Stage, err
	}
	if len(items) == 0 {
		if page == 0 {
			return Reply{End: true, Text: e.texts.Text(sess.Phone, "projects_none")}, StageTerminal, nil
		}
		return Reply{End: true, Text: e.texts.Text(sess.Phone, "projects_end")}, StageTerminal, nil
	}

	sess.Fields["project_page"] = strconv.Itoa(page)

	var sb strings.Builder
	for i, p := range items {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, p.Name, p.Status)
	}
	sb.WriteString(e.texts.Text(sess.Phone, "projects_more"))
	return Reply{Text: sb.String()}, StageProjects, nil
}

// Bursary status lookup

func (e *Engine) handleRefCode(sess *session.Session, token string) (Reply, session.Stage, error) {
	if token == "0" {
		return e.back(sess.Phone, sess.Stage)
	}

	code := strings.ToUpper(token)
	if errKey := validateField("ref_code", code); errKey != "" {
		return e.annotatedPrompt(sess.Phone, sess.Stage, errKey)
	}

	app, err := e.store.GetBursaryByRefCode(code)
	if errors.Is(err, storage.ErrNotFound) {
		text := fmt.Sprintf(e.texts.Text(sess.Phone, "refcode_not_found"), code)
		return Reply{End: true, Text: text}, StageTerminal, nil
	}
	if err != nil {
		return Reply{}, sess.Stage, err
	}

	text := fmt.Sprintf(e.texts.Text(sess.Phone, "refcode_status"), app.RefCode, app.Status)
	return Reply{End: true, Text: text}, StageTerminal, nil
}

// Bursary application flow

func (e *Engine) handleBursaryYear(sess *session.Session, token string) (Reply, session.Stage, error) {
	if token == "0" {
		return e.back(sess.Phone, sess.Stage)
	}
	if errKey := validateField("year", token); errKey != "" {
		return e.annotatedPrompt(sess.Phone, sess.Stage, errKey)
	}
	sess.Fields["year"] = token

	ref, err := e.createBursary(sess)
	if err != nil {
		return Reply{}, sess.Stage, err
	}

	text := fmt.Sprintf(e.texts.Text(sess.Phone, "bursary_done"), ref)
	e.notify(sess.Phone, text)
	return Reply{End: true, Text: text}, StageTerminal, nil
}

func (e *Engine) createBursary(sess *session.Session) (string, error) {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		code := GenerateRefCode(BursaryPrefix)
		_, err = e.store.CreateBursary(&models.BursaryApplication{
			RefCode:     code,
			Phone:       sess.Phone,
			StudentName: sess.Fields["student_name"],
			School:      sess.Fields["school"],
			Year:        sess.Fields["year"],
		})
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, storage.ErrDuplicateRefCode) {
			return "", err
		}
	}
	return "", err
}
