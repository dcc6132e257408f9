package ussd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wardlink/wardlink-backend/internal/i18n"
	"github.com/wardlink/wardlink-backend/internal/models"
	"github.com/wardlink/wardlink-backend/internal/session"
	"github.com/wardlink/wardlink-backend/internal/storage"
)

// Display limits for the read-only menus.
const (
	announcementLimit = 3
	projectPageSize   = 3
)

// TextProvider resolves subscriber-facing copy and language preference.
type TextProvider interface {
	Text(phone, key string) string
	SetLanguage(phone, code string)
	Language(phone string) string
}

// Notifier sends out-of-band confirmations after terminal submissions.
// Optional; a nil notifier disables confirmations.
type Notifier interface {
	SendSMS(to, message string) error
}

// Request is one normalized inbound gateway turn. Text carries the full
// accumulated *-joined input path; the engine trusts the persisted stage
// and consumes only the last token — it never re-parses the full path.
// Gateways that post only the newest token work unchanged, since a single
// token's last token is itself.
type Request struct {
	SessionID string
	Phone     string
	Text      string
}

// Engine turns one inbound gateway request into one framed response,
// advancing the per-session dialog state machine.
type Engine struct {
	sessions *session.Store
	store    storage.Store
	texts    TextProvider
	notifier Notifier
}

// NewEngine creates a dialog engine.
func NewEngine(sessions *session.Store, store storage.Store, texts TextProvider, notifier Notifier) *Engine {
	return &Engine{
		sessions: sessions,
		store:    store,
		texts:    texts,
		notifier: notifier,
	}
}

// Handle processes one dialog turn. It never returns an error: any
// collaborator failure becomes a generic END response and the session is
// discarded so the subscriber restarts cleanly.
func (e *Engine) Handle(req Request) Reply {
	sess := e.sessions.Get(req.SessionID)
	token := lastToken(req.Text)
	if sess == nil {
		// New, expired or evicted ids all restart at the entry stage.
		// A stale token from a dead dialog must not be interpreted
		// against the fresh stage, so it is dropped.
		sess = session.New(req.SessionID, req.Phone, StageLanguageSelect)
		token = ""
	}

	stage := sess.Stage
	reply, next, err := e.dispatch(sess, token)
	if err != nil {
		log.Printf("❌ Collaborator failure (session %s, stage %s): %v", req.SessionID, stage, err)
		reply = Reply{End: true, Text: e.texts.Text(req.Phone, "service_unavailable")}
		next = StageTerminal
	}

	if reply.End || next == StageTerminal {
		e.sessions.Delete(req.SessionID)
	} else {
		e.sessions.Update(req.SessionID, req.Phone, next, sess.Fields)
	}

	e.logTurn(req, stage, token, reply)
	return reply
}

func (e *Engine) dispatch(sess *session.Session, token string) (Reply, session.Stage, error) {
	switch sess.Stage {
	case StageLanguageSelect:
		return e.handleLanguageSelect(sess, token)
	case StageMainMenu:
		return e.handleMainMenu(sess, token)
	case StageRegisterName:
		return e.collect(sess, token, "name", StageRegisterID)
	case StageRegisterID:
		return e.handleRegisterID(sess, token)
	case StageIssueCategory:
		return e.handleIssueCategory(sess, token)
	case StageIssueDescription:
		return e.handleIssueDescription(sess, token)
	case StageProjects:
		return e.handleProjects(sess, token)
	case StageRefCode:
		return e.handleRefCode(sess, token)
	case StageBursaryStudent:
		return e.collect(sess, token, "student_name", StageBursarySchool)
	case StageBursarySchool:
		return e.collect(sess, token, "school", StageBursaryYear)
	case StageBursaryYear:
		return e.handleBursaryYear(sess, token)
	default:
		// Unknown stage means a corrupt session; start over.
		sess.Stage = StageLanguageSelect
		return e.promptReply(sess.Phone, StageLanguageSelect)
	}
}

func (e *Engine) handleLanguageSelect(sess *session.Session, token string) (Reply, session.Stage, error) {
	switch token {
	case "", "0":
		// No previous stage to go back to; re-show the menu.
		return e.promptReply(sess.Phone, StageLanguageSelect)
	case "1", "2":
		code := i18n.LangEnglish
		if token == "2" {
			code = i18n.LangKiswahili
		}
		e.texts.SetLanguage(sess.Phone, code)
		sess.Fields["language"] = code
		return e.promptReply(sess.Phone, StageMainMenu)
	default:
		return e.reprompt(sess.Phone, StageLanguageSelect)
	}
}

func (e *Engine) handleMainMenu(sess *session.Session, token string) (Reply, session.Stage, error) {
	switch token {
	case "1":
		member, err := e.store.GetMemberByPhone(sess.Phone)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return Reply{}, sess.Stage, err
		}
		if err == nil {
			text := fmt.Sprintf(e.texts.Text(sess.Phone, "already_registered"), member.FullName)
			return Reply{End: true, Text: text}, StageTerminal, nil
		}
		return e.promptReply(sess.Phone, StageRegisterName)
	case "2":
		return e.promptReply(sess.Phone, StageIssueCategory)
	case "3":
		return e.showAnnouncements(sess)
	case "4":
		return e.showProjects(sess, 0)
	case "5":
		return e.promptReply(sess.Phone, StageRefCode)
	case "6":
		return e.promptReply(sess.Phone, StageBursaryStudent)
	case "0":
		return Reply{End: true, Text: e.texts.Text(sess.Phone, "goodbye")}, StageTerminal, nil
	default:
		return e.reprompt(sess.Phone, StageMainMenu)
	}
}

// collect handles a plain free-text collection stage: validate the token
// against the field table, store it, move on. "0" backs up one stage.
func (e *Engine) collect(sess *session.Session, token, field string, next session.Stage) (Reply, session.Stage, error) {
	if token == "0" {
		return e.back(sess.Phone, sess.Stage)
	}
	if errKey := validateField(field, token); errKey != "" {
		return e.annotatedPrompt(sess.Phone, sess.Stage, errKey)
	}
	sess.Fields[field] = token
	return e.promptReply(sess.Phone, next)
}

// prompt/reprompt helpers

func (e *Engine) prompt(phone string, stage session.Stage) string {
	return e.texts.Text(phone, promptKey[stage])
}

func (e *Engine) promptReply(phone string, stage session.Stage) (Reply, session.Stage, error) {
	return Reply{Text: e.prompt(phone, stage)}, stage, nil
}

func (e *Engine) reprompt(phone string, stage session.Stage) (Reply, session.Stage, error) {
	return e.annotatedPrompt(phone, stage, "invalid_choice")
}

func (e *Engine) annotatedPrompt(phone string, stage session.Stage, errKey string) (Reply, session.Stage, error) {
	text := e.texts.Text(phone, errKey) + "\n" + e.prompt(phone, stage)
	return Reply{Text: text}, stage, nil
}

func (e *Engine) back(phone string, stage session.Stage) (Reply, session.Stage, error) {
	prev, ok := previousStage[stage]
	if !ok {
		return e.promptReply(phone, stage)
	}
	return e.promptReply(phone, prev)
}

func (e *Engine) notify(phone, message string) {
	if e.notifier == nil {
		return
	}
	go func() {
		if err := e.notifier.SendSMS(phone, message); err != nil {
			log.Printf("❌ Failed to send confirmation SMS to %s: %v", phone, err)
		}
	}()
}

func (e *Engine) logTurn(req Request, stage session.Stage, token string, reply Reply) {
	// Audit only; a failed write never affects the response.
	_ = e.store.LogSessionRequest(&models.SessionLog{
		SessionID: req.SessionID,
		Msisdn:    req.Phone,
		Stage:     string(stage),
		UserInput: token,
		Ended:     reply.End,
		CreatedAt: time.Now(),
	})
}
