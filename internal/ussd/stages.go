package ussd

import (
	"github.com/wardlink/wardlink-backend/internal/session"
)

// Dialog stages. TERMINAL is never written to the session store; reaching
// it deletes the session.
const (
	StageLanguageSelect   session.Stage = "LANGUAGE_SELECT"
	StageMainMenu         session.Stage = "MAIN_MENU"
	StageRegisterName     session.Stage = "REGISTER_NAME"
	StageRegisterID       session.Stage = "REGISTER_ID"
	StageIssueCategory    session.Stage = "ISSUE_CATEGORY"
	StageIssueDescription session.Stage = "ISSUE_DESCRIPTION"
	StageProjects         session.Stage = "PROJECTS"
	StageRefCode          session.Stage = "AWAITING_REF_CODE"
	StageBursaryStudent   session.Stage = "BURSARY_STUDENT"
	StageBursarySchool    session.Stage = "BURSARY_SCHOOL"
	StageBursaryYear      session.Stage = "BURSARY_YEAR"
	StageTerminal         session.Stage = "TERMINAL"
)

// previousStage backs the "0 = back one stage" rule. Stages missing here
// have no predecessor and re-prompt instead.
var previousStage = map[session.Stage]session.Stage{
	StageRegisterName:     StageMainMenu,
	StageRegisterID:       StageRegisterName,
	StageIssueCategory:    StageMainMenu,
	StageIssueDescription: StageIssueCategory,
	StageProjects:         StageMainMenu,
	StageRefCode:          StageMainMenu,
	StageBursaryStudent:   StageMainMenu,
	StageBursarySchool:    StageBursaryStudent,
	StageBursaryYear:      StageBursarySchool,
}

// promptKey maps each stage to the i18n key of its prompt.
var promptKey = map[session.Stage]string{
	StageLanguageSelect:   "language_select",
	StageMainMenu:         "main_menu",
	StageRegisterName:     "register_name",
	StageRegisterID:       "register_id",
	StageIssueCategory:    "issue_category",
	StageIssueDescription: "issue_description",
	StageRefCode:          "refcode_prompt",
	StageBursaryStudent:   "bursary_student",
	StageBursarySchool:    "bursary_school",
	StageBursaryYear:      "bursary_year",
}
