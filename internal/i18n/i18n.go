package i18n

import (
	"sync"
)

// Supported language codes
const (
	LangEnglish   = "en"
	LangKiswahili = "sw"
)

// Provider resolves display text per subscriber. Language preference is
// keyed by phone number and defaults to English.
type Provider struct {
	mu    sync.RWMutex
	prefs map[string]string
}

// NewProvider creates a text provider with no stored preferences.
func NewProvider() *Provider {
	return &Provider{prefs: make(map[string]string)}
}

// SetLanguage records the subscriber's language preference.
func (p *Provider) SetLanguage(phone, code string) {
	if code != LangEnglish && code != LangKiswahili {
		code = LangEnglish
	}
	p.mu.Lock()
	p.prefs[phone] = code
	p.mu.Unlock()
}

// Language returns the subscriber's preferred language code.
func (p *Provider) Language(phone string) string {
	p.mu.RLock()
	code, ok := p.prefs[phone]
	p.mu.RUnlock()
	if !ok {
		return LangEnglish
	}
	return code
}

// Text resolves a message key for the subscriber. Falls back to English,
// then to the key itself so a missing entry never blanks a screen.
func (p *Provider) Text(phone, key string) string {
	lang := p.Language(phone)
	if msg, ok := catalog[lang][key]; ok {
		return msg
	}
	if msg, ok := catalog[LangEnglish][key]; ok {
		return msg
	}
	return key
}

var catalog = map[string]map[string]string{
	LangEnglish: {
		"language_select": "Welcome to WardLink\n1. English\n2. Kiswahili",
		"main_menu": "WardLink Ward Services\n" +
			"1. Register\n2. Report issue\n3. Announcements\n" +
			"4. Projects\n5. Bursary status\n6. Apply for bursary\n0. Exit",
		"invalid_choice":      "Invalid choice.",
		"register_name":       "Enter your full name:",
		"register_id":         "Enter your national ID number:",
		"register_done":       "Thank you %s, you are now registered with the ward office.",
		"already_registered":  "This number is already registered as %s.",
		"issue_category":      "Report issue\n1. Water\n2. Roads\n3. Security\n4. Other\n0. Back",
		"issue_description":   "Describe the issue (5-140 characters):",
		"issue_done":          "Issue received. Ticket: %s. Use it to follow up at the ward office.",
		"announcements_none":  "No announcements at the moment.",
		"projects_none":       "No projects listed at the moment.",
		"projects_end":        "End of project list.",
		"projects_more":       "9. More\n0. Back",
		"refcode_prompt":      "Enter your bursary reference code:",
		"refcode_status":      "Application %s: %s",
		"refcode_not_found":   "No application found for ref %s. Check the code and try again.",
		"bursary_student":     "Enter the student's full name:",
		"bursary_school":      "Enter the school name:",
		"bursary_year":        "Enter the year of study (e.g. 2):",
		"bursary_done":        "Bursary application received. Ref: %s. Keep it for status checks.",
		"goodbye":             "Thank you for using WardLink.",
		"service_unavailable": "Service temporarily unavailable. Please try again later.",
		"err_name":            "Name must be 3-60 letters.",
		"err_national_id":     "ID must be 6-10 digits.",
		"err_description":     "Description must be 5-140 characters.",
		"err_refcode":         "Ref code looks wrong (e.g. BSY-4G7KQ2).",
		"err_school":          "School name must be 3-80 characters.",
		"err_year":            "Year must be a single digit 1-8.",
	},
	LangKiswahili: {
		"language_select": "Karibu WardLink\n1. English\n2. Kiswahili",
		"main_menu": "Huduma za Wadi\n" +
			"1. Jisajili\n2. Ripoti tatizo\n3. Matangazo\n" +
			"4. Miradi\n5. Hali ya bursary\n6. Omba bursary\n0. Toka",
		"invalid_choice":      "Chaguo si sahihi.",
		"register_name":       "Weka jina lako kamili:",
		"register_id":         "Weka nambari ya kitambulisho:",
		"register_done":       "Asante %s, umesajiliwa kwenye ofisi ya wadi.",
		"already_registered":  "Nambari hii tayari imesajiliwa kama %s.",
		"issue_category":      "Ripoti tatizo\n1. Maji\n2. Barabara\n3. Usalama\n4. Nyingine\n0. Rudi",
		"issue_description":   "Eleza tatizo (herufi 5-140):",
		"issue_done":          "Tatizo limepokelewa. Tiketi: %s. Itumie kufuatilia ofisini.",
		"announcements_none":  "Hakuna matangazo kwa sasa.",
		"projects_none":       "Hakuna miradi kwa sasa.",
		"projects_end":        "Mwisho wa orodha ya miradi.",
		"projects_more":       "9. Zaidi\n0. Rudi",
		"refcode_prompt":      "Weka nambari ya kumbukumbu ya bursary:",
		"refcode_status":      "Ombi %s: %s",
		"refcode_not_found":   "Hakuna ombi lenye kumbukumbu %s. Hakiki nambari kisha ujaribu tena.",
		"bursary_student":     "Weka jina kamili la mwanafunzi:",
		"bursary_school":      "Weka jina la shule:",
		"bursary_year":        "Weka mwaka wa masomo (mfano 2):",
		"bursary_done":        "Ombi la bursary limepokelewa. Kumbukumbu: %s. Itunze kwa kufuatilia.",
		"goodbye":             "Asante kwa kutumia WardLink.",
		"service_unavailable": "Huduma haipatikani kwa sasa. Tafadhali jaribu tena baadaye.",
		"err_name":            "Jina liwe herufi 3-60.",
		"err_national_id":     "Kitambulisho kiwe tarakimu 6-10.",
		"err_description":     "Maelezo yawe herufi 5-140.",
		"err_refcode":         "Nambari ya kumbukumbu si sahihi (mfano BSY-4G7KQ2).",
		"err_school":          "Jina la shule liwe herufi 3-80.",
		"err_year":            "Mwaka uwe tarakimu moja 1-8.",
	},
}
