package ussd

import (
	"strings"
)

// MaxReplyLength is the display budget one USSD screen gives us. Telco
// gateways silently mangle anything longer, so replies are clipped hard.
const MaxReplyLength = 182

// Reply is one framed outbound response. End=false renders as CON (the
// gateway keeps the dialog open); End=true renders as END (dialog closes).
type Reply struct {
	End  bool
	Text string
}

// Render produces the gateway wire form: "CON <text>" or "END <text>".
func (r Reply) Render() string {
	prefix := "CON "
	if r.End {
		prefix = "END "
	}
	return prefix + clip(r.Text)
}

func clip(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= MaxReplyLength {
		return string(runes)
	}
	return string(runes[:MaxReplyLength-3]) + "..."
}

// lastToken returns the newest user input from the accumulated *-joined
// path. All earlier tokens were consumed on prior turns; the engine
// trusts the persisted stage and never replays them.
func lastToken(text string) string {
	parts := strings.Split(text, "*")
	for i := len(parts) - 1; i >= 0; i-- {
		if token := strings.TrimSpace(parts[i]); token != "" {
			return token
		}
	}
	return ""
}
