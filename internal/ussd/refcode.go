package ussd

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Reference code prefixes
const (
	TicketPrefix  = "WRD"
	BursaryPrefix = "BSY"
)

const refCodeSuffixLen = 6

// Ambiguous characters (0/O, 1/I) are excluded so codes survive being
// read out over the phone.
const refCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRefCode generates a reference code such as WRD-4G7KQ2.
// Collision resistance is good enough for human lookup only; the storage
// layer enforces uniqueness and the engine retries once on collision.
func GenerateRefCode(prefix string) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte('-')

	max := big.NewInt(int64(len(refCodeAlphabet)))
	for i := 0; i < refCodeSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is gone;
			// fall back to a fixed character rather than panic mid-dialog.
			sb.WriteByte(refCodeAlphabet[0])
			continue
		}
		sb.WriteByte(refCodeAlphabet[n.Int64()])
	}

	return sb.String()
}
