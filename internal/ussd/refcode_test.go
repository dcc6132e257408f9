package ussd

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRefCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^WRD-[A-HJ-NP-Z2-9]{6}$`)
	for i := 0; i < 100; i++ {
		code := GenerateRefCode(TicketPrefix)
		assert.Regexp(t, pattern, code)
	}
}

func TestGenerateRefCodeMatchesValidator(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Empty(t, validateField("ref_code", GenerateRefCode(BursaryPrefix)))
	}
}

func TestGenerateRefCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[GenerateRefCode(TicketPrefix)] = true
	}
	// 32^6 possibilities; 200 draws colliding would mean a broken generator.
	assert.Greater(t, len(seen), 195)
}
