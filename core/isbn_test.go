package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookwyrm/lending-core-go/core"
)

func Test_BuildISBN_NormalizesHyphensAndSpaces(t *testing.T) {
	// act
	isbn, err := core.BuildISBN("978-0-13-449416-6")

	// assert
	assert.NoError(t, err, "Hyphenated ISBN-13 should be accepted")
	assert.Equal(t, "9780134494166", isbn, "Separators should be stripped")
}

func Test_BuildISBN_AcceptsISBN10_WithCheckCharacterX(t *testing.T) {
	// act
	isbn, err := core.BuildISBN("0-8044-2957-x")

	// assert
	assert.NoError(t, err, "ISBN-10 with X check character should be accepted")
	assert.Equal(t, "080442957X", isbn, "Check character should be uppercased")
}

func Test_BuildISBN_Fails_OnUnrecognizableInput(t *testing.T) {
	for _, raw := range []string{"", "12345", "978013449416", "abcdefghij", "9770134494166"} {
		_, err := core.BuildISBN(raw)
		assert.ErrorIs(t, err, core.ErrInvalidISBN, "Should reject %q", raw)
	}
}

func Test_BuildEmail_Fails_OnBadFormats(t *testing.T) {
	for _, raw := range []string{"", "no-at-sign", "a@b", "Display Name <a@b.org>", "a@@b.org"} {
		_, err := core.BuildEmail(raw)
		assert.ErrorIs(t, err, core.ErrInvalidEmail, "Should reject %q", raw)
	}
}

func Test_BuildEmail_LowercasesDomainOnly(t *testing.T) {
	// act
	email, err := core.BuildEmail("Ada.Lovelace@Example.ORG")

	// assert
	assert.NoError(t, err, "Valid address should be accepted")
	assert.Equal(t, "Ada.Lovelace@example.org", email, "Local part stays as given, domain is lowercased")
}

func Test_FailureKind_ClassifiesBusinessRuleErrors(t *testing.T) {
	kind, ok := core.FailureKind(core.ErrAlreadyBorrowed)
	assert.True(t, ok, "Business rule errors should classify")
	assert.NotEmpty(t, kind, "Kind should be populated")

	_, ok = core.FailureKind(assert.AnError)
	assert.False(t, ok, "Arbitrary errors should not classify")
}
