package models

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	require.Error(t, err)
	errs, ok := err.(validation.Errors)
	require.True(t, ok, "expected validation.Errors, got %T", err)
	return errs
}

func TestArticleValidate(t *testing.T) {
	errs := fieldErrors(t, Article{Slug: "Bad Slug", Status: "live"}.Validate())
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "content")
	assert.Contains(t, errs, "slug")
	assert.Contains(t, errs, "status")

	assert.NoError(t, Article{Title: "Saturn return", Slug: "saturn-return", Content: "<p>x</p>", Status: StatusDraft}.Validate())
}

func TestTagValidate(t *testing.T) {
	errs := fieldErrors(t, Tag{}.Validate())
	assert.Contains(t, errs, "name")
	assert.NoError(t, Tag{Name: "Astrology"}.Validate())
}

func TestHouseNumberRange(t *testing.T) {
	assert.Contains(t, fieldErrors(t, House{Number: 13, Name: "X"}.Validate()), "number")
	assert.Contains(t, fieldErrors(t, House{Name: "X"}.Validate()), "number")
	assert.NoError(t, House{Number: 12, Name: "Vyaya"}.Validate())
}

func TestZoneAndEntrance(t *testing.T) {
	assert.Contains(t, fieldErrors(t, Zone{Name: "North", Direction: "UP"}.Validate()), "direction")
	assert.NoError(t, Zone{Name: "North", Direction: "N", Element: "space"}.Validate())

	assert.Contains(t, fieldErrors(t, Entrance{Code: "N9"}.Validate()), "code")
	assert.NoError(t, Entrance{Code: "E3", Effect: "auspicious"}.Validate())
}

func TestQuestionOptions(t *testing.T) {
	assert.Contains(t, fieldErrors(t, Question{Text: "Do you travel often?", Options: []string{"Yes", ""}}.Validate()), "options")
	assert.NoError(t, Question{Text: "Do you travel often?", Options: []string{"Yes", "No"}}.Validate())
}

func TestRemedyAndPersonality(t *testing.T) {
	assert.Contains(t, fieldErrors(t, MissingNumberRemedy{Number: 10, Remedy: "x"}.Validate()), "number")
	assert.NoError(t, MissingNumberRemedy{Number: 4, Remedy: "Wear blue on Saturdays"}.Validate())

	assert.Contains(t, fieldErrors(t, Personality{Number: 0, Name: "Leader"}.Validate()), "number")
	assert.NoError(t, Personality{Number: 22, Name: "Master builder"}.Validate())
}

func TestUserPasswordRequiredOnlyOnCreate(t *testing.T) {
	errs := fieldErrors(t, User{Email: "a@example.com"}.Validate())
	assert.Contains(t, errs, "password")

	assert.NoError(t, User{ID: 4, Email: "a@example.com", Role: "editor"}.Validate())
	assert.Contains(t, fieldErrors(t, User{ID: 4, Email: "a@example.com", Password: "short"}.Validate()), "password")
	assert.Contains(t, fieldErrors(t, User{ID: 4, Email: "nope"}.Validate()), "email")

	assert.NoError(t, User{Email: "a@example.com", Role: "editor"}.ValidateUpdate())
	assert.Contains(t, fieldErrors(t, User{Email: "a@example.com", Password: "short"}.ValidateUpdate()), "password")
}

func TestEntityIDs(t *testing.T) {
	assert.Equal(t, "", Tag{}.EntityID())
	assert.Equal(t, "42", Article{ID: 42}.EntityID())
	assert.Equal(t, "7", Profile{ID: 7}.EntityID())
}

func TestLoginResponseShapes(t *testing.T) {
	assert.Equal(t, "a", LoginResponse{Access: "a", Token: "t"}.BearerToken())
	assert.Equal(t, "t", LoginResponse{Token: "t"}.BearerToken())
	assert.Equal(t, "r", LoginResponse{RefreshToken: "r"}.RefreshValue())
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "a@example.com", User{Email: "a@example.com"}.DisplayName())
	assert.Equal(t, "Ravi Kumar", User{FirstName: "Ravi", LastName: "Kumar"}.DisplayName())
}
