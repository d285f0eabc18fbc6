package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"astro-admin-go/internal/models"

	"github.com/google/uuid"
)

const maxArticleTags = 12

var whitespace = regexp.MustCompile(`\s+`)

// Slugify lowercases value and joins its letter and digit runs with dashes.
// Non-ASCII letters are dropped so slugs stay URL-safe.
func Slugify(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	var b strings.Builder
	lastDash := false
	for _, r := range lower {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "article-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	}
	return slug
}

// UniqueSlug derives a slug from title that no other loaded article uses,
// appending -2, -3, ... on collision. selfID is ignored so an edit keeps
// its own slug.
func UniqueSlug(title string, existing []models.Article, selfID int64) string {
	taken := make(map[string]bool, len(existing))
	for _, article := range existing {
		if article.ID != selfID {
			taken[article.Slug] = true
		}
	}
	base := Slugify(title)
	candidate := base
	for counter := 2; taken[candidate]; counter++ {
		candidate = base + "-" + strconv.Itoa(counter)
	}
	return candidate
}

// CleanTags trims, drops blanks and duplicates, and keeps at most 12.
func CleanTags(tags []string) []string {
	seen := make(map[string]bool)
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		value := strings.TrimSpace(tag)
		key := strings.ToLower(value)
		if value == "" || seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, value)
		if len(cleaned) >= maxArticleTags {
			break
		}
	}
	return cleaned
}

// ResolveTagIDs maps tag names to ids of known tags, case-insensitively.
// Names without a match are returned in unknown.
func ResolveTagIDs(names []string, known []models.Tag) (ids []int64, unknown []string) {
	byName := make(map[string]int64, len(known))
	for _, tag := range known {
		byName[strings.ToLower(tag.Name)] = tag.ID
	}
	for _, name := range CleanTags(names) {
		if id, ok := byName[strings.ToLower(name)]; ok {
			ids = append(ids, id)
			continue
		}
		unknown = append(unknown, name)
	}
	return ids, unknown
}

func CleanSearchTerm(term string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(term), " ")
}

// PrepareArticle normalizes an article before create or update: trimmed
// text, a unique slug when none is given and draft status by default.
func PrepareArticle(article models.Article, existing []models.Article) models.Article {
	article.Title = strings.TrimSpace(article.Title)
	article.Excerpt = strings.TrimSpace(article.Excerpt)
	article.Slug = strings.TrimSpace(article.Slug)
	if article.Slug == "" && article.Title != "" {
		article.Slug = UniqueSlug(article.Title, existing, article.ID)
	}
	if article.Status == "" {
		article.Status = models.StatusDraft
	}
	return article
}
