package utils

import (
	"errors"
	"regexp"
	"strings"
)

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9]+`)
	leadingDashes = regexp.MustCompile(`^-+|-+$`)
)

// ValidateSlug checks a caller-provided public page identifier.
func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug cannot be empty")
	}

	if len(slug) > 64 {
		return errors.New("slug must be at most 64 characters")
	}

	if !slugPattern.MatchString(slug) {
		return errors.New("slug may only contain lowercase letters, digits, and dashes")
	}

	return nil
}

// Slugify derives a slug from a page name when none was provided.
func Slugify(name string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = leadingDashes.ReplaceAllString(slug, "")

	if len(slug) > 64 {
		slug = strings.Trim(slug[:64], "-")
	}

	if slug == "" {
		return "", errors.New("cannot derive slug from name")
	}

	return slug, nil
}
