package services

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
)

const slugMaxLen = 80

// slugify lowercases the title and collapses every non-alphanumeric run
// into a single hyphen.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > slugMaxLen {
		slug = strings.Trim(slug[:slugMaxLen], "-")
	}
	if slug == "" {
		slug = "idea"
	}
	return slug
}

// uniqueSlug probes a handful of readable candidates before falling back
// to a random suffix, which the unique index still backstops.
func uniqueSlug(ctx context.Context, ideas idea.Repository, title string) (string, error) {
	base := slugify(title)
	candidate := base
	for i := 2; i <= 5; i++ {
		taken, err := ideas.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return base + "-" + uuid.NewString()[:8], nil
}
