package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ArticleUUID keys articles by locale and slug so rebuilds and catalog syncs
// agree on identity without coordination.
func ArticleUUID(locale, slug string) uuid.UUID {
	locale = strings.ToLower(strings.TrimSpace(locale))
	slug = strings.ToLower(strings.TrimSpace(slug))
	return UUID("go-blog:article:" + locale + ":" + slug)
}

func TagUUID(slug string) uuid.UUID {
	return UUID("go-blog:tag:" + strings.ToLower(strings.TrimSpace(slug)))
}

func ThemeUUID(name string) uuid.UUID {
	return UUID("go-blog:theme:" + strings.ToLower(strings.TrimSpace(name)))
}

func TemplateUUID(themeID uuid.UUID, slug string) uuid.UUID {
	return UUID("go-blog:template:" + themeID.String() + ":" + strings.ToLower(strings.TrimSpace(slug)))
}

func ShortcodeUUID(name string) uuid.UUID {
	return UUID("go-blog:shortcode:" + strings.ToLower(strings.TrimSpace(name)))
}
