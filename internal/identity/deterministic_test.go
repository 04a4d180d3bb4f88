package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := UUID("go-blog:article:en:hello-world")
	second := UUID("go-blog:article:en:hello-world")
	if first != second {
		t.Fatalf("expected stable UUID, got %s and %s", first, second)
	}
	if first == uuid.Nil {
		t.Fatal("expected non-nil UUID")
	}
}

func TestUUIDEmptyKeyReturnsNil(t *testing.T) {
	if got := UUID("  "); got != uuid.Nil {
		t.Fatalf("expected uuid.Nil for blank key, got %s", got)
	}
}

func TestArticleUUIDNormalizesCaseAndSpace(t *testing.T) {
	a := ArticleUUID("EN", " Hello-World ")
	b := ArticleUUID("en", "hello-world")
	if a != b {
		t.Fatalf("expected normalized keys to agree, got %s and %s", a, b)
	}
}

func TestEntityKeysDoNotCollide(t *testing.T) {
	article := ArticleUUID("en", "go")
	tag := TagUUID("go")
	if article == tag {
		t.Fatalf("expected distinct namespaces, both resolved to %s", article)
	}
}
