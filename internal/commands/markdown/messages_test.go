package markdowncmd

import "testing"

func TestRenderArticleCommandValidateRequiresPath(t *testing.T) {
	cmd := RenderArticleCommand{}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when path missing")
	}

	cmd.Path = "   "
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when path is blank")
	}

	cmd.Path = "posts/hello.md"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error when path provided: %v", err)
	}
}

func TestSyncCatalogCommandValidateRequiresDirectory(t *testing.T) {
	cmd := SyncCatalogCommand{}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when directory missing")
	}

	cmd.Directory = "content"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error when directory provided: %v", err)
	}
}

func TestCommandMessageTypes(t *testing.T) {
	if got := (RenderArticleCommand{}).Type(); got != "blog.markdown.render_article" {
		t.Fatalf("unexpected render message type %q", got)
	}
	if got := (SyncCatalogCommand{}).Type(); got != "blog.markdown.sync_catalog" {
		t.Fatalf("unexpected sync message type %q", got)
	}
}
