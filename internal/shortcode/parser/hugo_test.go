package parser

import (
	"strings"
	"testing"
)

func TestHugoParser_Extract(t *testing.T) {
	parser := NewHugoParser()

	input := `Intro text.

{{< youtube id="dQw4w9WgXcQ" >}}

{{< alert type="info" >}}Stay safe!{{< /alert >}}

Outro text.`

	gotContent, shortcodes, err := parser.Extract(input)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	want := `Intro text.

<!-- shortcode:0 -->

<!-- shortcode:1 -->

Outro text.`
	if gotContent != want {
		t.Fatalf("Extract() output mismatch\n got: %q\nwant: %q", gotContent, want)
	}

	if len(shortcodes) != 2 {
		t.Fatalf("expected 2 shortcodes, got %d", len(shortcodes))
	}
	if shortcodes[0].Name != "youtube" {
		t.Fatalf("expected first shortcode youtube, got %s", shortcodes[0].Name)
	}
	if shortcodes[0].Params["id"] != "dQw4w9WgXcQ" {
		t.Fatalf("expected id param, got %v", shortcodes[0].Params)
	}
	if shortcodes[1].Inner != "Stay safe!" {
		t.Fatalf("expected inner content 'Stay safe!', got %q", shortcodes[1].Inner)
	}
}

func TestHugoParser_NestedBlocks(t *testing.T) {
	parser := NewHugoParser()

	input := `{{< alert type="info" >}}Watch {{< figure src="image.jpg" >}} now{{< /alert >}}`
	gotContent, shortcodes, err := parser.Extract(input)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if gotContent != "<!-- shortcode:1 -->" {
		t.Fatalf("expected parent placeholder, got %q", gotContent)
	}
	if len(shortcodes) != 2 {
		t.Fatalf("expected 2 shortcodes, got %d", len(shortcodes))
	}
	if shortcodes[0].Name != "figure" {
		t.Fatalf("expected child listed first, got %s", shortcodes[0].Name)
	}
	if shortcodes[1].Inner != "Watch <!-- shortcode:0 --> now" {
		t.Fatalf("expected child placeholder inside parent inner, got %q", shortcodes[1].Inner)
	}
}

func TestHugoParser_QuotedParams(t *testing.T) {
	parser := NewHugoParser()

	_, shortcodes, err := parser.Extract(`{{< figure src="pic.jpg" caption="A nice walk in the park" >}}`)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if len(shortcodes) != 1 {
		t.Fatalf("expected 1 shortcode, got %d", len(shortcodes))
	}
	if got := shortcodes[0].Params["caption"]; got != "A nice walk in the park" {
		t.Fatalf("quoted value with spaces mangled: %v", got)
	}
}

func TestHugoParser_PositionalParams(t *testing.T) {
	parser := NewHugoParser()

	_, shortcodes, err := parser.Extract(`{{< gist goliatone 9b1a70e2 >}}`)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	params := shortcodes[0].Params
	if params["param1"] != "goliatone" || params["param2"] != "9b1a70e2" {
		t.Fatalf("positional params mismatch: %v", params)
	}
}

func TestHugoParser_SelfClosingSlash(t *testing.T) {
	parser := NewHugoParser()

	// the explicit slash keeps a standalone tag from binding to a later
	// close tag of the same name
	input := `{{< youtube id="abc" />}}{{< youtube >}}inner{{< /youtube >}}`
	_, shortcodes, err := parser.Extract(input)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if len(shortcodes) != 2 {
		t.Fatalf("expected 2 shortcodes, got %d", len(shortcodes))
	}
	if shortcodes[0].Params["id"] != "abc" {
		t.Fatalf("self-closing params mismatch: %v", shortcodes[0].Params)
	}
	if shortcodes[1].Inner != "inner" {
		t.Fatalf("block inner mismatch: %q", shortcodes[1].Inner)
	}
}

func TestHugoParser_EscapedShortcode(t *testing.T) {
	parser := NewHugoParser()

	got, shortcodes, err := parser.Extract(`Write {{</* youtube id="abc" */>}} to embed a video.`)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if len(shortcodes) != 0 {
		t.Fatalf("escaped tag must not parse, got %d shortcodes", len(shortcodes))
	}
	if !strings.Contains(got, `{{< youtube id="abc" >}}`) {
		t.Fatalf("expected literal tag in output, got %q", got)
	}
}

func TestHugoParser_EscapedWithoutSpaces(t *testing.T) {
	parser := NewHugoParser()

	got, shortcodes, err := parser.Extract(`{{</*gist*/>}}`)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if len(shortcodes) != 0 {
		t.Fatalf("escaped tag must not parse, got %d shortcodes", len(shortcodes))
	}
	if got != "{{<gist>}}" {
		t.Fatalf("expected literal tag, got %q", got)
	}
}

func TestHugoParser_Mismatched(t *testing.T) {
	parser := NewHugoParser()
	input := "{{< alert type=\"warning\" >}}Oops{{< /youtube >}}"

	if _, _, err := parser.Extract(input); err == nil {
		t.Fatal("expected error for mismatched shortcode closure")
	}
}

func TestHugoParser_UnexpectedClose(t *testing.T) {
	parser := NewHugoParser()

	if _, _, err := parser.Extract("text {{< /alert >}}"); err == nil {
		t.Fatal("expected error for stray close tag")
	}
}
