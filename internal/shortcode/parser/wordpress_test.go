package parser

import (
	"testing"
)

func TestWordPressPreprocessor_Process(t *testing.T) {
	pre := NewWordPressPreprocessor()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "standalone",
			input: `[youtube id="dQw4w9WgXcQ"]`,
			want:  `{{< youtube id="dQw4w9WgXcQ" >}}`,
		},
		{
			name:  "block",
			input: `[alert type="info"]Stay safe![/alert]`,
			want:  `{{< alert type="info" >}}Stay safe!{{< /alert >}}`,
		},
		{
			name:  "self closing",
			input: `[gallery images="a.jpg,b.jpg" /]`,
			want:  `{{< gallery images="a.jpg,b.jpg" >}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pre.Process(tc.input); got != tc.want {
				t.Fatalf("Process() mismatch\n got: %q\nwant: %q", got, tc.want)
			}
		})
	}
}

func TestWordPressPreprocessor_Idempotent(t *testing.T) {
	pre := NewWordPressPreprocessor()
	input := "Just text without shortcodes"
	if out := pre.Process(input); out != input {
		t.Fatalf("expected output to equal input when no shortcodes present")
	}
}
