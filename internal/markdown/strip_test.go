package markdown

import (
	"strings"
	"testing"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "plain single line",
			input: "Nothing to strip here",
			want:  "Nothing to strip here",
		},
		{
			name:  "blockquote removed and newlines collapsed",
			input: "Hello\n> quoted\nWorld",
			want:  "Hello  World",
		},
		{
			name:  "fenced code block removed",
			input: "Before\n```go\nfmt.Println(\"secret\")\n```\nAfter",
			want:  "Before  After",
		},
		{
			name:  "two fenced blocks are matched non-greedily",
			input: "a ```x``` b ```y``` c",
			want:  "a  b  c",
		},
		{
			name:  "header lines removed",
			input: "# Title\nbody text\n### Sub heading\nmore",
			want:  "body text  more",
		},
		{
			name:  "indented header and blockquote",
			input: "  ## indented\nkept\n\t> indented quote",
			want:  "kept",
		},
		{
			name:  "CRLF line endings",
			input: "one\r\ntwo\r\nthree",
			want:  "one two three",
		},
		{
			name:  "hash inside a line is not a header",
			input: "issue #12 is related",
			want:  "issue #12 is related",
		},
		{
			name:  "quote marker mid-line is kept",
			input: "a > b",
			want:  "a > b",
		},
		{
			name:  "inline markdown is left alone",
			input: "use `go test` and **bold** [link](http://x)",
			want:  "use `go test` and **bold** [link](http://x)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Strip(tt.input)
			if got != tt.want {
				t.Errorf("Strip(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStrip_RemovesCodeBlockContent(t *testing.T) {
	inputs := []string{
		"```\nSECRET_CONTENT\n```",
		"text ```SECRET_CONTENT``` text",
		"x\n```bash\nline1\nSECRET_CONTENT\nline3\n```\ny\n```\nother\n```",
	}

	for _, input := range inputs {
		got := Strip(input)
		if strings.Contains(got, "SECRET_CONTENT") {
			t.Errorf("Strip(%q) = %q, still contains code block content", input, got)
		}
	}
}

func TestStrip_OnlyHeadersAndQuotesYieldsEmpty(t *testing.T) {
	inputs := []string{
		"# one",
		"# one\n## two\n### three",
		"> quote\n> more quote",
		"# header\n> quote\r\n#### deep",
		"  # padded\n\t> tabbed",
	}

	for _, input := range inputs {
		if got := Strip(input); got != "" {
			t.Errorf("Strip(%q) = %q, want empty string", input, got)
		}
	}
}

func TestStrip_NoLineBreaksInOutput(t *testing.T) {
	inputs := []string{
		"a\nb\nc",
		"a\r\nb\rc",
		"\n\n\n",
		"para one\n\npara two\n```\ncode\n```\n",
		"trailing\r",
	}

	for _, input := range inputs {
		got := Strip(input)
		if strings.ContainsAny(got, "\r\n") {
			t.Errorf("Strip(%q) = %q, contains a line break", input, got)
		}
	}
}

func TestStrip_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello\n> quoted\nWorld",
		"# Title\nbody\n```\ncode\n```\nend",
		"plain text",
		"one\r\ntwo",
	}

	for _, input := range inputs {
		once := Strip(input)
		twice := Strip(once)
		if once != twice {
			t.Errorf("Strip not idempotent for %q: once=%q twice=%q", input, once, twice)
		}
	}
}
