package textproc

import (
	"strings"
	"testing"
)

type staticReplacer map[string]string

func (r staticReplacer) Apply(text string) string {
	for match, replace := range r {
		text = strings.ReplaceAll(text, match, replace)
	}
	return text
}

func TestNormalizeStripsArtifacts(t *testing.T) {
	p := NewPipeline(Options{}, nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"non-speech marker", "[BLANK_AUDIO] hello", "hello"},
		{"marker with spaces", "well [LAUGHS LOUDLY] said", "well  said"},
		{"control token", "<|endoftext|> done", "done"},
		{"empty control token", "<||> done", "done"},
		{"mixed", "  [MUSIC]<|nospeech|> quiet  ", "quiet"},
		{"lowercase brackets survive", "use [brackets] carefully", "use [brackets] carefully"},
		{"plain text untouched", "nothing to strip", "nothing to strip"},
		{"whitespace only", "   \n\t ", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeParagraphFormatting(t *testing.T) {
	p := NewPipeline(Options{FormatParagraphs: true}, nil)

	in := "first  line \r\nsecond\tline\n\n\n\nnew paragraph"
	want := "first line\nsecond line\n\nnew paragraph"
	if got := p.Normalize(in); got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalizeReplacementsRunLast(t *testing.T) {
	// A rule matching text that only exists after artifact stripping and
	// trimming proves the replacement step runs at the end.
	p := NewPipeline(Options{}, staticReplacer{"hello": "hi"})

	if got := p.Normalize("[BLANK_AUDIO] hello"); got != "hi" {
		t.Errorf("Normalize = %q, want %q", got, "hi")
	}
}

func TestNormalizeNilReplacer(t *testing.T) {
	p := NewPipeline(Options{}, nil)
	if got := p.Normalize("unchanged"); got != "unchanged" {
		t.Errorf("Normalize = %q, want %q", got, "unchanged")
	}
}
