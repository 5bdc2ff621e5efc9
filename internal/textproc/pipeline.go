package textproc

import (
	"regexp"
	"strings"
)

// Engine decoders leak control tokens and non-speech markers into the
// transcript; both forms are stripped before any other processing.
var (
	markerRe  = regexp.MustCompile(`\[[A-Z_][A-Z_ ]*\]`)
	controlRe = regexp.MustCompile(`<\|[^|]*\|>`)

	blankRunsRe = regexp.MustCompile(`\n{3,}`)
	spaceRunsRe = regexp.MustCompile(`[ \t]{2,}`)
)

// Replacer applies user-defined word substitutions. Must be pure and
// total.
type Replacer interface {
	Apply(text string) string
}

// Options controls the optional pipeline steps.
type Options struct {
	FormatParagraphs bool
}

// Pipeline is the fixed, ordered sequence of transformations applied to
// a raw transcript: artifact filtering, trimming, optional paragraph
// formatting, then user replacements. The order is part of the
// contract; replacements run last so rules see the final structure.
type Pipeline struct {
	opts     Options
	replacer Replacer
}

// NewPipeline creates a pipeline. A nil replacer disables the
// replacement step.
func NewPipeline(opts Options, replacer Replacer) *Pipeline {
	return &Pipeline{opts: opts, replacer: replacer}
}

// Normalize runs the full pipeline over raw engine output. Every step
// is total: Normalize never fails.
func (p *Pipeline) Normalize(raw string) string {
	text := stripArtifacts(raw)
	text = strings.TrimSpace(text)
	if p.opts.FormatParagraphs {
		text = formatParagraphs(text)
	}
	if p.replacer != nil {
		text = p.replacer.Apply(text)
	}
	return text
}

func stripArtifacts(text string) string {
	text = markerRe.ReplaceAllString(text, "")
	return controlRe.ReplaceAllString(text, "")
}

func formatParagraphs(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = blankRunsRe.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = spaceRunsRe.ReplaceAllString(strings.TrimRight(line, " \t"), " ")
	}
	return strings.Join(lines, "\n")
}
