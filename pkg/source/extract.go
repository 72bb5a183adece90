// Package source implements §4's Markdown-extraction stage: slicing fenced
// `lumen`/`lm` code blocks and preamble `@directive` lines out of a `.lm.md`
// document, ahead of lexing.
package source

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/lumen-lang/lumen/pkg/span"
)

// Directive is a preamble line of the form "@name value" appearing before
// the first fenced code block.
type Directive struct {
	Name  string
	Value string
	Span  span.Span
}

// LineMap translates a 1-based line number in the concatenated CodeUnit back
// to the corresponding 1-based line number in the original Markdown file.
type LineMap struct {
	origin []int
}

// Translate returns the original Markdown line number for a concatenated
// code-unit line number.
func (m LineMap) Translate(codeLine int) int {
	if codeLine < 1 || codeLine > len(m.origin) {
		return codeLine
	}

	return m.origin[codeLine-1]
}

// ExtractedSource is the output of the Markdown-extraction stage: the
// concatenated `lumen`/`lm` code, its line map, and any preamble directives.
type ExtractedSource struct {
	Code       string
	Lines      LineMap
	Directives []Directive
	Diagnostic []Diagnostic
}

// Diagnostic is a warning or error raised during extraction. Unlike the
// compiler's CompileError taxonomy, extraction diagnostics are always
// warnings except for an unterminated fence (E0007).
type Diagnostic struct {
	Code    string
	Message string
	Span    span.Span
	IsError bool
}

var directiveRe = regexp.MustCompile(`^@([\w][\w.-]*)\s+(.*)$`)

var knownDirectives = map[string]bool{
	"feature":   true,
	"sandbox":   true,
	"max_stack": true,
	"edition":   true,
}

// ExtractBlocks scans a Markdown document for fenced code blocks whose info
// string is "lumen" or "lm", concatenating their bodies (separated by a
// synthetic blank line) into one CodeUnit, plus any preamble directives
// declared above the first such block.
func ExtractBlocks(data []byte) *ExtractedSource {
	result := &ExtractedSource{}

	var (
		code         strings.Builder
		codeLine     = 0
		origin       []int
		inFence      = false
		fenceLang    = ""
		fenceOpenAt  span.Span
		sawFirstCode = false
		lineNo       = 0
	)

	scanner := bufio.NewScanner(data2Reader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if inFence {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				inFence = false

				continue
			}

			code.WriteString(line)
			code.WriteByte('\n')
			codeLine++
			origin = append(origin, lineNo)

			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			if lang == "lumen" || lang == "lm" {
				inFence = true
				fenceLang = lang
				fenceOpenAt = span.New(0, 0, lineNo, 1)
				sawFirstCode = true

				// Separate concatenated blocks with a blank line so
				// downstream line numbers stay distinguishable.
				if codeLine > 0 {
					code.WriteByte('\n')
					codeLine++
					origin = append(origin, lineNo)
				}
			} else {
				inFence = true
				fenceLang = lang
				fenceOpenAt = span.New(0, 0, lineNo, 1)
			}

			continue
		}

		if !sawFirstCode {
			if m := directiveRe.FindStringSubmatch(line); m != nil {
				d := Directive{
					Name:  m[1],
					Value: strings.TrimSpace(m[2]),
					Span:  span.New(0, 0, lineNo, 1),
				}
				if !knownDirectives[d.Name] {
					result.Diagnostic = append(result.Diagnostic, Diagnostic{
						Code:    "E0008",
						Message: "unknown preamble directive \"@" + d.Name + "\"",
						Span:    d.Span,
						IsError: false,
					})
				}

				result.Directives = append(result.Directives, d)
			}
		}
	}

	if inFence && (fenceLang == "lumen" || fenceLang == "lm") {
		result.Diagnostic = append(result.Diagnostic, Diagnostic{
			Code:    "E0007",
			Message: "unterminated markdown code fence",
			Span:    fenceOpenAt,
			IsError: true,
		})
	}

	result.Code = code.String()
	result.Lines = LineMap{origin: origin}

	return result
}

// ExtractRaw treats the whole file as one code unit with an identity line
// map, for .lm/.lumen files that carry no Markdown wrapper.
func ExtractRaw(data []byte) *ExtractedSource {
	text := string(data)
	lines := strings.Count(text, "\n") + 1
	origin := make([]int, lines)

	for i := range origin {
		origin[i] = i + 1
	}

	return &ExtractedSource{
		Code:  text,
		Lines: LineMap{origin: origin},
	}
}

func data2Reader(data []byte) *strings.Reader {
	return strings.NewReader(string(data))
}
