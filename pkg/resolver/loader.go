package resolver

import (
	"fmt"
	"os"
	"strings"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lexer"
	"github.com/lumen-lang/lumen/pkg/parser"
	"github.com/lumen-lang/lumen/pkg/source"
)

// hasKnownExtension reports whether path already ends in one of
// importExtensions (in which case the search order is skipped).
func hasKnownExtension(path string) bool {
	for _, ext := range importExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}

// FileLoader implements Loader by reading modules off disk, trying
// importExtensions in order when path carries none of its own (§4.3's
// import resolver).
type FileLoader struct{}

func (FileLoader) Load(path string) (*ast.Program, string, []string, error) {
	candidates := []string{path}
	if !hasKnownExtension(path) {
		candidates = nil
		for _, ext := range importExtensions {
			candidates = append(candidates, path+ext)
		}
	}

	var tried []string

	for _, candidate := range candidates {
		tried = append(tried, candidate)

		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}

		var extracted *source.ExtractedSource
		if strings.HasSuffix(candidate, ".md") {
			extracted = source.ExtractBlocks(data)
		} else {
			extracted = source.ExtractRaw(data)
		}

		toks, lexErr := lexer.New(extracted.Code, 1, 1).Tokenize()
		if lexErr != nil {
			return &ast.Program{}, candidate, tried, nil
		}

		// A dependency module's own lex/parse errors are reported when it
		// is itself compiled as an entry file; here we only need its
		// exported symbol table, so a partial AST is used as-is.
		prog, _ := parser.Parse(toks)

		return prog, candidate, tried, nil
	}

	return nil, "", tried, fmt.Errorf("module %q not found", path)
}
