package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}

	return ks
}

func TestTokenizeSimpleCell(t *testing.T) {
	src := "cell main() -> Int\n  return 42\nend\n"
	l := New(src, 1, 1)
	toks, err := l.Tokenize()
	require.Nil(t, err)
	assert.Contains(t, kinds(toks), KindIndent)
	assert.Contains(t, kinds(toks), KindDedent)
	assert.Equal(t, KindEOF, toks[len(toks)-1].Kind)
}

func TestTokenizeIndentDedentBalance(t *testing.T) {
	src := "cell main() -> Int\n  if true\n    return 1\n  return 0\nend\n"
	l := New(src, 1, 1)
	toks, err := l.Tokenize()
	require.Nil(t, err)

	indents, dedents := 0, 0

	for _, k := range kinds(toks) {
		if k == KindIndent {
			indents++
		}

		if k == KindDedent {
			dedents++
		}
	}

	assert.Equal(t, indents, dedents)
}

func TestTokenizeInconsistentIndentTabs(t *testing.T) {
	src := "cell main() -> Int\n\treturn 0\nend\n"
	l := New(src, 1, 1)
	_, err := l.Tokenize()
	require.NotNil(t, err)
	assert.Equal(t, "InconsistentIndent", err.Kind)
}

func TestTokenizeInconsistentIndentWidth(t *testing.T) {
	src := "cell main() -> Int\n  if true\n     return 1\nend\n"
	l := New(src, 1, 1)
	_, err := l.Tokenize()
	require.NotNil(t, err)
	assert.Equal(t, "InconsistentIndent", err.Kind)
}

func TestTokenizeStringLiteral(t *testing.T) {
	l := New(`"hello world"`, 1, 1)
	toks, err := l.Tokenize()
	require.Nil(t, err)
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, KindString, toks[0].Kind)
	assert.Equal(t, "hello world", toks[0].Text)
}

func TestTokenizeStringEscapes(t *testing.T) {
	l := New(`"a\nb\u{1F600}"`, 1, 1)
	toks, err := l.Tokenize()
	require.Nil(t, err)
	assert.Equal(t, "a\nb\U0001F600", toks[0].Text)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	l := New(`"abc`, 1, 1)
	_, err := l.Tokenize()
	require.NotNil(t, err)
	assert.Equal(t, "UnterminatedString", err.Kind)
}

func TestTokenizeStringInterpolation(t *testing.T) {
	l := New(`"x = {x + 1}!"`, 1, 1)
	toks, err := l.Tokenize()
	require.Nil(t, err)

	str := toks[0]
	segs := str.InterpSegments()
	require.NotEmpty(t, segs)
	assert.Equal(t, "x = ", segs[0].Text)

	var exprTexts []string
	for _, s := range segs[1:] {
		if s.Kind == KindIdent || s.Kind == KindInt || s.Kind == KindPunct {
			exprTexts = append(exprTexts, s.Text)
		}
	}
	assert.Contains(t, exprTexts, "x")
	assert.Contains(t, exprTexts, "+")
	assert.Contains(t, exprTexts, "1")
}

func TestTokenizeBytesLiteral(t *testing.T) {
	l := New(`b"deadbeef"`, 1, 1)
	toks, err := l.Tokenize()
	require.Nil(t, err)
	assert.Equal(t, KindBytes, toks[0].Kind)
	assert.Equal(t, "deadbeef", toks[0].Text)
}

func TestTokenizeInvalidBytesLiteralOddLength(t *testing.T) {
	l := New(`b"abc"`, 1, 1)
	_, err := l.Tokenize()
	require.NotNil(t, err)
	assert.Equal(t, "InvalidBytesLiteral", err.Kind)
}

func TestTokenizeHexInt(t *testing.T) {
	l := New("0xFF", 1, 1)
	toks, err := l.Tokenize()
	require.Nil(t, err)
	assert.Equal(t, KindInt, toks[0].Kind)
	assert.EqualValues(t, 255, toks[0].IntValue)
}

func TestTokenizeFloat(t *testing.T) {
	l := New("3.14", 1, 1)
	toks, err := l.Tokenize()
	require.Nil(t, err)
	assert.Equal(t, KindFloat, toks[0].Kind)
	assert.InDelta(t, 3.14, toks[0].FloatValue, 0.0001)
}

func TestTokenizeKeywordVsIdent(t *testing.T) {
	l := New("let x = 1\nlet y = 2\n", 1, 1)
	toks, err := l.Tokenize()
	require.Nil(t, err)
	assert.Equal(t, KindKeyword, toks[0].Kind)
	assert.Equal(t, KindIdent, toks[1].Kind)
}

func TestTokenizeComment(t *testing.T) {
	l := New("let x = 1 # a comment\n", 1, 1)
	toks, err := l.Tokenize()
	require.Nil(t, err)

	for _, tok := range toks {
		assert.NotContains(t, tok.Text, "comment")
	}
}

func TestTokenizeTwoCharPunct(t *testing.T) {
	l := New("a == b", 1, 1)
	toks, err := l.Tokenize()
	require.Nil(t, err)
	assert.Equal(t, "==", toks[1].Text)
}

func TestTokenizeSpanTracksOriginalLine(t *testing.T) {
	l := New("cell main() -> Int\n  return 1\nend\n", 5, 1)
	toks, err := l.Tokenize()
	require.Nil(t, err)
	assert.Equal(t, 5, toks[0].Span.Line)
}
