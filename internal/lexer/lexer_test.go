package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vertexlang/vertex/internal/lexer"
)

func allTokens(t *testing.T, source string) []lexer.Token {
	t.Helper()
	l := lexer.New(source)
	var toks []lexer.Token
	for {
		tok, err := l.NextToken()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == lexer.EOF {
			return toks
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := allTokens(t, "mod export serial function struct extern params return Foo")
	kinds := make([]lexer.Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []lexer.Kind{
		lexer.Mod, lexer.Export, lexer.Serial, lexer.Function, lexer.Struct,
		lexer.Extern, lexer.Params, lexer.Return, lexer.Ident, lexer.EOF,
	}, kinds)
}

func TestNumberLiterals(t *testing.T) {
	toks := allTokens(t, "42 3.14 1e10 1.5e-3")
	require.Equal(t, lexer.Int, toks[0].Kind)
	require.Equal(t, "42", toks[0].Literal)
	require.Equal(t, lexer.Float, toks[1].Kind)
	require.Equal(t, lexer.Float, toks[2].Kind)
	require.Equal(t, "1e10", toks[2].Literal)
	require.Equal(t, lexer.Float, toks[3].Kind)
}

func TestStringAndCharLiterals(t *testing.T) {
	toks := allTokens(t, `"hello" 'a'`)
	require.Equal(t, lexer.String, toks[0].Kind)
	require.Equal(t, "hello", toks[0].Literal)
	require.Equal(t, lexer.Char, toks[1].Kind)
	require.Equal(t, "a", toks[1].Literal)
}

func TestUnterminatedStringIsError(t *testing.T) {
	l := lexer.New(`"oops`)
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := allTokens(t, "Foo # a comment\nBar")
	require.Equal(t, lexer.Ident, toks[0].Kind)
	require.Equal(t, "Foo", toks[0].Literal)
	require.Equal(t, lexer.Ident, toks[1].Kind)
	require.Equal(t, "Bar", toks[1].Literal)
	require.Equal(t, 2, toks[1].Line)
}

func TestSymbols(t *testing.T) {
	toks := allTokens(t, "(){}[]=,:.?!")
	kinds := make([]lexer.Kind, 0, len(toks)-1)
	for _, tok := range toks[:len(toks)-1] {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []lexer.Kind{
		lexer.LParen, lexer.RParen, lexer.LBrace, lexer.RBrace,
		lexer.LBracket, lexer.RBracket, lexer.Assign, lexer.Comma,
		lexer.Colon, lexer.Dot, lexer.Question, lexer.Bang,
	}, kinds)
}
