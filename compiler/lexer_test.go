package compiler

import "testing"

func lexAll(t *testing.T, input string) []Token {
	t.Helper()
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return tokens
		}
	}
}

func TestLexerPunctuationAndOperators(t *testing.T) {
	input := `( ) { } [ ] , ; : = == != < <= > >= + - * / % ! && ||`
	want := []TokenType{
		TokenLParen, TokenRParen, TokenLBrace, TokenRBrace, TokenLBracket, TokenRBracket,
		TokenComma, TokenSemi, TokenColon,
		TokenAssign, TokenEq, TokenNe, TokenLt, TokenLe, TokenGt, TokenGe,
		TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent,
		TokenBang, TokenAndAnd, TokenOrOr,
		TokenEOF,
	}

	tokens := lexAll(t, input)
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		if tokens[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, tokens[i].Type, w)
		}
	}
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	tokens := lexAll(t, "class static if else while return true false null Main foo_bar")
	want := []TokenType{
		TokenClass, TokenStatic, TokenIf, TokenElse, TokenWhile, TokenReturn,
		TokenTrue, TokenFalse, TokenNull,
		TokenIdentifier, TokenIdentifier, TokenEOF,
	}
	for i, w := range want {
		if tokens[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, tokens[i].Type, w)
		}
	}
	if tokens[9].Literal != "Main" || tokens[10].Literal != "foo_bar" {
		t.Errorf("identifier literals wrong: %q, %q", tokens[9].Literal, tokens[10].Literal)
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"42", TokenInt},
		{"0", TokenInt},
		{"3.14", TokenFloat},
		{"1.5e10", TokenFloat},
		{"2e3", TokenFloat},
		{"1E-2", TokenFloat},
	}
	for _, tt := range tests {
		tokens := lexAll(t, tt.input)
		if tokens[0].Type != tt.typ {
			t.Errorf("%q: got %s, want %s", tt.input, tokens[0].Type, tt.typ)
		}
		if tokens[0].Literal != tt.input {
			t.Errorf("%q: literal %q", tt.input, tokens[0].Literal)
		}
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"quote \" inside"`, `quote " inside`},
		{`"back\\slash"`, `back\slash`},
	}
	for _, tt := range tests {
		tokens := lexAll(t, tt.input)
		if tokens[0].Type != TokenString {
			t.Fatalf("%q: got %s, want STRING", tt.input, tokens[0].Type)
		}
		if tokens[0].Literal != tt.want {
			t.Errorf("%q: got %q, want %q", tt.input, tokens[0].Literal, tt.want)
		}
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	tokens := lexAll(t, `"no closing quote`)
	if tokens[0].Type != TokenError {
		t.Fatalf("got %s, want ERROR", tokens[0].Type)
	}
}

func TestLexerLineComments(t *testing.T) {
	tokens := lexAll(t, "a // everything here is skipped\nb")
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(tokens))
	}
	if tokens[0].Literal != "a" || tokens[1].Literal != "b" {
		t.Errorf("got %q, %q", tokens[0].Literal, tokens[1].Literal)
	}
}

func TestLexerPositions(t *testing.T) {
	tokens := lexAll(t, "a\n  b")
	if tokens[0].Pos.Line != 1 || tokens[0].Pos.Column != 1 {
		t.Errorf("a at %s, want 1:1", tokens[0].Pos)
	}
	if tokens[1].Pos.Line != 2 || tokens[1].Pos.Column != 3 {
		t.Errorf("b at %s, want 2:3", tokens[1].Pos)
	}
}

func TestLexerInvalidCharacter(t *testing.T) {
	tokens := lexAll(t, "a @ b")
	if tokens[1].Type != TokenError {
		t.Fatalf("got %s, want ERROR", tokens[1].Type)
	}
}
