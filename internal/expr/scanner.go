package expr

import "strings"

// TokenKind classifies a scanned token.
type TokenKind int

const (
	// Other is any run of operators, punctuation or whitespace.
	Other TokenKind = iota
	Ident
	Number
)

// Token is one lexical unit of an expression.
type Token struct {
	Kind TokenKind
	Text string
}

type scanState int

const (
	stateDefault scanState = iota
	stateIdent
	stateNumber
)

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Scan splits s into tokens. Concatenating the token texts yields s.
func Scan(s string) []Token {
	var tokens []Token
	var cur strings.Builder
	state := stateDefault

	flush := func(kind TokenKind) {
		if cur.Len() > 0 {
			tokens = append(tokens, Token{Kind: kind, Text: cur.String()})
			cur.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateIdent:
			if isIdentStart(c) || isDigit(c) {
				cur.WriteByte(c)
				continue
			}
			flush(Ident)
			state = stateDefault
		case stateNumber:
			if isDigit(c) || c == '.' || c == 'e' || c == 'E' {
				cur.WriteByte(c)
				continue
			}
			// A sign continues the number only as an exponent sign.
			if (c == '+' || c == '-') && cur.Len() > 0 {
				last := cur.String()[cur.Len()-1]
				if last == 'e' || last == 'E' {
					cur.WriteByte(c)
					continue
				}
			}
			flush(Number)
			state = stateDefault
		}

		// stateDefault
		switch {
		case isIdentStart(c):
			flush(Other)
			state = stateIdent
		case isDigit(c) || (c == '.' && i+1 < len(s) && isDigit(s[i+1])):
			flush(Other)
			state = stateNumber
		}
		cur.WriteByte(c)
	}

	switch state {
	case stateIdent:
		flush(Ident)
	case stateNumber:
		flush(Number)
	default:
		flush(Other)
	}
	return tokens
}
