package ident

import "strings"

// operatorWords replaces operator and punctuation characters.
var operatorWords = map[rune]string{
	'+':  "_plus_",
	'-':  "_minus_",
	'*':  "_mul_",
	'/':  "_div_",
	'^':  "_pow_",
	'%':  "_mod_",
	'=':  "_eq_",
	'<':  "_lt_",
	'>':  "_gt_",
	'\'': "_up_",
	',':  "_down_",
	';':  "_mix_",
	'@':  "_at_",
	'~':  "_tilde_",
	'!':  "_bond_",
	'&':  "_and_",
	'?':  "_q_",
	'(':  "_lpar_",
	')':  "_rpar_",
	'[':  "_lbr_",
	']':  "_rbr_",
	'{':  "_lcb_",
	'}':  "_rcb_",
}

// separators become a single underscore.
var separators = map[rune]bool{
	' ':  true,
	'\t': true,
	'\n': true,
	'.':  true,
	':':  true,
	'|':  true,
}

// reserved names would shadow the module alias or a target keyword.
var reserved = map[string]bool{
	"m": true, "and": true, "as": true, "assert": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true, "elif": true,
	"else": true, "except": true, "finally": true, "for": true, "from": true,
	"global": true, "if": true, "import": true, "in": true, "is": true,
	"lambda": true, "nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true, "with": true,
	"yield": true, "None": true, "True": true, "False": true,
}

func isAlnum(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Sanitize converts name into a valid identifier. Applying it to its own
// output returns the same string.
func Sanitize(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case isAlnum(r):
			sb.WriteRune(r)
		case separators[r]:
			sb.WriteByte('_')
		default:
			if word, ok := operatorWords[r]; ok {
				sb.WriteString(word)
			}
		}
	}

	out := collapseUnderscores(sb.String())
	out = strings.TrimRight(out, "_")
	if out == "" {
		return "_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	if reserved[out] {
		out += "_"
	}
	return out
}

func collapseUnderscores(s string) string {
	if !strings.Contains(s, "__") {
		return s
	}
	var sb strings.Builder
	prev := false
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
