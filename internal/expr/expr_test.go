package expr

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/dm2mcell/internal/notation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "exponent keeps sign",
			input: "1.5e-6*kf",
			expected: []Token{
				{Number, "1.5e-6"}, {Other, "*"}, {Ident, "kf"},
			},
		},
		{
			name:  "subtraction after number",
			input: "2-a",
			expected: []Token{
				{Number, "2"}, {Other, "-"}, {Ident, "a"},
			},
		},
		{
			name:  "function call",
			input: "sqrt(d_1) ",
			expected: []Token{
				{Ident, "sqrt"}, {Other, "("}, {Ident, "d_1"}, {Other, ") "},
			},
		},
		{
			name:     "trailing identifier flushed",
			input:    "x",
			expected: []Token{{Ident, "x"}},
		},
		{
			name:  "leading decimal point",
			input: ".5+b2",
			expected: []Token{
				{Number, ".5"}, {Other, "+"}, {Ident, "b2"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Scan(tc.input)
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("Scan(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestScan_Lossless(t *testing.T) {
	for _, in := range []string{"a*2", " exp( -E/(R*T) )", "1e+3 ^ 2", "", "((("} {
		var sb strings.Builder
		for _, tok := range Scan(in) {
			sb.WriteString(tok.Text)
		}
		assert.Equal(t, in, sb.String())
	}
}

func TestTranslate(t *testing.T) {
	testCases := []struct {
		input       string
		procedural  string
		declarative string
	}{
		{"a*2", "a*2", "a*2"},
		{"exp(-Ea/kT)", "math.exp(-Ea/kT)", "exp(-Ea/kT)"},
		{"log(x) + LOG10(y)", "math.log(x) + math.log10(y)", "ln(x) + log10(y)"},
		{"2^n", "2**n", "2^n"},
		{"2**n", "2**n", "2^n"},
		{"pi", "math.pi", "_pi"},
		{"1e-6 + sqrt", "1e-6 + math.sqrt", "1e-6 + sqrt"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := Translate(tc.input, notation.Procedural)
			require.NoError(t, err)
			assert.Equal(t, tc.procedural, got)

			got, err = Translate(tc.input, notation.Declarative)
			require.NoError(t, err)
			assert.Equal(t, tc.declarative, got)
		})
	}
}

func TestTranslate_Unsupported(t *testing.T) {
	_, err := Translate("floor(n/2)", notation.Declarative)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))

	got, err := Translate("floor(n/2)", notation.Procedural)
	require.NoError(t, err)
	assert.Equal(t, "math.floor(n/2)", got)
}

func TestIdentifiers(t *testing.T) {
	got := Identifiers("max(a, b) * a + sqrt(c2) - 1e5")
	assert.Equal(t, []string{"a", "b", "c2"}, got)
	assert.Empty(t, Identifiers("3.14 * 2"))
}
