package params

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ps(pairs ...string) []model.Parameter {
	var out []model.Parameter
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.Parameter{Name: pairs[i], Expr: pairs[i+1]})
	}
	return out
}

func names(params []model.Parameter) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

func TestResolve(t *testing.T) {
	testCases := []struct {
		name  string
		input []model.Parameter
		want  []string
	}{
		{name: "simple chain", input: ps("a", "5", "b", "a*2"), want: []string{"a", "b"}},
		{name: "forward reference", input: ps("b", "a*2", "a", "5"), want: []string{"a", "b"}},
		{
			name:  "functions are not dependencies",
			input: ps("x", "exp(y) + sqrt(2)", "y", "log(3)"),
			want:  []string{"y", "x"},
		},
		{
			name:  "independent parameters keep input order",
			input: ps("c", "1", "b", "2", "a", "3"),
			want:  []string{"c", "b", "a"},
		},
		{
			name:  "diamond",
			input: ps("d", "b+c", "c", "a", "b", "a", "a", "1"),
			want:  []string{"a", "c", "b", "d"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(testCtx(), tc.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, names(got)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_DependencyOrderProperty(t *testing.T) {
	input := ps("e", "d+a", "d", "c*b", "c", "b", "b", "a", "a", "1")
	got, err := Resolve(testCtx(), input)
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, p := range got {
		pos[p.Name] = i
	}
	deps := map[string][]string{"e": {"d", "a"}, "d": {"c", "b"}, "c": {"b"}, "b": {"a"}}
	for p, ds := range deps {
		for _, d := range ds {
			assert.Less(t, pos[d], pos[p], "%s must precede %s", d, p)
		}
	}
}

func TestResolve_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		input   []model.Parameter
		wantErr string
	}{
		{name: "undefined identifier", input: ps("a", "b*2"), wantErr: `undefined identifier "b"`},
		{name: "self reference", input: ps("a", "a+1"), wantErr: "circular parameter dependency"},
		{name: "cycle", input: ps("a", "b", "b", "c", "c", "a"), wantErr: "circular parameter dependency"},
		{name: "cycle names the dependency", input: ps("a", "b+1", "b", "2*a"), wantErr: `which depends on `},
		{name: "duplicate", input: ps("a", "1", "a", "2"), wantErr: "duplicate object name"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(testCtx(), tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, generr.ErrSemantic)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	input := ps("a", "5", "b", "a*2")

	got, err := ApplyOverrides(input, map[string]string{"a": "7"})
	require.NoError(t, err)
	assert.Equal(t, ps("a", "7", "b", "a*2"), got)
	assert.Equal(t, "5", input[0].Expr, "input is not modified")

	_, err = ApplyOverrides(input, map[string]string{"zz": "1"})
	assert.ErrorIs(t, err, generr.ErrSemantic)
}
