package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogged checks that some log line carries msg and every key=value
// pair, as written by the text handler.
func AssertLogged(t *testing.T, result *HarnessResult, msg string, kv ...string) {
	t.Helper()
	require.True(t, len(kv)%2 == 0, "AssertLogged needs key/value pairs")

	for _, line := range strings.Split(result.LogOutput, "\n") {
		if !strings.Contains(line, "msg=\""+msg+"\"") && !strings.Contains(line, "msg="+msg) {
			continue
		}
		matched := true
		for i := 0; i < len(kv); i += 2 {
			if !strings.Contains(line, kv[i]+"="+kv[i+1]) && !strings.Contains(line, kv[i]+"=\""+kv[i+1]+"\"") {
				matched = false
				break
			}
		}
		if matched {
			return
		}
	}
	t.Fatalf("no log line with msg %q and attributes %v in:\n%s", msg, kv, result.LogOutput)
}

// AssertOrdered checks that every needle occurs in s, in the given order.
func AssertOrdered(t *testing.T, s string, needles ...string) {
	t.Helper()
	last := -1
	for _, n := range needles {
		i := strings.Index(s, n)
		require.GreaterOrEqual(t, i, 0, "missing %q in:\n%s", n, s)
		require.Greater(t, i, last, "%q out of order in:\n%s", n, s)
		last = i
	}
}
