package expr

// function is a recognized function or constant name with its spelling in
// each output notation. An empty spelling means the notation has no
// equivalent.
type function struct {
	procedural  string
	declarative string
}

var functions = map[string]function{
	"sqrt":  {"math.sqrt", "sqrt"},
	"exp":   {"math.exp", "exp"},
	"log":   {"math.log", "ln"},
	"ln":    {"math.log", "ln"},
	"log10": {"math.log10", "log10"},
	"sin":   {"math.sin", "sin"},
	"cos":   {"math.cos", "cos"},
	"tan":   {"math.tan", "tan"},
	"asin":  {"math.asin", "asin"},
	"acos":  {"math.acos", "acos"},
	"atan":  {"math.atan", "atan"},
	"sinh":  {"math.sinh", "sinh"},
	"cosh":  {"math.cosh", "cosh"},
	"tanh":  {"math.tanh", "tanh"},
	"abs":   {"abs", "abs"},
	"max":   {"max", "max"},
	"min":   {"min", "min"},
	"ceil":  {"math.ceil", ""},
	"floor": {"math.floor", ""},
	"round": {"round", "rint"},
	"pi":    {"math.pi", "_pi"},
}

func init() {
	// Legacy documents spell functions in upper case.
	for _, name := range []string{
		"sqrt", "exp", "log", "log10", "sin", "cos", "tan", "asin", "acos", "atan",
		"abs", "max", "min", "ceil", "floor", "pi",
	} {
		functions[upper(name)] = functions[name]
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// IsFunction reports whether name is a recognized function or constant.
func IsFunction(name string) bool {
	_, ok := functions[name]
	return ok
}
