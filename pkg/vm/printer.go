package vm

import (
	"strconv"
	"strings"

	"github.com/StephenCrawley/krua/pkg/value"
)

// Sprint renders v the way the REPL echoes a result, grounded on
// original_source/src/object.c's _kprint/kprint: atoms print bare (a
// quoted char, a decimal int, a backtick-prefixed symbol, nothing for
// nil); heap vectors print as a quoted string (Chr), space-separated
// (Int), concatenated backtick-prefixed names (Sym), or
// semicolon-separated and parenthesized (Obj); a singleton
// heap vector gets a leading comma so it round-trips unambiguously; a
// Lambda prints as its original source text.
func Sprint(v value.Value) string {
	if v.IsNil() {
		return ""
	}
	if v.IsTagged() {
		switch v.TagType() {
		case value.TChr:
			return "\"" + string(byte(v.TagVal())) + "\""
		case value.TInt:
			return strconv.Itoa(int(v.TagVal()))
		case value.TSym:
			return "`" + symName(uint32(v.TagVal()))
		default:
			return ""
		}
	}

	t := v.Type()
	if t == value.TLambda {
		return string(v.Elem(3).Bytes())
	}

	n := v.Count()
	if n == 0 {
		switch t {
		case value.TChr:
			return "\"\""
		case value.TInt, value.TSym:
			return "0#0"
		default:
			return "()"
		}
	}

	switch t {
	case value.TChr:
		body := "\"" + string(v.Bytes()) + "\""
		if n == 1 {
			return "," + body
		}
		return body
	case value.TInt:
		parts := make([]string, n)
		for i := int32(0); i < n; i++ {
			parts[i] = strconv.Itoa(int(v.Elem(i).TagVal()))
		}
		body := strings.Join(parts, " ")
		if n == 1 {
			return "," + body
		}
		return body
	case value.TSym:
		var b strings.Builder
		for i := int32(0); i < n; i++ {
			b.WriteByte('`')
			b.WriteString(symName(uint32(v.Elem(i).TagVal())))
		}
		if n == 1 {
			return "," + b.String()
		}
		return b.String()
	default: // TObj
		if n == 1 {
			return "," + Sprint(v.Elem(0))
		}
		parts := make([]string, n)
		for i := int32(0); i < n; i++ {
			parts[i] = Sprint(v.Elem(i))
		}
		return "(" + strings.Join(parts, ";") + ")"
	}
}
