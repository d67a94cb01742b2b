package compiler

import (
	"bytes"
	"strconv"

	"github.com/StephenCrawley/krua/pkg/bytecode"
	"github.com/StephenCrawley/krua/pkg/kerr"
	"github.com/StephenCrawley/krua/pkg/value"
)

// tokenize scans src into a stream of one-byte tokens: GET_VAR/CONST
// opcodes for identifiers, numbers, and strings (already resolved against
// c.vars/c.consts); raw operator-alphabet indices (0-19) for operators;
// and the literal ASCII bytes '(' ')' '[' ']' ';' passed through
// unreduced, for bracketReduce to consume next. Grounded on
// original_source/src/eval.c's token().
func (c *compiler) tokenize(src value.Value) ([]byte, error) {
	s := src.Bytes()
	n := len(s)
	var out []byte
	i := 0
	for i < n {
		for i < n && s[i] == ' ' {
			i++
		}
		if i >= n {
			break
		}
		ch := s[i]
		switch {
		case isAlpha(ch):
			start := i
			i++
			for i < n && isAlnum(s[i]) {
				i++
			}
			sym := value.EncodeSym(s[start:i])
			idx := value.AddSym(&c.vars, sym)
			if idx >= MaxVars {
				return nil, kerr.ParseErr(start, "too many variables in one expression")
			}
			out = append(out, bytecode.ClassGetVar+idx)

		case isDigit(ch):
			start := i
			count := 1
			for {
				for i < n && isDigit(s[i]) {
					i++
				}
				if i < n && s[i] == ' ' && i+1 < n && isDigit(s[i+1]) {
					i++
					count++
					continue
				}
				break
			}
			v := parseNumbers(s[start:i], count)
			idx, err := c.addConst(v)
			if err != nil {
				return nil, err
			}
			out = append(out, bytecode.ClassConst+idx)

		case ch == '"':
			start := i + 1
			i++
			for i < n && s[i] != '"' {
				i++
			}
			if i == n {
				return nil, kerr.ParseErr(start-1, "unclosed string")
			}
			var v value.Value
			if i-start == 1 {
				v = value.Chr(s[start])
			} else {
				v = value.CString(string(s[start:i]))
			}
			i++
			idx, err := c.addConst(v)
			if err != nil {
				return nil, err
			}
			out = append(out, bytecode.ClassConst+idx)

		case ch == '(', ch == ')', ch == '[', ch == ']', ch == ';':
			out = append(out, ch)
			i++

		case ch == '{':
			lam, next, err := c.tokenizeLambda(s, i)
			if err != nil {
				return nil, err
			}
			idx, err := c.addConst(lam)
			if err != nil {
				return nil, err
			}
			out = append(out, bytecode.ClassConst+idx)
			i = next

		default:
			opIdx := bytes.IndexByte([]byte(bytecode.Ops), ch)
			if opIdx < 0 {
				return nil, kerr.ParseErr(i, "unrecognized character")
			}
			out = append(out, byte(opIdx))
			i++
		}
	}
	return out, nil
}

func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlnum(b byte) bool { return isAlpha(b) || isDigit(b) }

// parseNumbers parses a token's worth of digits into an Int atom (count
// 1) or an Int vector (count several single-space-separated groups).
func parseNumbers(text []byte, count int) value.Value {
	if count == 1 {
		n, _ := strconv.Atoi(string(text))
		return value.Int(int32(n))
	}
	r := value.New(value.TInt, int32(count))
	idx := int32(0)
	j := 0
	for j < len(text) {
		start := j
		for j < len(text) && text[j] != ' ' {
			j++
		}
		n, _ := strconv.Atoi(string(text[start:j]))
		r.SetElem(idx, value.Int(int32(n)))
		idx++
		for j < len(text) && text[j] == ' ' {
			j++
		}
	}
	return r
}

// addConst appends v to c.consts, boxing it on first use, and returns its
// index.
func (c *compiler) addConst(v value.Value) (byte, error) {
	if !c.consts.IsHeap() {
		c.consts = value.Box1(v)
		return 0, nil
	}
	n := c.consts.Count()
	if n >= MaxConsts {
		value.Unref(v)
		return 0, kerr.ParseErr(0, "too many constants in one expression")
	}
	c.consts = value.JoinObj(c.consts, v)
	return byte(n), nil
}

// tokenizeLambda recognizes a "{[params]body}" literal starting at
// source offset start (pointing at '{'), recursively compiles its body,
// and returns the resulting Lambda value together with the index just
// past the literal's closing brace. Grounded on original_source/src/
// eval.c's handling of '{' inside token(), generalized per spec.md §4.2's
// Lambda rule (argc/varc layout, free variables resolved at call time via
// the global dictionary).
func (c *compiler) tokenizeLambda(s []byte, start int) (value.Value, int, error) {
	depth := 1
	j := start + 1
	for j < len(s) && depth > 0 {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			break
		}
		j++
	}
	if depth != 0 {
		return value.Value{}, 0, kerr.ParseErr(start, "unclosed lambda")
	}
	end := j // index of matching '}'
	full := s[start : end+1]
	inner := s[start+1 : end]

	if len(inner) == 0 || inner[0] != '[' {
		return value.Value{}, 0, kerr.ParseErr(start, "lambda missing parameter list")
	}
	closeBracket := bytes.IndexByte(inner, ']')
	if closeBracket < 0 {
		return value.Value{}, 0, kerr.ParseErr(start, "lambda: malformed parameter list")
	}
	paramsText := inner[1:closeBracket]
	bodyText := inner[closeBracket+1:]

	var params [][]byte
	if len(bytes.TrimSpace(paramsText)) > 0 {
		for _, p := range bytes.Split(paramsText, []byte{';'}) {
			params = append(params, bytes.TrimSpace(p))
		}
	}
	if len(params) > MaxVars {
		return value.Value{}, 0, kerr.ParseErr(start, "too many lambda parameters")
	}

	var vars value.Value
	for _, p := range params {
		value.AddSym(&vars, value.EncodeSym(p))
	}
	argc := len(params)

	for _, name := range scanLocals(bodyText) {
		if vars.Count() >= MaxVars {
			break
		}
		value.AddSym(&vars, value.EncodeSym(name))
	}
	varc := int(vars.Count())

	bodySrc := value.CString(string(bodyText))
	compiled, err := Load(bodySrc, vars)
	if err != nil {
		return value.Value{}, 0, err
	}

	lam := value.NewLambda(compiled.Code, compiled.Vars, compiled.Consts, value.CString(string(full)))
	lam.SetArgc(byte(argc))
	lam.SetVarc(byte(varc))
	return lam, end + 1, nil
}

// scanLocals finds identifiers immediately followed by ':' (krua's
// assignment suffix) in body, in first-seen order, skipping over string
// literals and nested lambda bodies so their contents are never
// misread as assignments at this outer level.
func scanLocals(body []byte) [][]byte {
	var locals [][]byte
	seen := map[string]bool{}
	n := len(body)
	i := 0
	for i < n {
		switch {
		case body[i] == '"':
			i++
			for i < n && body[i] != '"' {
				i++
			}
			i++
		case body[i] == '{':
			depth := 1
			i++
			for i < n && depth > 0 {
				switch body[i] {
				case '{':
					depth++
				case '}':
					depth--
				}
				i++
			}
		case isAlpha(body[i]):
			start := i
			i++
			for i < n && isAlnum(body[i]) {
				i++
			}
			name := body[start:i]
			if i < n && body[i] == ':' {
				key := string(name)
				if !seen[key] {
					seen[key] = true
					locals = append(locals, name)
				}
			}
		default:
			i++
		}
	}
	return locals
}
