package vm

import (
	"errors"

	"github.com/StephenCrawley/krua/pkg/bytecode"
	"github.com/StephenCrawley/krua/pkg/compiler"
	"github.com/StephenCrawley/krua/pkg/value"
)

// ErrExit is returned by Eval when the stripped line begins with a
// backslash, krua's REPL exit command. The VM package never calls os.Exit itself — that
// decision belongs at the cmd/krua boundary (Design Notes §9's general
// preference against library code reaching for process control).
var ErrExit = errors.New("exit")

// Strip removes a line's trailing comment, grounded on
// original_source/src/eval.c's strip(): a line whose first byte is '/' is
// a comment in its entirety; otherwise trailing " / ..." (a '/' preceded
// by a space) is cut, and the resulting trailing spaces trimmed.
func Strip(line []byte) []byte {
	if len(line) > 0 && line[0] == '/' {
		return line[:0]
	}
	for i := 1; i < len(line); i++ {
		if line[i] == '/' && line[i-1] == ' ' {
			line = line[:i-1]
			break
		}
	}
	for len(line) > 0 && line[len(line)-1] == ' ' {
		line = line[:len(line)-1]
	}
	return line
}

// Eval compiles and runs one top-level line against globals, the
// persistent dictionary a REPL or script keeps across calls. It is the
// recovery boundary of spec.md §6.1/§7: compile errors and run errors
// both propagate as *Error (or ErrExit for a line beginning with a
// backslash). A compile error leaves globals untouched; a run error does
// not undo assignments that executed before it.
func Eval(line string, globals *value.Value) (value.Value, error) {
	stripped := Strip([]byte(line))
	if len(stripped) == 0 {
		return value.Nil(), nil
	}
	if stripped[0] == '\\' {
		return value.Value{}, ErrExit
	}

	src := value.CString(string(stripped))
	compiled, err := compiler.Load(src, value.Null())
	if err != nil {
		return value.Value{}, err
	}

	n := compiled.Code.Count()
	isAssign := n > 0 && bytecode.Class(byte(compiled.Code.Elem(n-1).TagVal())) == bytecode.ClassSetVar

	result, err := Run(compiled.Code, compiled.Vars, compiled.Consts, globals, nil)
	value.Unref(compiled.Code)
	value.Unref(compiled.Vars)
	value.Unref(compiled.Consts)
	if err != nil {
		return value.Value{}, err
	}
	if isAssign {
		value.Unref(result)
		return value.Nil(), nil
	}
	return result, nil
}
