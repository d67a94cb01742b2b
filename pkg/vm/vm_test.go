package vm

import (
	"testing"

	"github.com/StephenCrawley/krua/pkg/value"
)

func evalOK(t *testing.T, globals *value.Value, src string) value.Value {
	t.Helper()
	v, err := Eval(src, globals)
	if err != nil {
		t.Fatalf("Eval(%q) failed: %v", src, err)
	}
	return v
}

func TestEvalArithmetic(t *testing.T) {
	g := value.NewSymDict()
	v := evalOK(t, &g, "1+2")
	if v.TagVal() != 3 {
		t.Errorf("1+2 = %d, want 3", v.TagVal())
	}
}

func TestEvalParenPrecedence(t *testing.T) {
	g := value.NewSymDict()
	v := evalOK(t, &g, "(1+2)*3")
	if v.TagVal() != 9 {
		t.Errorf("(1+2)*3 = %d, want 9", v.TagVal())
	}
}

func TestEvalListLiteralPreservesOrder(t *testing.T) {
	g := value.NewSymDict()
	v := evalOK(t, &g, "(1;2)")
	if got := Sprint(v); got != "1 2" {
		t.Errorf("Sprint((1;2)) = %q, want %q", got, "1 2")
	}
	value.Unref(v)
}

func TestEvalAssignmentThenRead(t *testing.T) {
	g := value.NewSymDict()
	assigned := evalOK(t, &g, "x:5")
	if !assigned.IsNil() {
		t.Errorf("an assignment statement should evaluate to Nil, got %v", Sprint(assigned))
	}

	v := evalOK(t, &g, "x")
	if v.TagVal() != 5 {
		t.Errorf("x = %d, want 5", v.TagVal())
	}
}

func TestEvalLambdaCall(t *testing.T) {
	g := value.NewSymDict()
	v := evalOK(t, &g, "{[x;y]x+y}[1;6]")
	if v.TagVal() != 7 {
		t.Errorf("{[x;y]x+y}[1;6] = %d, want 7", v.TagVal())
	}
}

func TestEvalIndexAt(t *testing.T) {
	g := value.NewSymDict()
	v := evalOK(t, &g, `"abc"@0`)
	if got := Sprint(v); got != `"a"` {
		t.Errorf(`"abc"@0 = %s, want "a"`, got)
	}
}

func TestEvalOutOfBoundsIndexYieldsFiller(t *testing.T) {
	g := value.NewSymDict()
	v := evalOK(t, &g, `"abc"@9`)
	if v.TagVal() != int32(' ') {
		t.Errorf("out-of-bounds Chr index = %d, want %d (space)", v.TagVal(), int32(' '))
	}
}

func TestEvalUndefinedVariableIsValueError(t *testing.T) {
	g := value.NewSymDict()
	_, err := Eval("nosuchvar", &g)
	if err == nil {
		t.Fatalf("expected an error referencing an undefined variable")
	}
	kerrVal, ok := err.(*Error)
	if !ok || kerrVal.Kind != ErrValue {
		t.Errorf("expected a Value error, got %v", err)
	}
}

func TestEvalApplyingAnAtomIsRankError(t *testing.T) {
	g := value.NewSymDict()
	_, err := Eval("5[1]", &g)
	if err == nil {
		t.Fatalf("expected a rank error applying a simple atom")
	}
	kerrVal, ok := err.(*Error)
	if !ok || kerrVal.Kind != ErrRank {
		t.Errorf("expected a Rank error, got %v", err)
	}
}

func TestEvalTooManyLambdaArgsIsRankError(t *testing.T) {
	g := value.NewSymDict()
	_, err := Eval("{[x]x}[1;2]", &g)
	if err == nil {
		t.Fatalf("expected a rank error for too many lambda arguments")
	}
	if kerrVal, ok := err.(*Error); !ok || kerrVal.Kind != ErrRank {
		t.Errorf("expected a Rank error, got %v", err)
	}
}

func TestEvalBareBackslashExits(t *testing.T) {
	g := value.NewSymDict()
	_, err := Eval("\\", &g)
	if err != ErrExit {
		t.Errorf("Eval(\"\\\\\") error = %v, want ErrExit", err)
	}
}

func TestEvalEmptyLineIsNoop(t *testing.T) {
	g := value.NewSymDict()
	v, err := Eval("", &g)
	if err != nil {
		t.Fatalf("empty line should not error: %v", err)
	}
	if !v.IsNil() {
		t.Errorf("empty line should evaluate to Nil")
	}
}

func TestStripWholeLineComment(t *testing.T) {
	got := Strip([]byte("/ this is a comment"))
	if len(got) != 0 {
		t.Errorf("Strip(whole-line comment) = %q, want empty", got)
	}
}

func TestStripTrailingComment(t *testing.T) {
	got := Strip([]byte("1+2 / add them"))
	if string(got) != "1+2" {
		t.Errorf("Strip(trailing comment) = %q, want %q", got, "1+2")
	}
}

func TestStripLeavesPlainLineAlone(t *testing.T) {
	got := Strip([]byte("1+2"))
	if string(got) != "1+2" {
		t.Errorf("Strip(plain line) = %q, want %q", got, "1+2")
	}
}

func TestSprintAtoms(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		want string
	}{
		{"chr", value.Chr('x'), `"x"`},
		{"int", value.Int(42), "42"},
		{"int negative", value.Int(-3), "-3"},
		{"nil", value.Nil(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sprint(tt.v); got != tt.want {
				t.Errorf("Sprint(%s) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestSprintSingletonVectorGetsComma(t *testing.T) {
	v := value.New(value.TInt, 1)
	v.SetElem(0, value.Int(7))
	if got := Sprint(v); got != ",7" {
		t.Errorf("Sprint(singleton int vector) = %q, want %q", got, ",7")
	}
	value.Unref(v)
}

func TestSprintMultiElementVectorHasNoComma(t *testing.T) {
	v := value.New(value.TInt, 2)
	v.SetElem(0, value.Int(1))
	v.SetElem(1, value.Int(2))
	if got := Sprint(v); got != "1 2" {
		t.Errorf("Sprint(int vector) = %q, want %q", got, "1 2")
	}
	value.Unref(v)
}

func TestSprintObjList(t *testing.T) {
	v := value.Box2(value.Int(1), value.CString("ab"))
	if got := Sprint(v); got != `(1;"ab")` {
		t.Errorf("Sprint(obj list) = %q, want %q", got, `(1;"ab")`)
	}
	value.Unref(v)
}

func TestChainedPostfixIndexWalksNestedLists(t *testing.T) {
	// (1 2;3 4)[1][0] should walk the outer list then the inner one.
	g := value.NewSymDict()
	v := evalOK(t, &g, "(1 2;3 4)[1][0]")
	if v.TagVal() != 3 {
		t.Errorf("(1 2;3 4)[1][0] = %d, want 3", v.TagVal())
	}
}

func TestCountPrimitive(t *testing.T) {
	g := value.NewSymDict()
	v := evalOK(t, &g, `#"abcd"`)
	if v.TagVal() != 4 {
		t.Errorf("#\"abcd\" = %d, want 4", v.TagVal())
	}
}
