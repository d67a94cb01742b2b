package vm

import (
	"os"

	"github.com/StephenCrawley/krua/pkg/value"
)

// Monad and dyad are the signatures of krua's primitive tables, grounded
// on original_source/src/monad.c and dyad.c. globals is threaded
// explicitly (rather than read from a process-global, per Design Notes
// §9) because a handful of primitives — notably '@' — recurse into Apply,
// which needs it to resolve free variables in a called lambda.
type Monad func(x value.Value, globals *value.Value) (value.Value, error)
type Dyad func(x, y value.Value, globals *value.Value) (value.Value, error)

func nyiMonad(op string) Monad {
	return func(x value.Value, globals *value.Value) (value.Value, error) {
		value.Unref(x)
		return value.Value{}, NyiErr("monadic " + op)
	}
}

func nyiDyad(op string) Dyad {
	return func(x, y value.Value, globals *value.Value) (value.Value, error) {
		value.Unref(x)
		value.Unref(y)
		return value.Value{}, NyiErr("dyadic " + op)
	}
}

// monadTable and dyadTable are indexed by an operator's position in
// bytecode.Ops. Only the five primitives spec.md §4.6 lists as
// implemented are filled in; the rest are nyi placeholders — expanding
// that set is explicitly out of scope (§1 Non-goals), since doing so
// would change the tested nyi-error surface.
var monadTable [20]Monad
var dyadTable [20]Dyad

func init() {
	for i := range monadTable {
		monadTable[i] = nyiMonad(opName(i))
	}
	for i := range dyadTable {
		dyadTable[i] = nyiDyad(opName(i))
	}
	monadTable[6] = monadValue // '.'
	monadTable[12] = monadCount // '#'
	dyadTable[1] = dyadAdd // '+'
	dyadTable[3] = dyadMlt // '*'
	dyadTable[5] = dyadAt  // '@'
}

func opName(i int) string {
	if i < 0 || i >= len(opsAlphabet) {
		return "?"
	}
	return string(opsAlphabet[i])
}

const opsAlphabet = ":+-*%@.!,<>?#_~&|=$^"

// monadValue reads x, a Chr vector holding a filesystem path, and returns
// its contents as a fresh Chr vector. Grounded on original_source/src/
// monad.c's value(), generalized from the original's in-process eval to a
// plain file read (krua has no notion of loaded modules beyond a single
// source string — see SPEC_FULL.md's domain-stack section).
func monadValue(x value.Value, globals *value.Value) (value.Value, error) {
	if x.IsTagged() || x.Type() != value.TChr {
		value.Unref(x)
		return value.Value{}, TypeErr("value: expected a character vector")
	}
	path := string(x.Bytes())
	value.Unref(x)
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Value{}, ValueErr("can't open file", path)
	}
	return value.CString(string(data)), nil
}

// monadCount returns the element count of x, or 1 for an atom.
func monadCount(x value.Value, globals *value.Value) (value.Value, error) {
	n := x.Count()
	value.Unref(x)
	return value.Int(n), nil
}

// dyadAdd and dyadMlt implement the two arithmetic dyads krua supports:
// atom-atom, and atom-vector/vector-atom (element-wise, atom on either
// side). Vector-vector arithmetic is nyi, per spec.md §4.6.
func dyadAdd(x, y value.Value, globals *value.Value) (value.Value, error) {
	return numericDyad(x, y, func(a, b int32) int32 { return a + b })
}

func dyadMlt(x, y value.Value, globals *value.Value) (value.Value, error) {
	return numericDyad(x, y, func(a, b int32) int32 { return a * b })
}

func numericDyad(x, y value.Value, op func(int32, int32) int32) (value.Value, error) {
	xAtom, yAtom := x.IsAtom(), y.IsAtom()
	switch {
	case xAtom && yAtom:
		if x.TagType() != value.TInt || y.TagType() != value.TInt {
			value.Unref(x)
			value.Unref(y)
			return value.Value{}, TypeErr("arithmetic requires integers")
		}
		return value.Int(op(x.TagVal(), y.TagVal())), nil
	case xAtom && !yAtom:
		if x.TagType() != value.TInt || y.Type() != value.TInt {
			value.Unref(x)
			value.Unref(y)
			return value.Value{}, TypeErr("arithmetic requires integers")
		}
		n := y.Count()
		r := value.New(value.TInt, n)
		for i := int32(0); i < n; i++ {
			r.SetElem(i, value.Int(op(x.TagVal(), y.Elem(i).TagVal())))
		}
		value.Unref(y)
		return r, nil
	case !xAtom && yAtom:
		if x.Type() != value.TInt || y.TagType() != value.TInt {
			value.Unref(x)
			value.Unref(y)
			return value.Value{}, TypeErr("arithmetic requires integers")
		}
		n := x.Count()
		r := value.New(value.TInt, n)
		for i := int32(0); i < n; i++ {
			r.SetElem(i, value.Int(op(x.Elem(i).TagVal(), y.TagVal())))
		}
		value.Unref(x)
		return r, nil
	default:
		value.Unref(x)
		value.Unref(y)
		return value.Value{}, NyiErr("vector-vector arithmetic")
	}
}

// dyadAt is '@': indexing/application. x@y is apply(x, [y]).
func dyadAt(x, y value.Value, globals *value.Value) (value.Value, error) {
	return Apply(x, []value.Value{y}, globals)
}

// releaseAll unrefs every value in args; used on error paths where Apply
// must still honor its "consumes head and args" contract.
func releaseAll(args []value.Value) {
	for _, a := range args {
		value.Unref(a)
	}
}

// Apply implements krua's single entry point for applying a value to
// arguments (spec.md §4.5), grounded on original_source/src/apply.c's
// apply(). It consumes head and every element of args.
func Apply(head value.Value, args []value.Value, globals *value.Value) (value.Value, error) {
	if head.IsTagged() {
		value.Unref(head)
		releaseAll(args)
		return value.Value{}, RankErr("can't apply a simple value")
	}
	if head.Type() == value.TLambda {
		return applyLambda(head, args, globals)
	}
	return applyOver(head, args, globals)
}

// applyOver implements successive 1-step indexing over a data value: the
// first argument indexes head, and each subsequent argument is applied to
// the running result — which lets it fall through to a further index, or
// to a lambda call, generically.
func applyOver(head value.Value, args []value.Value, globals *value.Value) (value.Value, error) {
	if len(args) == 0 {
		return head, nil
	}
	cur := Index(head, args[0])
	value.Unref(head)
	for i := 1; i < len(args); i++ {
		next, err := Apply(cur, args[i:i+1], globals)
		if err != nil {
			releaseAll(args[i+1:])
			return value.Value{}, err
		}
		cur = next
	}
	return cur, nil
}

// applyLambda binds args to a Lambda's parameter slots and runs its body.
// Exactly argc arguments are required: fewer is nyi (partial application
// is not implemented), more is a rank error.
func applyLambda(head value.Value, args []value.Value, globals *value.Value) (value.Value, error) {
	argc := int(head.Argc())
	if len(args) > argc {
		value.Unref(head)
		releaseAll(args)
		return value.Value{}, RankErr("too many arguments to a lambda")
	}
	if len(args) < argc {
		value.Unref(head)
		releaseAll(args)
		return value.Value{}, NyiErr("partial application")
	}
	varc := int(head.Varc())
	locals := make([]value.Value, varc)
	for i := 0; i < argc; i++ {
		locals[i] = args[i]
	}
	code := head.Elem(0)
	vars := head.Elem(1)
	consts := head.Elem(2)
	result, err := Run(code, vars, consts, globals, locals)
	for i := 0; i < varc; i++ {
		value.Unref(locals[i])
	}
	value.Unref(head)
	return result, err
}

// Index implements krua's indexing primitive (spec.md §4.5): a tagged
// scalar index picks one element (out-of-bounds yielding a type-
// appropriate filler); a vector index gathers one element per position.
// Grounded on original_source/src/index.c's simpleIndex/index. x must be
// a heap vector (Apply checks atoms before calling Index).
func Index(x value.Value, ix value.Value) value.Value {
	if ix.IsTagged() {
		return indexScalar(x, ix.TagVal())
	}
	return indexVector(x, ix)
}

func indexScalar(x value.Value, i int32) value.Value {
	n := x.Count()
	t := x.Type()
	if i >= 0 && i < n {
		e := x.Elem(i)
		if t == value.TObj {
			return value.Ref(e)
		}
		return e
	}
	switch t {
	case value.TChr:
		return value.Chr(' ')
	case value.TInt:
		return value.Int(0)
	case value.TSym:
		return value.Sym(0)
	default:
		return value.Nil()
	}
}

// indexVector consumes ix, gathering x[ix[k]] for each k.
func indexVector(x value.Value, ix value.Value) value.Value {
	n := ix.Count()
	t := x.Type()
	r := value.New(t, n)
	for k := int32(0); k < n; k++ {
		r.SetElem(k, indexScalar(x, ix.Elem(k).TagVal()))
	}
	value.Unref(ix)
	return r
}
