package vm

import (
	"github.com/StephenCrawley/krua/pkg/bytecode"
	"github.com/StephenCrawley/krua/pkg/value"
)

// StackSize is the VM's fixed value-stack capacity. Design Notes §9 notes
// the original's down-growing stack is an incidental implementation
// choice; a plain Go slice used LIFO is equally correct, so that's what
// Run uses, keeping only the fixed small capacity.
const StackSize = 64

// Run executes code against vars/consts (the per-expression symbol and
// constant tables built at compile time), globals (the persistent
// top-level dictionary), and locals (varc slots, parameters first, for a
// lambda invocation, or nil at top level). It returns the final stack value, or
// Nil if the stack is empty when code runs out.
//
// Grounded on original_source/src/eval.c's vm().
func Run(code, vars, consts value.Value, globals *value.Value, locals []value.Value) (value.Value, error) {
	stack := make([]value.Value, 0, StackSize)
	push := func(v value.Value) error {
		if len(stack) >= StackSize {
			return stackOverflowErr()
		}
		stack = append(stack, v)
		return nil
	}
	pop := func() value.Value {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	codeBytes := code.Bytes()
	ip := 0
	for ip < len(codeBytes) {
		b := codeBytes[ip]
		ip++
		class := bytecode.Class(b)
		idx := int(bytecode.Index(b))

		switch class {
		case bytecode.ClassUnary:
			if idx >= len(monadTable) {
				return bail(stack, NyiErr("unknown unary operator"))
			}
			top := pop()
			res, err := monadTable[idx](top, globals)
			if err != nil {
				return bail(stack, err)
			}
			if err := push(res); err != nil {
				value.Unref(res)
				return bail(stack, err)
			}

		case bytecode.ClassBinary:
			if len(stack) < 2 {
				return bail(stack, stackUnderflowErr())
			}
			a := pop()
			b2 := pop()
			if idx >= len(dyadTable) {
				value.Unref(a)
				value.Unref(b2)
				return bail(stack, NyiErr("unknown binary operator"))
			}
			res, err := dyadTable[idx](a, b2, globals)
			if err != nil {
				return bail(stack, err)
			}
			if err := push(res); err != nil {
				value.Unref(res)
				return bail(stack, err)
			}

		case bytecode.ClassNary:
			if idx == 0 {
				if len(stack) < 1 {
					return bail(stack, stackUnderflowErr())
				}
				value.Unref(pop())
				continue
			}
			n := idx
			if len(stack) < n+1 {
				return bail(stack, stackUnderflowErr())
			}
			f := pop()
			args := make([]value.Value, n)
			for k := 0; k < n; k++ {
				args[k] = pop()
			}
			res, err := Apply(f, args, globals)
			if err != nil {
				return bail(stack, err)
			}
			if err := push(res); err != nil {
				value.Unref(res)
				return bail(stack, err)
			}

		case bytecode.ClassConst:
			if int32(idx) >= consts.Count() {
				return bail(stack, TypeErr("const index out of range"))
			}
			if err := push(value.Ref(consts.Elem(int32(idx)))); err != nil {
				return bail(stack, err)
			}

		case bytecode.ClassGetVar:
			if idx < len(locals) {
				if err := push(value.Ref(locals[idx])); err != nil {
					return bail(stack, err)
				}
				continue
			}
			sym := uint32(vars.Elem(int32(idx)).TagVal())
			v, ok := value.DictGet(*globals, sym)
			if !ok {
				return bail(stack, ValueErr("undefined variable", symName(sym)))
			}
			if err := push(v); err != nil {
				value.Unref(v)
				return bail(stack, err)
			}

		case bytecode.ClassSetVar:
			if len(stack) < 1 {
				return bail(stack, stackUnderflowErr())
			}
			top := stack[len(stack)-1] // SET_VAR does not pop
			if idx < len(locals) {
				value.Unref(locals[idx])
				locals[idx] = value.Ref(top)
				continue
			}
			sym := uint32(vars.Elem(int32(idx)).TagVal())
			value.DictSet(globals, sym, top)

		case bytecode.ClassSpecial:
			switch b {
			case bytecode.SpecialDiscard:
				if len(stack) < 1 {
					return bail(stack, stackUnderflowErr())
				}
				value.Unref(pop())
			case bytecode.SpecialEnlist:
				if ip >= len(codeBytes) {
					return bail(stack, NyiErr("truncated enlist"))
				}
				n := int(codeBytes[ip])
				ip++
				if len(stack) < n {
					return bail(stack, stackUnderflowErr())
				}
				r := value.New(value.TObj, int32(n))
				for k := 0; k < n; k++ {
					r.SetElem(int32(n-1-k), pop())
				}
				if err := push(value.Squeeze(r)); err != nil {
					return bail(stack, err)
				}
			default:
				return bail(stack, NyiErr("special opcode"))
			}

		default:
			return bail(stack, NyiErr("fenced placeholder reached the VM"))
		}
	}

	if len(stack) == 0 {
		return value.Nil(), nil
	}
	return stack[len(stack)-1], nil
}

func stackUnderflowErr() error { return NyiErr("stack underflow") }

func stackOverflowErr() error { return NyiErr("value stack overflow") }

// bail unwinds the stack, releasing every value still held above the call's
// initial (empty) base, and returns err, per spec.md §7's error-path
// ownership discipline.
func bail(stack []value.Value, err error) (value.Value, error) {
	for _, v := range stack {
		value.Unref(v)
	}
	return value.Value{}, err
}
