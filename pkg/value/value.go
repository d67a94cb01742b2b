// Package value implements krua's uniform runtime value representation: a
// tagged immediate/heap-pointer word, a reference-counted, buddy-allocated
// heap of homogeneously-typed vectors, and the constructors and structural
// operations (join, cut, squeeze, symbol interning, the global dictionary)
// that the tokenizer, compiler, and VM build on.
//
// A Value is either a tagged immediate (a single character, a 32-bit
// integer, a 4-byte packed symbol, or the distinguished nil) or a pointer
// into the package-level heap arena. The two cases are distinguished by a
// one-byte tag, mirroring the high-byte discriminant of the original K
// machine word without relying on pointer-to-integer punning.
package value

// Type codes, in the order given by the element-width table.
const (
	TObj    byte = 0 // heterogeneous list of Values (recursive)
	TChr    byte = 1 // character vector / string
	TInt    byte = 2 // 32-bit signed integer vector
	TSym    byte = 3 // 32-bit packed symbol vector
	TMonad  byte = 4 // sentinel type; never a heap vector
	TLambda byte = 5 // 4-slot record: bytecode, vars, consts, source
)

// TypeName returns a short debug name for a type code.
func TypeName(t byte) string {
	switch t {
	case TObj:
		return "obj"
	case TChr:
		return "chr"
	case TInt:
		return "int"
	case TSym:
		return "sym"
	case TMonad:
		return "monad"
	case TLambda:
		return "lambda"
	default:
		return "unknown"
	}
}

// Value is krua's single runtime value representation.
//
// tag == 0 means Value is a heap pointer: off is the offset, within the
// package heap arena, of the value's element buffer (one header-width past
// its Header). tag != 0 means Value is a tagged immediate of that type
// code, carrying its payload in num. The zero Value (tag 0, off 0) is the
// distinguished "null" used to signal failure: it is never a legal heap
// pointer because offset 0 is never handed out by the allocator.
type Value struct {
	tag byte
	num int32
	off uint32
}

// Null is the failure sentinel returned by any operation that signals an
// error (the error itself travels as a Go error value; see package kerr).
// It is distinct from Nil,
// the user-visible K nil value.
func Null() Value { return Value{} }

// IsNull reports whether v is the failure sentinel.
func (v Value) IsNull() bool { return v.tag == 0 && v.off == 0 }

// Nil is the tagged Monad value used as K's "no useful result" atom: it
// prints nothing and is returned by assignment statements.
func Nil() Value { return Value{tag: TMonad} }

// IsNil reports whether v is the Nil sentinel.
func (v Value) IsNil() bool { return v.tag == TMonad }

// IsTagged reports whether v is a tagged immediate rather than a heap
// pointer.
func (v Value) IsTagged() bool { return v.tag != 0 }

// IsHeap reports whether v is a (non-null) heap pointer.
func (v Value) IsHeap() bool { return v.tag == 0 && v.off != 0 }

// TagType returns the type code of a tagged immediate; it is 0 (TObj) for
// heap pointers, matching the original TAG_TYPE macro's behavior on
// pointers (whose high byte is always zero).
func (v Value) TagType() byte {
	if v.tag == 0 {
		return TObj
	}
	return v.tag
}

// TagVal returns the payload of a tagged immediate (the low 32 bits of the
// original machine word).
func (v Value) TagVal() int32 { return v.num }

// Type returns the effective type code of v: its tag if tagged, or its
// heap vector's element type otherwise.
func (v Value) Type() byte {
	if v.tag != 0 {
		return v.tag
	}
	if v.off == 0 {
		return TMonad
	}
	return heap.typ(v.off)
}

// IsAtom reports whether v is a scalar: every tagged value is an atom, and
// so is a Lambda, which is heap-allocated but not a list.
func (v Value) IsAtom() bool {
	return v.IsTagged() || (v.IsHeap() && heap.typ(v.off) == TLambda)
}

// Chr returns a tagged character atom.
func Chr(c byte) Value { return Value{tag: TChr, num: int32(c)} }

// Int returns a tagged integer atom.
func Int(i int32) Value { return Value{tag: TInt, num: i} }

// Sym returns a tagged symbol atom from a packed 4-byte identifier.
func Sym(s uint32) Value { return Value{tag: TSym, num: int32(s)} }

// Count returns the element count of a heap vector, or 1 for any atom
// (tagged or Lambda), matching the monadic # (count) primitive's atom
// case.
func (v Value) Count() int32 {
	if v.IsAtom() {
		return 1
	}
	if v.off == 0 {
		return 0
	}
	return heap.count(v.off)
}

// Ref increments v's reference count and returns v unchanged. Tagged
// immediates and the null value are no-ops, since they are not
// heap-allocated.
func Ref(v Value) Value {
	if v.IsHeap() {
		heap.setRefc(v.off, heap.refc(v.off)+1)
	}
	return v
}

// Unref releases a reference to v. If v's refcount was 0 (meaning v had a
// single owner), the block is returned to the allocator, and — if v is an
// Obj or Lambda vector — each element is recursively unreffed first.
// Tagged immediates and the null value are no-ops.
func Unref(v Value) {
	if !v.IsHeap() {
		return
	}
	r := heap.refc(v.off)
	if r != 0 {
		heap.setRefc(v.off, r-1)
		return
	}
	t := heap.typ(v.off)
	if t == TObj || t == TLambda {
		n := heap.count(v.off)
		for i := int32(0); i < n; i++ {
			Unref(heap.elemValue(v.off, i))
		}
	}
	heap.freeBlock(v.off)
}

// Header field accessors, for heap values only.

// Argc returns the declared parameter count of a Lambda (meaningless for
// other types).
func (v Value) Argc() byte { return heap.argc(v.off) }

// SetArgc sets the declared parameter count of a Lambda.
func (v Value) SetArgc(n byte) { heap.setArgc(v.off, n) }

// Varc returns the total local count (parameters + body locals) of a
// Lambda.
func (v Value) Varc() byte { return heap.varc(v.off) }

// SetVarc sets the total local count of a Lambda.
func (v Value) SetVarc(n byte) { heap.setVarc(v.off, n) }

// Elem returns element i of a heap vector as a Value: the raw payload for
// flat types (Chr/Int/Sym), or the stored Value for Obj/Lambda vectors.
func (v Value) Elem(i int32) Value {
	switch heap.typ(v.off) {
	case TChr:
		return Chr(heap.elemByte(v.off, i))
	case TInt:
		return Int(heap.elemInt(v.off, i))
	case TSym:
		return Sym(uint32(heap.elemInt(v.off, i)))
	default:
		return heap.elemValue(v.off, i)
	}
}

// SetElem writes element i of a heap vector. For flat types the payload of
// e is stored; for Obj/Lambda vectors e itself is stored (ownership is not
// adjusted — callers ref/unref as their contract requires).
func (v Value) SetElem(i int32, e Value) {
	switch heap.typ(v.off) {
	case TChr:
		heap.setElemByte(v.off, i, byte(e.num))
	case TInt, TSym:
		heap.setElemInt(v.off, i, e.num)
	default:
		heap.setElemValue(v.off, i, e)
	}
}

// Bytes returns the raw backing bytes of a Chr vector (not a copy): valid
// only while v remains referenced.
func (v Value) Bytes() []byte { return heap.bytes(v.off, v.Count()) }
