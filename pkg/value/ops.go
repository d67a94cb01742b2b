package value

// Constructors, join/cut/squeeze, symbol encoding, and the global
// dictionary, grounded on original_source/src/object.c's k1..k4, kc1/kc2,
// kcstr, ksymdict, encodeSym/addSym, getSlot/findSym, knewcopy, kcpy,
// cutStr/joinStr, joinTag/joinObj, and squeeze.

// Box1 builds a one-element Obj list, taking ownership of x.
func Box1(x Value) Value {
	r := New(TObj, 1)
	r.SetElem(0, x)
	return r
}

// Box2 builds a two-element Obj list (x;y), taking ownership of both.
func Box2(x, y Value) Value {
	r := New(TObj, 2)
	r.SetElem(0, x)
	r.SetElem(1, y)
	return r
}

// Box3 builds a three-element Obj list (x;y;z).
func Box3(x, y, z Value) Value {
	r := New(TObj, 3)
	r.SetElem(0, x)
	r.SetElem(1, y)
	r.SetElem(2, z)
	return r
}

// Box4 builds a four-element Obj list (x;y;z;w) — the same 4-slot shape
// NewLambda gives a Lambda record.
func Box4(x, y, z, w Value) Value {
	r := New(TObj, 4)
	r.SetElem(0, x)
	r.SetElem(1, y)
	r.SetElem(2, z)
	r.SetElem(3, w)
	return r
}

// NewLambda builds a Lambda record: code, vars, consts, source, in the
// 4-slot layout Box4 would give an Obj list, but stamped with type
// TLambda so Value.IsAtom and the printer's Lambda case recognize it.
func NewLambda(code, vars, consts, source Value) Value {
	r := New(TLambda, 4)
	r.SetElem(0, code)
	r.SetElem(1, vars)
	r.SetElem(2, consts)
	r.SetElem(3, source)
	return r
}

// Chr1 builds a one-character Chr vector.
func Chr1(c byte) Value {
	r := New(TChr, 1)
	heap.setElemByte(r.off, 0, c)
	return r
}

// Chr2 builds a two-character Chr vector.
func Chr2(a, b byte) Value {
	r := New(TChr, 2)
	heap.setElemByte(r.off, 0, a)
	heap.setElemByte(r.off, 1, b)
	return r
}

// CString copies a Go string into a fresh Chr vector.
func CString(s string) Value {
	r := New(TChr, int32(len(s)))
	copy(heap.bytes(r.off, int32(len(s))), s)
	return r
}

// NewSymDict builds an empty dictionary: a 2-slot Obj of (keys, values),
// keys a Sym vector and values an Obj vector, positionally aligned.
func NewSymDict() Value {
	return Box2(New(TSym, 0), New(TObj, 0))
}

// NewCopy allocates a vector of type t and n elements, copying the first n
// elements of src. For Obj vectors each copied element is Ref'd, matching
// knewcopy's handling of KObjType.
func NewCopy(t byte, n int32, src Value) Value {
	r := New(t, n)
	switch t {
	case TObj:
		for i := int32(0); i < n; i++ {
			r.SetElem(i, Ref(src.Elem(i)))
		}
	default:
		copy(heap.bytes(r.off, n*int32(widths[t])), heap.bytes(src.off, n*int32(widths[t])))
	}
	return r
}

// extend grows x by addN elements, reusing its backing block in place when
// x has a single owner and its bucket still has room; otherwise it
// allocates a fresh block, copies the existing elements across (Ref'ing
// each one for Obj vectors), and releases x.
func extend(x Value, addN int32) Value {
	oldN := heap.count(x.off)
	newN := oldN + addN
	t := heap.typ(x.off)
	needed := headerSize + int(newN)*widths[t]
	if heap.refc(x.off) == 0 && bucketSize(heap.bucket(x.off-headerSize)) >= needed {
		heap.setCount(x.off, newN)
		return x
	}
	r := New(t, newN)
	if t == TObj {
		for i := int32(0); i < oldN; i++ {
			r.SetElem(i, Ref(x.Elem(i)))
		}
	} else {
		w := oldN * int32(widths[t])
		copy(heap.bytes(r.off, w), heap.bytes(x.off, w))
	}
	Unref(x)
	return r
}

// JoinTag appends the payload of tagged atom y to flat vector x (Chr, Int,
// or Sym), reusing x's buffer when possible. It consumes x.
func JoinTag(x Value, y Value) Value {
	n := heap.count(x.off)
	x = extend(x, 1)
	x.SetElem(n, y)
	return x
}

// JoinObj appends y, an arbitrary Value, to Obj vector x without adjusting
// y's refcount (ownership of y transfers to x). It consumes x.
func JoinObj(x Value, y Value) Value {
	n := heap.count(x.off)
	x = extend(x, 1)
	x.SetElem(n, y)
	return x
}

// CutString splits Chr vector x on delimiter byte c, producing an Obj of
// Chr sub-vectors. Always produces at least one element; runs of the
// delimiter yield empty strings. Consumes x.
func CutString(x Value, c byte) Value {
	src := heap.bytes(x.off, heap.count(x.off))
	n := int32(1)
	for _, b := range src {
		if b == c {
			n++
		}
	}
	r := New(TObj, n)
	start := 0
	idx := int32(0)
	for i := 0; i <= len(src); i++ {
		if i == len(src) || src[i] == c {
			r.SetElem(idx, CString(string(src[start:i])))
			idx++
			start = i + 1
		}
	}
	Unref(x)
	return r
}

// JoinString flattens Obj-of-Chr vector x into one Chr vector, inserting
// delimiter c between elements. c == 0 means no separator. Consumes x.
func JoinString(x Value, c byte) Value {
	n := heap.count(x.off)
	total := int32(0)
	if c != 0 && n > 0 {
		total = n - 1
	}
	for i := int32(0); i < n; i++ {
		total += x.Elem(i).Count()
	}
	r := New(TChr, total)
	dst := heap.bytes(r.off, total)
	pos := 0
	for i := int32(0); i < n; i++ {
		e := x.Elem(i)
		pos += copy(dst[pos:], heap.bytes(e.off, heap.count(e.off)))
		if c != 0 && i < n-1 {
			dst[pos] = c
			pos++
		}
	}
	Unref(x)
	return r
}

// Squeeze converts a generic Obj list of same-typed tagged atoms into a
// homogeneous typed vector of that type; any other Obj (or non-Obj) value
// is returned unchanged, which makes Squeeze idempotent.
func Squeeze(x Value) Value {
	if !x.IsHeap() || heap.typ(x.off) != TObj {
		return x
	}
	n := heap.count(x.off)
	if n == 0 {
		return x
	}
	first := x.Elem(0)
	if !first.IsTagged() {
		return x
	}
	t := first.tag
	for i := int32(1); i < n; i++ {
		if x.Elem(i).tag != t {
			return x
		}
	}
	r := New(t, n)
	for i := int32(0); i < n; i++ {
		r.SetElem(i, x.Elem(i))
	}
	Unref(x)
	return r
}

// EncodeSym packs up to the first 4 bytes of name into a 32-bit
// identifier, truncating longer names (krua does not intern symbols
// properly — see spec.md §1 Non-goals).
func EncodeSym(name []byte) uint32 {
	var sym uint32
	for i := 0; i < 4 && i < len(name); i++ {
		sym |= uint32(name[i]) << (8 * uint(i))
	}
	return sym
}

// FindSym returns the index of sym within Sym vector x, or x's element
// count if not present.
func FindSym(x Value, sym uint32) int32 {
	n := heap.count(x.off)
	for i := int32(0); i < n; i++ {
		if uint32(heap.elemInt(x.off, i)) == sym {
			return i
		}
	}
	return n
}

// AddSym appends sym to *vars iff not already present (allocating *vars on
// its first use) and returns its index, which callers keep within 0..31
// per the per-expression table limits (MaxVars/MaxConsts).
func AddSym(vars *Value, sym uint32) byte {
	if !vars.IsHeap() {
		*vars = New(TSym, 1)
		heap.setElemInt(vars.off, 0, int32(sym))
		return 0
	}
	if i := FindSym(*vars, sym); i != heap.count(vars.off) {
		return byte(i)
	}
	n := heap.count(vars.off)
	*vars = JoinTag(*vars, Sym(sym))
	return byte(n)
}

// DictGet looks up key in dict's Sym/Obj key-value pair, returning a
// Ref'd copy of the value and whether it was found.
func DictGet(dict Value, key uint32) (Value, bool) {
	keys := dict.Elem(0)
	i := FindSym(keys, key)
	if i == heap.count(keys.off) {
		return Value{}, false
	}
	vals := dict.Elem(1)
	return Ref(vals.Elem(i)), true
}

// DictSet stores v under key in *dict, auto-extending the dictionary on a
// new key. The prior value at that key (if any) is released; v is Ref'd
// into the slot, matching the VM's SET_VAR ownership discipline.
func DictSet(dict *Value, key uint32, v Value) {
	keys := dict.Elem(0)
	i := FindSym(keys, key)
	if i == heap.count(keys.off) {
		keys = JoinTag(keys, Sym(key))
		dict.SetElem(0, keys)
		vals := dict.Elem(1)
		vals = JoinObj(vals, Value{})
		dict.SetElem(1, vals)
	}
	vals := dict.Elem(1)
	Unref(vals.Elem(i))
	vals.SetElem(i, Ref(v))
}
