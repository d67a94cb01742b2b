package value

import "testing"

func TestJoinTagGrowsFlatVector(t *testing.T) {
	v := New(TInt, 0)
	v = JoinTag(v, Int(1))
	v = JoinTag(v, Int(2))
	v = JoinTag(v, Int(3))
	if v.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", v.Count())
	}
	for i, want := range []int32{1, 2, 3} {
		if got := v.Elem(int32(i)).TagVal(); got != want {
			t.Errorf("Elem(%d) = %d, want %d", i, got, want)
		}
	}
	Unref(v)
}

func TestJoinObjTakesOwnership(t *testing.T) {
	v := New(TObj, 0)
	v = JoinObj(v, CString("a"))
	v = JoinObj(v, CString("bb"))
	if v.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", v.Count())
	}
	if string(v.Elem(0).Bytes()) != "a" {
		t.Errorf("Elem(0) = %q, want %q", v.Elem(0).Bytes(), "a")
	}
	if string(v.Elem(1).Bytes()) != "bb" {
		t.Errorf("Elem(1) = %q, want %q", v.Elem(1).Bytes(), "bb")
	}
	Unref(v)
}

func TestCutStringSplitsOnDelimiter(t *testing.T) {
	parts := CutString(CString("ab;cd;"), ';')
	if parts.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", parts.Count())
	}
	want := []string{"ab", "cd", ""}
	for i, w := range want {
		if got := string(parts.Elem(int32(i)).Bytes()); got != w {
			t.Errorf("Elem(%d) = %q, want %q", i, got, w)
		}
	}
	Unref(parts)
}

func TestJoinStringInsertsSeparator(t *testing.T) {
	parts := New(TObj, 2)
	parts.SetElem(0, CString("ab"))
	parts.SetElem(1, CString("cd"))
	joined := JoinString(parts, ';')
	if got := string(joined.Bytes()); got != "ab;cd" {
		t.Errorf("JoinString = %q, want %q", got, "ab;cd")
	}
	Unref(joined)
}

func TestJoinStringNoSeparator(t *testing.T) {
	parts := New(TObj, 2)
	parts.SetElem(0, CString("ab"))
	parts.SetElem(1, CString("cd"))
	joined := JoinString(parts, 0)
	if got := string(joined.Bytes()); got != "abcd" {
		t.Errorf("JoinString = %q, want %q", got, "abcd")
	}
	Unref(joined)
}

func TestSqueezeHomogeneousObjBecomesTypedVector(t *testing.T) {
	obj := New(TObj, 3)
	obj.SetElem(0, Int(1))
	obj.SetElem(1, Int(2))
	obj.SetElem(2, Int(3))
	v := Squeeze(obj)
	if v.Type() != TInt {
		t.Fatalf("Type() = %d, want TInt", v.Type())
	}
	if v.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", v.Count())
	}
	Unref(v)
}

func TestSqueezeMixedTypesUnchanged(t *testing.T) {
	obj := New(TObj, 2)
	obj.SetElem(0, Int(1))
	obj.SetElem(1, Chr('a'))
	v := Squeeze(obj)
	if v.Type() != TObj {
		t.Errorf("Squeeze should leave a mixed-type Obj unchanged, got type %d", v.Type())
	}
	Unref(v)
}

func TestSqueezeIdempotent(t *testing.T) {
	v := New(TInt, 1)
	v.SetElem(0, Int(5))
	twice := Squeeze(Squeeze(v))
	if twice.Type() != TInt || twice.Count() != 1 {
		t.Errorf("Squeeze should be idempotent on an already-typed vector")
	}
	Unref(twice)
}

func TestEncodeSymTruncatesToFourBytes(t *testing.T) {
	a := EncodeSym([]byte("abcd"))
	b := EncodeSym([]byte("abcdef"))
	if a != b {
		t.Errorf("EncodeSym should truncate past 4 bytes: %d != %d", a, b)
	}
}

func TestAddSymDedupes(t *testing.T) {
	var vars Value
	x := EncodeSym([]byte("x"))
	y := EncodeSym([]byte("y"))

	i0 := AddSym(&vars, x)
	i1 := AddSym(&vars, y)
	i2 := AddSym(&vars, x) // already present

	if i0 != 0 || i1 != 1 {
		t.Fatalf("AddSym indices = %d,%d want 0,1", i0, i1)
	}
	if i2 != i0 {
		t.Errorf("AddSym should return the existing index for a repeat symbol, got %d want %d", i2, i0)
	}
	if vars.Count() != 2 {
		t.Errorf("Count() = %d, want 2 (no duplicate insert)", vars.Count())
	}
}

func TestDictSetAndGet(t *testing.T) {
	dict := NewSymDict()
	key := EncodeSym([]byte("x"))

	DictSet(&dict, key, Int(42))
	v, ok := DictGet(dict, key)
	if !ok {
		t.Fatalf("DictGet: key not found after DictSet")
	}
	if v.TagVal() != 42 {
		t.Errorf("DictGet value = %d, want 42", v.TagVal())
	}

	DictSet(&dict, key, Int(7))
	v2, ok := DictGet(dict, key)
	if !ok || v2.TagVal() != 7 {
		t.Errorf("DictSet should overwrite existing key, got %v ok=%v", v2, ok)
	}

	if _, ok := DictGet(dict, EncodeSym([]byte("missing"))); ok {
		t.Errorf("DictGet should report false for an absent key")
	}
	Unref(dict)
}

func TestNewCopyRefsObjElements(t *testing.T) {
	src := New(TObj, 1)
	child := New(TInt, 1)
	child.SetElem(0, Int(9))
	src.SetElem(0, child)

	dup := NewCopy(TObj, 1, src)
	// child now has two owners (src and dup); releasing src alone must
	// not free it out from under dup.
	Unref(src)
	if got := dup.Elem(0).Elem(0).TagVal(); got != 9 {
		t.Errorf("copied element = %d, want 9", got)
	}
	Unref(dup)
}
