package value

import "encoding/binary"

// Buddy allocator over a single growable byte arena, grounded on
// original_source/src/object.c's kalloc/_knew/_unref.
//
// Sizes are partitioned into NumBuckets power-of-two buckets starting at
// MinAlloc bytes. Each bucket keeps a singly-linked free list; the "next"
// pointer of a free block lives in the first word of the block's *element
// area* (one header-width past its start), not in the header itself — so a
// block's bucket index, stored in its header, survives being freed and
// reused, exactly as original_source's Design Notes call out.
//
// There is no coalescing: a freed block returns only to the free list of
// the bucket it was allocated from.
const (
	headerSize  = 12       // argc(1) varc(1) bucket(1) typ(1) refc(4) count(4)
	valueSize   = 9        // serialized size of one Obj/Lambda element: tag(1) num(4) off(4)
	minAlloc    = 32        // bucket 0 holds blocks of this many bytes
	numBuckets  = 25        // 32 * 2^24 = 512MiB, the largest block size
	growthBytes = minAlloc << (numBuckets - 1)
	noFree      = ^uint32(0)
)

// widths gives the per-element byte size the allocator uses to size a
// vector's backing block, indexed by type code.
var widths = [6]int{valueSize, 1, 4, 4, valueSize, valueSize}

func bucketFor(totalBytes int) int {
	size := minAlloc
	b := 0
	for size < totalBytes {
		size <<= 1
		b++
	}
	return b
}

func bucketSize(b int) int { return minAlloc << uint(b) }

// arena is the package's single heap; krua, like the original, is a
// single-threaded interpreter, so one unsynchronized global is sufficient
// (and matches §5's "allocator free-lists ... not shared across threads").
type arena struct {
	buf  []byte
	free [numBuckets]uint32
}

var heap = newArena()

func newArena() *arena {
	a := &arena{}
	for i := range a.free {
		a.free[i] = noFree
	}
	return a
}

func (a *arena) growHeap() {
	start := uint32(len(a.buf))
	a.buf = append(a.buf, make([]byte, growthBytes)...)
	top := numBuckets - 1
	a.setBucket(start, byte(top))
	a.setFreeNext(start, a.free[top])
	a.free[top] = start
}

// alloc reserves a block able to hold totalBytes (header + elements) and
// returns the offset of its header.
func (a *arena) alloc(totalBytes int) uint32 {
	b := bucketFor(totalBytes)
	if a.free[b] != noFree {
		x := a.free[b]
		a.free[b] = a.freeNext(x)
		return x
	}

	bb := b + 1
	for bb < numBuckets && a.free[bb] == noFree {
		bb++
	}
	if bb == numBuckets {
		a.growHeap()
		bb = numBuckets - 1
	}

	x := a.free[bb]
	a.free[bb] = a.freeNext(x)
	for cur := bb; cur > b; cur-- {
		half := uint32(bucketSize(cur - 1))
		right := x + half
		a.setBucket(right, byte(cur-1))
		a.setFreeNext(right, a.free[cur-1])
		a.free[cur-1] = right
	}
	a.setBucket(x, byte(b))
	return x
}

// freeBlock returns the block whose element buffer starts at dataOff to its
// bucket's free list. dataOff, not the header offset, is what callers
// (Unref) hold.
func (a *arena) freeBlock(dataOff uint32) {
	blockStart := dataOff - headerSize
	b := a.bucket(blockStart)
	a.setFreeNext(blockStart, a.free[b])
	a.free[b] = blockStart
}

// freeNext/setFreeNext store the free-list link in the first word of a
// free block's element area, leaving the header (and its bucket field)
// untouched.
func (a *arena) freeNext(blockStart uint32) uint32 {
	return binary.LittleEndian.Uint32(a.buf[blockStart+headerSize:])
}

func (a *arena) setFreeNext(blockStart uint32, next uint32) {
	binary.LittleEndian.PutUint32(a.buf[blockStart+headerSize:], next)
}

func (a *arena) setBucket(blockStart uint32, b byte) { a.buf[blockStart+2] = b }
func (a *arena) bucket(blockStart uint32) int        { return int(a.buf[blockStart+2]) }

// Header field access, addressed by data offset (one header-width past the
// block's start, which is what Value.off holds).

func (a *arena) hdr(dataOff uint32) uint32 { return dataOff - headerSize }

func (a *arena) argc(dataOff uint32) byte      { return a.buf[a.hdr(dataOff)] }
func (a *arena) setArgc(dataOff uint32, v byte) { a.buf[a.hdr(dataOff)] = v }
func (a *arena) varc(dataOff uint32) byte      { return a.buf[a.hdr(dataOff)+1] }
func (a *arena) setVarc(dataOff uint32, v byte) { a.buf[a.hdr(dataOff)+1] = v }
func (a *arena) typ(dataOff uint32) byte       { return a.buf[a.hdr(dataOff)+3] }
func (a *arena) setTyp(dataOff uint32, v byte) { a.buf[a.hdr(dataOff)+3] = v }

func (a *arena) refc(dataOff uint32) int32 {
	return int32(binary.LittleEndian.Uint32(a.buf[a.hdr(dataOff)+4:]))
}
func (a *arena) setRefc(dataOff uint32, v int32) {
	binary.LittleEndian.PutUint32(a.buf[a.hdr(dataOff)+4:], uint32(v))
}

func (a *arena) count(dataOff uint32) int32 {
	return int32(binary.LittleEndian.Uint32(a.buf[a.hdr(dataOff)+8:]))
}
func (a *arena) setCount(dataOff uint32, v int32) {
	binary.LittleEndian.PutUint32(a.buf[a.hdr(dataOff)+8:], uint32(v))
}

// Element access.

func (a *arena) elemByte(dataOff uint32, i int32) byte {
	return a.buf[dataOff+uint32(i)]
}
func (a *arena) setElemByte(dataOff uint32, i int32, b byte) {
	a.buf[dataOff+uint32(i)] = b
}

func (a *arena) elemInt(dataOff uint32, i int32) int32 {
	return int32(binary.LittleEndian.Uint32(a.buf[dataOff+uint32(i)*4:]))
}
func (a *arena) setElemInt(dataOff uint32, i int32, v int32) {
	binary.LittleEndian.PutUint32(a.buf[dataOff+uint32(i)*4:], uint32(v))
}

func (a *arena) elemValue(dataOff uint32, i int32) Value {
	p := dataOff + uint32(i)*valueSize
	tag := a.buf[p]
	num := int32(binary.LittleEndian.Uint32(a.buf[p+1:]))
	off := binary.LittleEndian.Uint32(a.buf[p+5:])
	return Value{tag: tag, num: num, off: off}
}
func (a *arena) setElemValue(dataOff uint32, i int32, v Value) {
	p := dataOff + uint32(i)*valueSize
	a.buf[p] = v.tag
	binary.LittleEndian.PutUint32(a.buf[p+1:], uint32(v.num))
	binary.LittleEndian.PutUint32(a.buf[p+5:], v.off)
}

func (a *arena) bytes(dataOff uint32, n int32) []byte {
	return a.buf[dataOff : dataOff+uint32(n)]
}

// New allocates a fresh heap vector of the given type and element count,
// with refc 0 (one implicit owner), matching the ownership contract every
// constructor in this package follows.
func New(t byte, n int32) Value {
	total := headerSize + int(n)*widths[t]
	block := heap.alloc(total)
	off := block + headerSize
	heap.setTyp(off, t)
	heap.setRefc(off, 0)
	heap.setCount(off, n)
	heap.setArgc(off, 0)
	heap.setVarc(off, 0)
	return Value{off: off}
}
