package sqlitekit

import (
	"fmt"
	"sort"
)

// Value is the closed sum type of column values this engine understands.
// Grounded on the teacher's Value interface in values.go, replaced here with
// a closed set of concrete types (rather than a single struct wrapping a
// serial type and raw bytes) so comparisons and arithmetic can switch on Go
// type instead of re-deriving a ValueType from a stored serial code.
type Value interface {
	fmt.Stringer
	isValue()
}

type Null struct{}
type Integer int64
type Real float64
type Text string
type Blob []byte

func (Null) isValue()    {}
func (Integer) isValue() {}
func (Real) isValue()    {}
func (Text) isValue()    {}
func (Blob) isValue()    {}

func (Null) String() string    { return "null" }
func (v Integer) String() string { return fmt.Sprintf("%d", int64(v)) }
func (v Real) String() string {
	return fmt.Sprintf("%g", float64(v))
}
func (v Text) String() string { return string(v) }
func (v Blob) String() string { return fmt.Sprintf("%x", []byte(v)) }

// ordering is the result of comparing two Values for search/WHERE purposes.
type ordering int

const (
	orderLess ordering = iota
	orderEqual
	orderGreater
	orderIncomparable
)

// compareValues implements spec.md's typed, partial ordering: numerics
// compare numerically with integer/real promotion, text compares
// byte-wise with text, blob compares byte-wise with blob, and any other
// pairing (including Null on either side) is incomparable. Callers that need the B-tree search relaxation (treat
// incomparable as equal) apply that themselves — see compareForSearch.
func compareValues(a, b Value) ordering {
	switch av := a.(type) {
	case Integer:
		switch bv := b.(type) {
		case Integer:
			return compareOrdered(int64(av), int64(bv))
		case Real:
			return compareOrdered(float64(av), float64(bv))
		}
	case Real:
		switch bv := b.(type) {
		case Integer:
			return compareOrdered(float64(av), float64(bv))
		case Real:
			return compareOrdered(float64(av), float64(bv))
		}
	case Text:
		if bv, ok := b.(Text); ok {
			return compareOrdered(string(av), string(bv))
		}
	case Blob:
		if bv, ok := b.(Blob); ok {
			return compareOrdered(string(av), string(bv))
		}
	}
	return orderIncomparable
}

// compareForSearch applies §4.4.2's deliberate relaxation: incomparable
// pairs are treated as equal so B-tree range searches still terminate and
// make forward progress. This must never be used for WHERE evaluation.
func compareForSearch(a, b Value) ordering {
	o := compareValues(a, b)
	if o == orderIncomparable {
		return orderEqual
	}
	return o
}

type ordered interface {
	~int64 | ~float64 | ~string
}

func compareOrdered[T ordered](a, b T) ordering {
	switch {
	case a < b:
		return orderLess
	case a > b:
		return orderGreater
	default:
		return orderEqual
	}
}

// binarySearchRange returns the contiguous index range [start, end) of
// entries whose key compares equal to needle under compareForSearch, and
// the insertion point when no entry matches. Ported from
// sqlite_storage/page/index_page.rs's binary_search_range, which is the
// origin of the incomparable-as-equal tie-break rule in §4.4.2.
func binarySearchRange(n int, keyAt func(int) Value, needle Value) (start, end int, found bool) {
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		switch compareForSearch(keyAt(mid), needle) {
		case orderLess:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	start = lo
	if start >= n || compareForSearch(keyAt(start), needle) != orderEqual {
		return start, start, false
	}
	hi = n
	lo2 := start
	for lo2 < hi {
		mid := (lo2 + hi) / 2
		if compareForSearch(keyAt(mid), needle) == orderEqual {
			lo2 = mid + 1
		} else {
			hi = mid
		}
	}
	return start, lo2, true
}

// sortRowids is used after an index probe to satisfy §4.4.2's "ascending
// order" contract when cell storage order doesn't already guarantee it.
func sortRowids(rowids []int64) {
	sort.Slice(rowids, func(i, j int) bool { return rowids[i] < rowids[j] })
}
