// Package layout maps virtual qubits onto physical device indices.
//
// A [Layout] is a bijection kept in two maps, one per direction, so lookups
// and [Layout.Swap] are constant time. Every mutating method either keeps the
// bijection intact or fails without changing anything.
package layout

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/errors"
)

// Layout is a bijection between virtual bits and physical indices.
//
// The zero value is not usable - use New, FromRegisters or FromMap.
type Layout struct {
	v2p map[circuit.Bit]int
	p2v map[int]circuit.Bit
}

// New returns an empty layout.
func New() *Layout {
	return &Layout{
		v2p: make(map[circuit.Bit]int),
		p2v: make(map[int]circuit.Bit),
	}
}

// FromRegisters assigns the qubits of the quantum registers to physical
// indices 0, 1, ... in declaration order. Classical registers are skipped.
func FromRegisters(regs ...circuit.Register) *Layout {
	l := New()
	p := 0
	for _, r := range regs {
		if !r.IsQuantum() {
			continue
		}
		for _, b := range r.Bits() {
			l.v2p[b] = p
			l.p2v[p] = b
			p++
		}
	}
	return l
}

// FromMap builds a layout from virtual-to-physical assignments.
func FromMap(m map[circuit.Bit]int) (*Layout, error) {
	l := New()
	for _, v := range slices.SortedFunc(maps.Keys(m), compareBits) {
		if err := l.Set(v, m[v]); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Set maps v to p. Both must be unmapped and p must be non-negative.
func (l *Layout) Set(v circuit.Bit, p int) error {
	if p < 0 {
		return errors.Structural("negative physical index %d", p)
	}
	if old, ok := l.v2p[v]; ok {
		return errors.Structural("%s is already mapped to %d", v, old)
	}
	if old, ok := l.p2v[p]; ok {
		return errors.Structural("physical %d is already holding %s", p, old)
	}
	l.v2p[v] = p
	l.p2v[p] = v
	return nil
}

// Extend maps the qubits of reg onto physicals in order.
// It is used to pad a layout with an ancilla register.
func (l *Layout) Extend(reg circuit.Register, physicals []int) error {
	if len(physicals) != reg.Size {
		return errors.Structural("register %s needs %d physical qubits, got %d",
			reg.Name, reg.Size, len(physicals))
	}
	next := l.Copy()
	for i, p := range physicals {
		if err := next.Set(reg.Bit(i), p); err != nil {
			return err
		}
	}
	*l = *next
	return nil
}

// Physical returns the physical index holding v.
func (l *Layout) Physical(v circuit.Bit) (int, bool) {
	p, ok := l.v2p[v]
	return p, ok
}

// Virtual returns the virtual bit placed on p.
func (l *Layout) Virtual(p int) (circuit.Bit, bool) {
	v, ok := l.p2v[p]
	return v, ok
}

// Swap exchanges the virtual bits on p1 and p2. Both must be mapped.
func (l *Layout) Swap(p1, p2 int) error {
	v1, ok1 := l.p2v[p1]
	v2, ok2 := l.p2v[p2]
	if !ok1 || !ok2 {
		return errors.Structural("cannot swap unmapped physical qubits %d and %d", p1, p2)
	}
	l.p2v[p1], l.p2v[p2] = v2, v1
	l.v2p[v1], l.v2p[v2] = p2, p1
	return nil
}

// WireMapTo returns, for every virtual bit v of l, the bit that reference
// places on l.Physical(v). Physical indices reference does not know map v to
// itself.
func (l *Layout) WireMapTo(reference *Layout) map[circuit.Bit]circuit.Bit {
	wm := make(map[circuit.Bit]circuit.Bit, len(l.v2p))
	for v, p := range l.v2p {
		if r, ok := reference.p2v[p]; ok {
			wm[v] = r
		} else {
			wm[v] = v
		}
	}
	return wm
}

// Copy returns an independent copy.
func (l *Layout) Copy() *Layout {
	return &Layout{v2p: maps.Clone(l.v2p), p2v: maps.Clone(l.p2v)}
}

// Len returns the number of mapped pairs.
func (l *Layout) Len() int { return len(l.v2p) }

// Virtuals returns the mapped virtual bits ordered by register and index.
func (l *Layout) Virtuals() []circuit.Bit {
	return slices.SortedFunc(maps.Keys(l.v2p), compareBits)
}

// Physicals returns the mapped physical indices in ascending order.
func (l *Layout) Physicals() []int {
	return slices.Sorted(maps.Keys(l.p2v))
}

// Validate checks that the two directions agree.
func (l *Layout) Validate() error {
	if len(l.v2p) != len(l.p2v) {
		return errors.Structural("layout maps %d virtual bits onto %d physical qubits", len(l.v2p), len(l.p2v))
	}
	for v, p := range l.v2p {
		if back, ok := l.p2v[p]; !ok || back != v {
			return errors.Structural("layout is not a bijection at %s -> %d", v, p)
		}
	}
	return nil
}

// Equal reports whether two layouts hold the same pairs.
func (l *Layout) Equal(other *Layout) bool {
	return maps.Equal(l.v2p, other.v2p)
}

func (l *Layout) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, p := range l.Physicals() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d: %s", p, l.p2v[p])
	}
	sb.WriteByte('}')
	return sb.String()
}

func compareBits(a, b circuit.Bit) int {
	if c := strings.Compare(a.Register, b.Register); c != 0 {
		return c
	}
	return a.Index - b.Index
}
