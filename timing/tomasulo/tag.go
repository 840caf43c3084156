// Package tomasulo provides a cycle-accurate model of Tomasulo's dynamic
// scheduling algorithm: single in-order issue into reservation stations,
// out-of-order execution, and result broadcast to waiting consumers.
package tomasulo

import (
	"strconv"

	"github.com/sarchlab/tomasim/insts"
)

// StationKind identifies one of the reservation-station pools.
type StationKind uint8

const (
	// KindNone is the kind of the empty tag.
	KindNone StationKind = iota
	// KindAdd holds ADD.D and SUB.D.
	KindAdd
	// KindMult holds MUL.D and DIV.D.
	KindMult
	// KindLoad holds L.D.
	KindLoad
	// KindStore holds S.D.
	KindStore

	numKinds
)

// StationKinds lists the pools in the order stations are scanned.
var StationKinds = []StationKind{KindAdd, KindMult, KindLoad, KindStore}

var kindNames = [numKinds]string{
	KindNone:  "",
	KindAdd:   "Add",
	KindMult:  "Mult",
	KindLoad:  "Load",
	KindStore: "Store",
}

// String returns the pool name used in station tags.
func (k StationKind) String() string {
	if k >= numKinds {
		return "Unknown"
	}
	return kindNames[k]
}

// IsMemory returns true for load and store buffers.
func (k StationKind) IsMemory() bool {
	return k == KindLoad || k == KindStore
}

// KindFor returns the pool an opcode issues into.
func KindFor(op insts.Op) StationKind {
	switch op {
	case insts.OpADDD, insts.OpSUBD:
		return KindAdd
	case insts.OpMULD, insts.OpDIVD:
		return KindMult
	case insts.OpLD:
		return KindLoad
	case insts.OpSD:
		return KindStore
	default:
		return KindNone
	}
}

// Tag names the reservation station that will produce a value.
// Tags compare with ==; the zero value is NoTag.
type Tag struct {
	Kind  StationKind
	Index int
}

// NoTag means the value is already available.
var NoTag = Tag{}

// MakeTag returns the tag of station index in the given pool.
func MakeTag(kind StationKind, index int) Tag {
	if kind == KindNone {
		return NoTag
	}
	return Tag{Kind: kind, Index: index}
}

// IsNone returns true if no producer is pending.
func (t Tag) IsNone() bool {
	return t.Kind == KindNone
}

// String renders the tag as Add0, Mult1, Load0 or Store1. NoTag renders as
// an empty string.
func (t Tag) String() string {
	if t.IsNone() {
		return ""
	}
	return t.Kind.String() + strconv.Itoa(t.Index)
}
