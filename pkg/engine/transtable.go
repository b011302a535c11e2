package engine

import (
	"sync/atomic"

	. "github.com/ChizhovVadim/CounterTM/pkg/common"
)

const (
	boundLower = 1 << iota
	boundUpper
)

const boundExact = boundLower | boundUpper

// ttSlot is a lockless entry: check holds key^data, so a torn write by
// another thread makes the slot miss instead of returning a wrong entry.
type ttSlot struct {
	check atomic.Uint64
	data  atomic.Uint64
}

// ttBucket keeps a depth preferred slot and an always replace slot.
type ttBucket [2]ttSlot

// data layout: move 0-15, score 16-31, depth 32-39, bound 40-41, age 48-55
func packEntry(move Move, score, depth, bound int, age uint8) uint64 {
	return uint64(move) |
		uint64(uint16(int16(score)))<<16 |
		uint64(uint8(int8(depth)))<<32 |
		uint64(bound&boundExact)<<40 |
		uint64(age)<<48
}

func entryMove(d uint64) Move { return Move(uint16(d)) }
func entryScore(d uint64) int { return int(int16(uint16(d >> 16))) }
func entryDepth(d uint64) int { return int(int8(uint8(d >> 32))) }
func entryBound(d uint64) int { return int(d>>40) & boundExact }
func entryAge(d uint64) uint8 { return uint8(d >> 48) }

// probe returns the entry data when the slot holds key.
func (s *ttSlot) probe(key uint64) (uint64, bool) {
	var d = s.data.Load()
	return d, s.check.Load()^d == key && entryBound(d) != 0
}

func (s *ttSlot) store(key, d uint64) {
	s.data.Store(d)
	s.check.Store(key ^ d)
}

// transTable ages entries once per move. Entries left from earlier moves
// are replaced first.
type transTable struct {
	megabytes int
	buckets   []ttBucket
	mask      uint64
	age       uint8
}

func newTransTable(megabytes int) *transTable {
	var count = 1
	for count*2*32 <= megabytes<<20 {
		count *= 2
	}
	return &transTable{
		megabytes: megabytes,
		buckets:   make([]ttBucket, count),
		mask:      uint64(count - 1),
	}
}

func (tt *transTable) Size() int {
	return tt.megabytes
}

// NewSearch is called once per move before any thread starts.
func (tt *transTable) NewSearch() {
	tt.age++
}

func (tt *transTable) Clear() {
	tt.age = 0
	for i := range tt.buckets {
		for j := range tt.buckets[i] {
			tt.buckets[i][j].store(0, 0)
		}
	}
}

func (tt *transTable) Read(key uint64) (depth, score, bound int, move Move, ok bool) {
	var bucket = &tt.buckets[key&tt.mask]
	for i := range bucket {
		if d, hit := bucket[i].probe(key); hit {
			return entryDepth(d), entryScore(d), entryBound(d), entryMove(d), true
		}
	}
	return
}

func (tt *transTable) Update(key uint64, depth, score, bound int, move Move) {
	var bucket = &tt.buckets[key&tt.mask]
	var d = packEntry(move, score, depth, bound, tt.age)

	for i := range bucket {
		var old, hit = bucket[i].probe(key)
		if !hit {
			continue
		}
		if depth < entryDepth(old)-3 && bound != boundExact {
			return
		}
		if move == MoveEmpty {
			d = packEntry(entryMove(old), score, depth, bound, tt.age)
		}
		bucket[i].store(key, d)
		return
	}

	var deep = &bucket[0]
	var old = deep.data.Load()
	if entryBound(old) == 0 || entryAge(old) != tt.age || depth >= entryDepth(old) {
		deep.store(key, d)
	} else {
		bucket[1].store(key, d)
	}
}

// Hashfull returns permille of sampled slots written during this move.
func (tt *transTable) Hashfull() int {
	var n = Min(len(tt.buckets), 500)
	var used = 0
	for i := 0; i < n; i++ {
		for j := range tt.buckets[i] {
			var d = tt.buckets[i][j].data.Load()
			if entryBound(d) != 0 && entryAge(d) == tt.age {
				used++
			}
		}
	}
	return used * 1000 / (2 * n)
}

// Mate scores are stored relative to the node and reported relative to the
// root.
func scoreToTT(v, height int) int {
	switch {
	case v >= valueWin:
		return v + height
	case v <= valueLoss:
		return v - height
	}
	return v
}

func scoreFromTT(v, height int) int {
	switch {
	case v >= valueWin:
		return v - height
	case v <= valueLoss:
		return v + height
	}
	return v
}
