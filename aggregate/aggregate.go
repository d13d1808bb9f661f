// Package aggregate folds decoded J1939 frames into a hierarchical frequency
// structure (source address -> destination address -> PGN -> count) and a
// side table of the latest ISO Address Claim (NAME) payload per source
// address. Intended for batch summarizing of one captured log, structures
// here are not safe for concurrent use.
package aggregate

import (
	"sort"

	j1939 "github.com/truckbus/go-j1939-candump"
)

// Tree counts observed messages by source address, destination address and
// PGN. It only contains keys that were actually observed, every count is at
// least 1. Counts are order-independent: feeding the same frames in any order
// produces an equal tree.
type Tree map[uint8]map[uint8]map[uint32]uint64

func NewTree() Tree {
	return make(Tree)
}

// Add increments count for given header path, creating intermediate levels on
// first occurrence.
func (t Tree) Add(h j1939.Header) {
	t.add(h.Source, h.Destination, h.PGN, 1)
}

func (t Tree) add(src uint8, dst uint8, pgn uint32, count uint64) {
	destinations, ok := t[src]
	if !ok {
		destinations = make(map[uint8]map[uint32]uint64)
		t[src] = destinations
	}
	pgns, ok := destinations[dst]
	if !ok {
		pgns = make(map[uint32]uint64)
		destinations[dst] = pgns
	}
	pgns[pgn] += count
}

// Merge adds all counts from other into t. Trees built from two halves of a
// log and merged equal the tree built from the whole log.
func (t Tree) Merge(other Tree) {
	for src, destinations := range other {
		for dst, pgns := range destinations {
			for pgn, count := range pgns {
				t.add(src, dst, pgn, count)
			}
		}
	}
}

// Count returns how many messages were observed for given path, 0 when the
// path was never observed.
func (t Tree) Count(src uint8, dst uint8, pgn uint32) uint64 {
	return t[src][dst][pgn]
}

// Total returns number of messages recorded into the tree.
func (t Tree) Total() uint64 {
	var total uint64
	for _, destinations := range t {
		for _, pgns := range destinations {
			for _, count := range pgns {
				total += count
			}
		}
	}
	return total
}

// Sources returns observed source addresses in ascending order.
func (t Tree) Sources() []uint8 {
	result := make([]uint8, 0, len(t))
	for src := range t {
		result = append(result, src)
	}
	sortUint8s(result)
	return result
}

// Destinations returns observed destination addresses for given source in
// ascending order.
func (t Tree) Destinations(src uint8) []uint8 {
	destinations := t[src]
	result := make([]uint8, 0, len(destinations))
	for dst := range destinations {
		result = append(result, dst)
	}
	sortUint8s(result)
	return result
}

// PGNs returns observed PGNs for given source and destination in ascending
// order.
func (t Tree) PGNs(src uint8, dst uint8) []uint32 {
	pgns := t[src][dst]
	result := make([]uint32, 0, len(pgns))
	for pgn := range pgns {
		result = append(result, pgn)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// NameTable holds most recently observed ISO Address Claim (PGN 60928)
// payload per source address. Later claims overwrite earlier ones, so unlike
// Tree its content depends on processing order.
type NameTable map[uint8][]byte

func NewNameTable() NameTable {
	return make(NameTable)
}

// Sources returns source addresses with an observed claim in ascending order.
func (n NameTable) Sources() []uint8 {
	result := make([]uint8, 0, len(n))
	for src := range n {
		result = append(result, src)
	}
	sortUint8s(result)
	return result
}

// Record decodes one frame and folds it into the tree, and into the name
// table when the frame is an ISO Address Claim. This is the only mutation of
// either structure, call it once per log line in log order.
func Record(tree Tree, names NameTable, frame j1939.Frame) {
	header := frame.Header()
	tree.Add(header)

	if j1939.PGN(header.PGN) == j1939.PGNISOAddressClaim {
		data := make([]byte, len(frame.Data))
		copy(data, frame.Data)
		names[header.Source] = data
	}
}

func sortUint8s(v []uint8) {
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
}
