package pns

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/herohde/pnsolve/pkg/board"
	"github.com/herohde/pnsolve/pkg/zobrist"
)

// defaultShards is the shard count for both the transposition table and the node
// table. Shard selection uses xxhash over the key bytes, the same mixing-hash idiom
// the retrieved corpus uses for sharded concurrent caches.
const defaultShards = 64

// TTEntry is a resolved proof-number result, memoised by canonical hash and player.
// Only terminal or proven/disproven results are ever stored (spec.md section 3): a
// TT entry is horizon-invariant, so adopting one never needs revisiting.
type TTEntry struct {
	PN, DN, WinLen uint64
}

type ttKey struct {
	hash   zobrist.Hash
	player board.Player
}

func shardIndex(h zobrist.Hash, numShards int) int {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(h))
	return int(xxhash.Sum64(buf[:]) % uint64(numShards))
}

// TranspositionTable is a concurrent map (canonical-hash, player) -> TTEntry,
// sharded for multiple-reader/multiple-writer access. Store is last-writer-wins, per
// the concurrency model: brief shard-level locks are acceptable, selection/back-prop
// never block on it.
type TranspositionTable struct {
	shards []ttShard
}

type ttShard struct {
	mu sync.RWMutex
	m  map[ttKey]TTEntry
}

// NewTranspositionTable returns an empty, sharded transposition table.
func NewTranspositionTable() *TranspositionTable {
	tt := &TranspositionTable{shards: make([]ttShard, defaultShards)}
	for i := range tt.shards {
		tt.shards[i].m = make(map[ttKey]TTEntry)
	}
	return tt
}

func (t *TranspositionTable) shard(h zobrist.Hash) *ttShard {
	return &t.shards[shardIndex(h, len(t.shards))]
}

// Get returns the resolved entry for (hash, player), if present.
func (t *TranspositionTable) Get(h zobrist.Hash, p board.Player) (TTEntry, bool) {
	s := t.shard(h)
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[ttKey{hash: h, player: p}]
	return e, ok
}

// Put stores a resolved entry for (hash, player). Last-writer-wins.
func (t *TranspositionTable) Put(h zobrist.Hash, p board.Player, e TTEntry) {
	s := t.shard(h)
	s.mu.Lock()
	s.m[ttKey{hash: h, player: p}] = e
	s.mu.Unlock()
}

// Len returns the total number of stored entries, for statistics/sizing.
func (t *TranspositionTable) Len() int {
	n := 0
	for i := range t.shards {
		t.shards[i].mu.RLock()
		n += len(t.shards[i].m)
		t.shards[i].mu.RUnlock()
	}
	return n
}

// ntKey identifies a node by (position hash, depth) -- not the canonical hash used
// by the TT, since distinct tree paths reaching the same (position, depth) must
// share one node object for proof-number correctness, but the node's own canonical
// hash (used for its TT lookups) is stored on the Node itself.
type ntKey struct {
	hash  zobrist.Hash
	depth int
}

// NodeTable merges identical (position, depth) pairs onto a single *Node, turning
// the search tree into a DAG. This is not the transposition table: it identifies
// nodes, not their proof values.
type NodeTable struct {
	shards []ntShard
}

type ntShard struct {
	mu sync.RWMutex
	m  map[ntKey]*Node
}

// NewNodeTable returns an empty, sharded node table.
func NewNodeTable() *NodeTable {
	nt := &NodeTable{shards: make([]ntShard, defaultShards)}
	for i := range nt.shards {
		nt.shards[i].m = make(map[ntKey]*Node)
	}
	return nt
}

func (t *NodeTable) shard(h zobrist.Hash) *ntShard {
	return &t.shards[shardIndex(h, len(t.shards))]
}

// GetOrCreate returns the existing node for (hash, depth) if present, else creates
// one via fn and inserts it. Reports whether an existing node was reused (a hit).
func (t *NodeTable) GetOrCreate(h zobrist.Hash, depth int, fn func() *Node) (*Node, bool) {
	key := ntKey{hash: h, depth: depth}
	s := t.shard(h)

	s.mu.RLock()
	if n, ok := s.m[key]; ok {
		s.mu.RUnlock()
		return n, true
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.m[key]; ok {
		return n, true
	}
	n := fn()
	s.m[key] = n
	return n, false
}

// Len returns the total number of distinct nodes, for statistics/sizing.
func (t *NodeTable) Len() int {
	n := 0
	for i := range t.shards {
		t.shards[i].mu.RLock()
		n += len(t.shards[i].m)
		t.shards[i].mu.RUnlock()
	}
	return n
}
