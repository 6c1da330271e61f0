package lsmkv

// engine.go implements the Engine: the top-level read/write path composing
// memtables, frozen memtables, and level-0 sorted tables behind an
// atomically-swapped immutable snapshot.
//
// State-swap discipline grounded on aalhour-rockyardkv's DB type (a
// sync.RWMutex guarding a version pointer, cloned by readers and swapped
// wholesale by writers); the flush sequencing is this module's own, per
// SPEC_FULL.md §4.4.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/lsmtree/lsmkv/internal/bound"
	"github.com/lsmtree/lsmkv/internal/cache"
	"github.com/lsmtree/lsmkv/internal/compression"
	"github.com/lsmtree/lsmkv/internal/iterator"
	"github.com/lsmtree/lsmkv/internal/logging"
	"github.com/lsmtree/lsmkv/internal/memtable"
	"github.com/lsmtree/lsmkv/internal/sstable"
)

// engineState is an immutable snapshot of the engine's layered storage.
// Readers clone the pointer under a read-lock and then work against their
// clone without holding any lock.
type engineState struct {
	currentMemtable *memtable.MemTable
	frozenMemtables []*memtable.MemTable   // oldest first
	l0Tables        []*sstable.SortedTable // oldest first
	nextTableID     uint64
}

func (s *engineState) clone() *engineState {
	return &engineState{
		currentMemtable: s.currentMemtable,
		frozenMemtables: append([]*memtable.MemTable(nil), s.frozenMemtables...),
		l0Tables:        append([]*sstable.SortedTable(nil), s.l0Tables...),
		nextTableID:     s.nextTableID,
	}
}

// Engine is the top-level storage handle. It is safe for concurrent use.
type Engine struct {
	mu    sync.RWMutex
	state *engineState

	opts   Options
	cache  cache.Cache
	logger Logger

	closeOnce sync.Once
	closed    bool
	closedMu  sync.Mutex
}

// Open opens (or initializes) an engine rooted at opts.DataDir.
func Open(opts Options) (*Engine, error) {
	opts = opts.withDefaults()
	if opts.DataDir == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "lsmkv: DataDir must be set")
	}
	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, errors.Wrapf(ErrIO, "lsmkv: create data dir: %v", err)
	}

	var c cache.Cache
	if opts.CacheCapacity > 0 {
		c = cache.New(opts.CacheCapacity)
	}

	eng := &Engine{
		state: &engineState{
			currentMemtable: memtable.New(),
			nextTableID:     1,
		},
		opts:   opts,
		cache:  c,
		logger: opts.Logger,
	}
	return eng, nil
}

// ApproximateMemtableSize returns the approximate byte size of the current
// (unfrozen) memtable. Callers that want periodic flushing can poll this
// against Options.MemtableSizeThreshold and call Sync when it is exceeded;
// the engine itself never triggers a flush automatically.
func (e *Engine) ApproximateMemtableSize() int {
	return e.snapshot().currentMemtable.ApproximateSize()
}

func (e *Engine) snapshot() *engineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) checkOpen() error {
	e.closedMu.Lock()
	defer e.closedMu.Unlock()
	if e.closed {
		return errors.Wrap(ErrClosed, "lsmkv: engine is closed")
	}
	return nil
}

// Put inserts or overwrites key with value.
func (e *Engine) Put(key, value []byte) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if len(key) == 0 {
		return errors.Wrap(ErrInvalidArgument, "lsmkv: empty key")
	}
	if len(value) == 0 {
		return errors.Wrap(ErrInvalidArgument, "lsmkv: empty value")
	}

	stored := value
	if e.opts.Compression != NoCompression {
		compressed, err := compression.Compress(e.opts.Compression, value)
		if err != nil {
			return errors.Wrapf(ErrIO, "lsmkv: compress value: %v", err)
		}
		stored = compressed
	}

	st := e.snapshot()
	st.currentMemtable.Put(key, stored)
	return nil
}

// Delete records a tombstone for key.
func (e *Engine) Delete(key []byte) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if len(key) == 0 {
		return errors.Wrap(ErrInvalidArgument, "lsmkv: empty key")
	}

	st := e.snapshot()
	st.currentMemtable.Put(key, []byte{})
	return nil
}

// Get returns the value for key, whether it was found, and any error.
func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	if err := e.checkOpen(); err != nil {
		return nil, false, err
	}
	if len(key) == 0 {
		return nil, false, errors.Wrap(ErrInvalidArgument, "lsmkv: empty key")
	}

	st := e.snapshot()

	if v, ok := st.currentMemtable.Get(key); ok {
		return e.finishGet(v)
	}
	for i := len(st.frozenMemtables) - 1; i >= 0; i-- {
		if v, ok := st.frozenMemtables[i].Get(key); ok {
			return e.finishGet(v)
		}
	}

	if len(st.l0Tables) == 0 {
		return nil, false, nil
	}

	children := make([]iterator.StorageIterator, 0, len(st.l0Tables))
	for i := len(st.l0Tables) - 1; i >= 0; i-- {
		ti := iterator.NewTableIterator(st.l0Tables[i])
		if err := ti.SeekToKey(key); err != nil {
			e.logger.Errorf(logging.NSTable+"seek table %d for key lookup: %v", st.l0Tables[i].ID(), err)
			return nil, false, errors.Wrapf(ErrIO, "lsmkv: seek table %d: %v", st.l0Tables[i].ID(), err)
		}
		children = append(children, ti)
	}
	mi, err := iterator.NewMergeIterator(children)
	if err != nil {
		return nil, false, err
	}
	if mi.IsValid() && bytes.Equal(mi.Key(), key) {
		return e.finishGet(mi.Value())
	}
	return nil, false, nil
}

// finishGet turns a raw stored value (possibly a tombstone, possibly
// compressed) into the public (value, found, err) result.
func (e *Engine) finishGet(raw []byte) ([]byte, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if e.opts.Compression == NoCompression {
		return raw, true, nil
	}
	v, err := compression.Decompress(e.opts.Compression, raw)
	if err != nil {
		return nil, false, errors.Wrapf(ErrCorruption, "lsmkv: decompress value: %v", err)
	}
	return v, true, nil
}

// Sync freezes the current memtable and flushes it to a new level-0 sorted
// table. The table id is reserved at freeze time, so concurrent Syncs never
// share an id.
func (e *Engine) Sync() error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	e.mu.Lock()
	frozen := e.state.currentMemtable
	next := e.state.clone()
	next.currentMemtable = memtable.New()
	next.frozenMemtables = append(next.frozenMemtables, frozen)
	sstID := next.nextTableID
	next.nextTableID = sstID + 1
	e.state = next
	e.mu.Unlock()

	if frozen.Len() == 0 {
		// Nothing to flush; drop the empty frozen memtable on the next swap
		// below rather than writing a pointless empty table file.
		e.mu.Lock()
		next2 := e.state.clone()
		next2.frozenMemtables = dropOne(next2.frozenMemtables, frozen)
		e.state = next2
		e.mu.Unlock()
		return nil
	}

	e.logger.Infof(logging.NSFlush+"flushing memtable to table %d", sstID)

	b := sstable.New(e.opts.BlockSize)
	it := frozen.Scan(bound.UnboundedBound(), bound.UnboundedBound())
	for it.IsValid() {
		if err := b.Add(it.Key(), it.Value()); err != nil {
			return errors.Wrapf(ErrIO, "lsmkv: build table %d: %v", sstID, err)
		}
		if err := it.Next(); err != nil {
			return errors.Wrapf(ErrIO, "lsmkv: scan memtable for flush: %v", err)
		}
	}

	path := filepath.Join(e.opts.DataDir, fmt.Sprintf("%05d.sst", sstID))
	tbl, err := b.Build(sstID, e.cache, path)
	if err != nil {
		e.logger.Errorf(logging.NSTable+"open freshly written table %d: %v", sstID, err)
		return errors.Wrapf(ErrIO, "lsmkv: write table %d: %v", sstID, err)
	}

	e.mu.Lock()
	final := e.state.clone()
	final.frozenMemtables = dropOne(final.frozenMemtables, frozen)
	final.l0Tables = append(final.l0Tables, tbl)
	e.state = final
	e.mu.Unlock()

	e.logger.Infof(logging.NSFlush+"flushed table %d (%d blocks)", sstID, tbl.NumBlocks())
	return nil
}

func dropOne(mts []*memtable.MemTable, target *memtable.MemTable) []*memtable.MemTable {
	for i, mt := range mts {
		if mt == target {
			out := append([]*memtable.MemTable(nil), mts[:i]...)
			return append(out, mts[i+1:]...)
		}
	}
	return mts
}

// Scan returns a fused, tombstone-filtered sorted iterator over the keys
// between lower and upper, each bound inclusive, exclusive, or unbounded.
func (e *Engine) Scan(lower, upper Bound) (iterator.StorageIterator, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	st := e.snapshot()

	memChildren := []iterator.StorageIterator{st.currentMemtable.Scan(lower, upper)}
	for i := len(st.frozenMemtables) - 1; i >= 0; i-- {
		memChildren = append(memChildren, st.frozenMemtables[i].Scan(lower, upper))
	}
	memMerge, err := iterator.NewMergeIterator(memChildren)
	if err != nil {
		return nil, err
	}

	tableChildren := make([]iterator.StorageIterator, 0, len(st.l0Tables))
	for i := len(st.l0Tables) - 1; i >= 0; i-- {
		ti := iterator.NewTableIterator(st.l0Tables[i])
		if err := seekTableIterator(ti, lower); err != nil {
			e.logger.Errorf(logging.NSTable+"seek table %d for scan: %v", st.l0Tables[i].ID(), err)
			return nil, err
		}
		tableChildren = append(tableChildren, ti)
	}
	tableMerge, err := iterator.NewMergeIterator(tableChildren)
	if err != nil {
		return nil, err
	}

	combined, err := iterator.NewTwoMergeIterator(memMerge, tableMerge)
	if err != nil {
		return nil, err
	}

	lsmIt, err := iterator.NewLsmIterator(combined, upper)
	if err != nil {
		return nil, err
	}

	return newDecompressingIterator(iterator.NewFusedIterator(lsmIt), e.opts.Compression), nil
}

func seekTableIterator(ti *iterator.TableIterator, lower Bound) error {
	switch lower.Kind {
	case Unbounded:
		return ti.SeekToFirst()
	case IncludedBound:
		return ti.SeekToKey(lower.Key)
	case ExcludedBound:
		if err := ti.SeekToKey(lower.Key); err != nil {
			return err
		}
		if ti.IsValid() && bytes.Equal(ti.Key(), lower.Key) {
			return ti.Next()
		}
		return nil
	default:
		return ti.SeekToFirst()
	}
}

// Close marks the engine closed and closes open table file descriptors; the
// block cache is left as it is. It is idempotent.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.closedMu.Lock()
		e.closed = true
		e.closedMu.Unlock()

		st := e.snapshot()
		for _, tbl := range st.l0Tables {
			if cerr := tbl.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}
