package lsmkv

// scan_iterator.go wraps the internal iterator algebra's output with value
// decompression, mirroring Get's decompress-on-the-way-out behavior so a
// Scan caller never observes a compressed byte string either.

import (
	"github.com/cockroachdb/errors"

	"github.com/lsmtree/lsmkv/internal/compression"
	"github.com/lsmtree/lsmkv/internal/iterator"
)

type decompressingIterator struct {
	inner   iterator.StorageIterator
	typ     compression.Type
	err     error
	decoded []byte
}

func newDecompressingIterator(inner iterator.StorageIterator, typ compression.Type) iterator.StorageIterator {
	if typ == NoCompression {
		return inner
	}
	it := &decompressingIterator{inner: inner, typ: typ}
	it.decodeCurrent()
	return it
}

func (it *decompressingIterator) decodeCurrent() {
	it.decoded = nil
	if it.err != nil || !it.inner.IsValid() {
		return
	}
	v, err := compression.Decompress(it.typ, it.inner.Value())
	if err != nil {
		it.err = errors.Wrapf(ErrCorruption, "lsmkv: decompress scanned value: %v", err)
		return
	}
	it.decoded = v
}

func (it *decompressingIterator) IsValid() bool { return it.err == nil && it.inner.IsValid() }

func (it *decompressingIterator) Key() []byte {
	if !it.IsValid() {
		return nil
	}
	return it.inner.Key()
}

func (it *decompressingIterator) Value() []byte {
	if !it.IsValid() {
		return nil
	}
	return it.decoded
}

func (it *decompressingIterator) Next() error {
	if it.err != nil {
		return it.err
	}
	if err := it.inner.Next(); err != nil {
		it.err = err
		return err
	}
	it.decodeCurrent()
	return it.err
}
