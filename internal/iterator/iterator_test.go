package iterator

// sliceIterator is a minimal StorageIterator over an in-memory sorted
// slice, used across this package's tests so each test can describe its
// input data declaratively instead of building real memtables/tables.
type sliceIterator struct {
	keys, values [][]byte
	idx          int
}

func newSliceIterator(kvs [][2]string) *sliceIterator {
	si := &sliceIterator{}
	for _, kv := range kvs {
		si.keys = append(si.keys, []byte(kv[0]))
		si.values = append(si.values, []byte(kv[1]))
	}
	return si
}

func (s *sliceIterator) IsValid() bool { return s.idx < len(s.keys) }
func (s *sliceIterator) Key() []byte {
	if !s.IsValid() {
		return nil
	}
	return s.keys[s.idx]
}
func (s *sliceIterator) Value() []byte {
	if !s.IsValid() {
		return nil
	}
	return s.values[s.idx]
}
func (s *sliceIterator) Next() error {
	if s.IsValid() {
		s.idx++
	}
	return nil
}

func collect(it StorageIterator) ([][2]string, error) {
	var out [][2]string
	for it.IsValid() {
		out = append(out, [2]string{string(it.Key()), string(it.Value())})
		if err := it.Next(); err != nil {
			return out, err
		}
	}
	return out, nil
}
