/*
Package lsmkv implements the core read/write path of a log-structured
merge-tree key-value storage engine for byte-string keys and values.

The engine layers a mutable memtable, a list of frozen memtables awaiting
flush, and a list of immutable level-0 sorted tables on disk. Writes land in
the current memtable; Sync freezes the current memtable and materializes it
into a new sorted table. Reads consult the layers newest-to-oldest through a small
algebra of composable sorted iterators.

# Usage

	eng, err := lsmkv.Open(lsmkv.DefaultOptions("/var/lib/mydb"))
	if err != nil {
		// handle err
	}
	defer eng.Close()

	if err := eng.Put([]byte("a"), []byte("1")); err != nil {
		// handle err
	}
	v, ok, err := eng.Get([]byte("a"))

# Concurrency

An Engine is safe for concurrent use by multiple goroutines. Individual
iterators returned by Scan are not safe for concurrent use; each goroutine
should use its own.

# Scope

Write-ahead logging, crash recovery, and compaction into levels above L0 are
not implemented; this package only covers the memtable/L0 read-write path
and the on-disk sorted-table format described in the package's design notes.
*/
package lsmkv
