package diskcache

import (
	"sort"
	"time"
)

// Entry is the in-memory metadata record kept for a single resident key.
type Entry struct {
	// Date is the file's last-known modification time.
	Date time.Time
	// Size is the file's length in bytes (os.FileInfo.Size) at last
	// observation, not its allocated block size on disk.
	Size int64
}

// index is the in-memory mapping from decoded key to Entry, plus the
// aggregate byte count. Every method assumes the owning Cache's mutex is
// already held by the caller; index itself holds no lock.
type index struct {
	entries   map[string]Entry
	byteCount int64
}

func newIndex() index {
	return index{entries: make(map[string]Entry)}
}

// insertOrReplace creates the entry if absent, or adjusts byteCount by
// new_size - old_size if it already exists.
func (ix *index) insertOrReplace(key string, date time.Time, size int64) {
	if old, ok := ix.entries[key]; ok {
		ix.byteCount += size - old.Size
	} else {
		ix.byteCount += size
	}
	ix.entries[key] = Entry{Date: date, Size: size}
}

// remove deletes the entry for key if present, subtracting its size from
// byteCount. Reports whether the key was present.
func (ix *index) remove(key string) (Entry, bool) {
	e, ok := ix.entries[key]
	if !ok {
		return Entry{}, false
	}
	delete(ix.entries, key)
	ix.byteCount -= e.Size
	return e, true
}

func (ix *index) get(key string) (Entry, bool) {
	e, ok := ix.entries[key]
	return e, ok
}

func (ix *index) clear() {
	ix.entries = make(map[string]Entry)
	ix.byteCount = 0
}

func (ix *index) len() int { return len(ix.entries) }

// keysSortedBySizeDesc returns keys ordered largest-first; used by
// trim_to_size. Ties are broken by key order for determinism.
func (ix *index) keysSortedBySizeDesc() []string {
	keys := make([]string, 0, len(ix.entries))
	for k := range ix.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		si, sj := ix.entries[keys[i]].Size, ix.entries[keys[j]].Size
		if si != sj {
			return si > sj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// keysSortedByDateAsc returns keys ordered oldest-first; used by
// trim_to_size_by_date and trim_to_date. Ties are broken by key order for
// determinism.
func (ix *index) keysSortedByDateAsc() []string {
	keys := make([]string, 0, len(ix.entries))
	for k := range ix.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		di, dj := ix.entries[keys[i]].Date, ix.entries[keys[j]].Date
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return keys[i] < keys[j]
	})
	return keys
}
