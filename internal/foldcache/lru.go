package foldcache

import "container/list"

// lruList is the active tier: a doubly-linked list of managed folds ordered
// least-recently-used first, plus a map from fold id to list element. Gives
// O(1) lookup, O(1) move-to-front, and LRU-first iteration without relying on
// map iteration order.
type lruList struct {
	ll    *list.List
	index map[string]*list.Element
}

func newLRUList() *lruList {
	return &lruList{
		ll:    list.New(),
		index: make(map[string]*list.Element),
	}
}

func (l *lruList) len() int { return l.ll.Len() }

// get returns the managed fold without touching its recency.
func (l *lruList) get(id string) (*ManagedFold, bool) {
	el, ok := l.index[id]
	if !ok {
		return nil, false
	}
	return el.Value.(*ManagedFold), true
}

// pushMRU inserts at the most-recently-used end.
func (l *lruList) pushMRU(mf *ManagedFold) {
	l.index[mf.fold.ID] = l.ll.PushBack(mf)
}

// moveToMRU marks the fold most recently used.
func (l *lruList) moveToMRU(id string) {
	if el, ok := l.index[id]; ok {
		l.ll.MoveToBack(el)
	}
}

// remove detaches the fold from the list and index.
func (l *lruList) remove(id string) (*ManagedFold, bool) {
	el, ok := l.index[id]
	if !ok {
		return nil, false
	}
	delete(l.index, id)
	return l.ll.Remove(el).(*ManagedFold), true
}

// lruBatch returns up to n folds from the least-recently-used end, optionally
// filtered. The folds are not detached.
func (l *lruList) lruBatch(n int, keep func(*ManagedFold) bool) []*ManagedFold {
	batch := make([]*ManagedFold, 0, n)
	for el := l.ll.Front(); el != nil && len(batch) < n; el = el.Next() {
		mf := el.Value.(*ManagedFold)
		if keep == nil || keep(mf) {
			batch = append(batch, mf)
		}
	}
	return batch
}

// each visits every fold in LRU order.
func (l *lruList) each(fn func(*ManagedFold)) {
	for el := l.ll.Front(); el != nil; el = el.Next() {
		fn(el.Value.(*ManagedFold))
	}
}
