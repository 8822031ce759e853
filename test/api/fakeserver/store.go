/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package fakeserver

import (
	"slices"
	"sync"
)

// collection is an id keyed set of records.
type collection[T any] struct {
	lock  sync.RWMutex
	items map[int32]T
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{
		items: map[int32]T{},
	}
}

func (c *collection[T]) get(id int32) (T, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	item, ok := c.items[id]

	return item, ok
}

func (c *collection[T]) put(id int32, item T) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.items[id] = item
}

func (c *collection[T]) delete(id int32) {
	c.lock.Lock()
	defer c.lock.Unlock()

	delete(c.items, id)
}

// list returns records ordered by id, optionally filtered.
func (c *collection[T]) list(keep func(T) bool) []T {
	c.lock.RLock()
	defer c.lock.RUnlock()

	ids := make([]int32, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	out := make([]T, 0, len(ids))

	for _, id := range ids {
		item := c.items[id]
		if keep == nil || keep(item) {
			out = append(out, item)
		}
	}

	return out
}

func (c *collection[T]) len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return len(c.items)
}
