package service

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// keyedMutex serializes work per key using a fixed set of striped locks.
// Two keys may share a stripe; that only costs some parallelism.
type keyedMutex struct {
	stripes [lockStripes]sync.Mutex
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &k.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
