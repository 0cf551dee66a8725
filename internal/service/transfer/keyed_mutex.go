package transfer

import "sync"

// keyedMutex serializes work per key. Transfers lock on
// (ledger, product) for both sides of a move so concurrent transfers
// touching either ledger cannot interleave their read-modify-write.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) Lock(key string) {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
}

func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	lock := k.locks[key]
	k.mu.Unlock()

	if lock != nil {
		lock.Unlock()
	}
}

// LockPair acquires both keys in lexicographic order so two transfers
// holding a key each can never deadlock waiting on the other. Equal keys
// lock once.
func (k *keyedMutex) LockPair(a, b string) {
	if a == b {
		k.Lock(a)
		return
	}
	if a > b {
		a, b = b, a
	}
	k.Lock(a)
	k.Lock(b)
}

func (k *keyedMutex) UnlockPair(a, b string) {
	if a == b {
		k.Unlock(a)
		return
	}
	k.Unlock(a)
	k.Unlock(b)
}
