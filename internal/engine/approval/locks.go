package approval

import "sync"

// branchLocks serializes the read-modify-write-commit critical section
// per branch. Commands on different branches proceed fully in parallel;
// only same-branch commands contend.
type branchLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newBranchLocks() *branchLocks {
	return &branchLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the branch and returns the unlock function.
func (b *branchLocks) acquire(branch string) func() {
	b.mu.Lock()
	lock, ok := b.locks[branch]
	if !ok {
		lock = &sync.Mutex{}
		b.locks[branch] = lock
	}
	b.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
