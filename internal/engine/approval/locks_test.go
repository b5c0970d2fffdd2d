package approval

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBranchLocks_SerializesSameBranch(t *testing.T) {
	locks := newBranchLocks()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.acquire("feature/a")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen, "same-branch holders must never overlap")
}

func TestBranchLocks_DifferentBranchesDoNotContend(t *testing.T) {
	locks := newBranchLocks()

	unlockA := locks.acquire("feature/a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.acquire("feature/b")
		unlockB()
		close(done)
	}()

	<-done
}

func TestBranchLocks_ReacquireAfterUnlock(t *testing.T) {
	locks := newBranchLocks()

	unlock := locks.acquire("main")
	unlock()

	unlock = locks.acquire("main")
	unlock()
}
