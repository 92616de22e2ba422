package session

import (
	"sync"
	"testing"
)

func TestStoreDefaultsToIdle(t *testing.T) {
	s := NewStore()
	if st := s.Get(7); st.Kind != Idle {
		t.Errorf("fresh user must start Idle, got %v", st.Kind)
	}
}

func TestStoreSetAndReset(t *testing.T) {
	s := NewStore()

	s.Set(7, State{Kind: AwaitingBroadcastBody, Recipients: []int64{1, 2}})
	st := s.Get(7)
	if st.Kind != AwaitingBroadcastBody || len(st.Recipients) != 2 {
		t.Fatalf("state not stored: %+v", st)
	}

	s.Reset(7)
	st = s.Get(7)
	if st.Kind != Idle || st.Recipients != nil {
		t.Errorf("Reset must clear everything, got %+v", st)
	}
}

func TestStoreStatesAreIsolatedPerUser(t *testing.T) {
	s := NewStore()
	s.Set(7, State{Kind: AwaitingNote})
	if st := s.Get(8); st.Kind != Idle {
		t.Errorf("user 8 must be unaffected by user 7, got %v", st.Kind)
	}
}

func TestAcquireSerializesTransitions(t *testing.T) {
	s := NewStore()
	const workers = 16

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := s.Acquire(7)
			defer release()
			counter++
			s.Set(7, State{Kind: AwaitingNote})
			s.Reset(7)
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("lock must serialize the critical section, got %d", counter)
	}
	if st := s.Get(7); st.Kind != Idle {
		t.Errorf("final state must be Idle, got %v", st.Kind)
	}
}
