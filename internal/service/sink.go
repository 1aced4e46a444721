package service

import (
	"context"
	"sync"
	"time"

	"winesearcher/parser/internal/domain"
	"winesearcher/parser/internal/repository"

	log "github.com/sirupsen/logrus"
)

// saveTimeout bounds a background sink write so a wedged database cannot pin
// goroutines for the lifetime of a long run.
const saveTimeout = 2 * time.Minute

// SinkHandle tracks one background persistence write. Callers that need
// determinism (tests, shutdown) can Wait; everyone else ignores it.
type SinkHandle struct {
	done chan struct{}
	err  error
}

// Wait blocks until the write finishes and returns its error.
func (h *SinkHandle) Wait() error {
	if h == nil {
		return nil
	}
	<-h.done
	return h.err
}

// sinkScheduler runs repository writes off the orchestration path. A sink
// failure is logged and never fails or blocks a batch.
type sinkScheduler struct {
	repository repository.WineRepository
	wg         sync.WaitGroup
}

func (s *sinkScheduler) schedule(wines []*domain.Wine) *SinkHandle {
	if s.repository == nil || len(wines) == 0 {
		return nil
	}

	handle := &SinkHandle{done: make(chan struct{})}
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(handle.done)

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := s.repository.SaveWinesBatch(ctx, wines); err != nil {
			log.Errorf("❌ Failed to persist %d wines: %v", len(wines), err)
			handle.err = err
			return
		}
		log.Debugf("Persisted %d wines", len(wines))
	}()

	return handle
}

// flush waits for every scheduled write to finish.
func (s *sinkScheduler) flush() {
	s.wg.Wait()
}
