package blockchain

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go/rpc/ws"

	"github.com/hxuan190/pool-sniper/internal/domain"
)

type logReceiver interface {
	Recv(ctx context.Context) (*ws.LogResult, error)
	Unsubscribe()
}

// LogStream turns a websocket log subscription into a channel of notifications.
type LogStream struct {
	sub    logReceiver
	ch     chan domain.LogNotification
	cancel context.CancelFunc
	once   sync.Once

	mu  sync.Mutex
	err error
}

func NewLogStream(ctx context.Context, sub logReceiver) *LogStream {
	ctx, cancel := context.WithCancel(ctx)
	s := &LogStream{
		sub:    sub,
		ch:     make(chan domain.LogNotification, 64),
		cancel: cancel,
	}
	go s.pump(ctx)
	return s
}

func (s *LogStream) pump(ctx context.Context) {
	defer close(s.ch)
	for {
		res, err := s.sub.Recv(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}
		if res == nil {
			continue
		}
		select {
		case s.ch <- convertLogResult(res):
		case <-ctx.Done():
			return
		}
	}
}

func (s *LogStream) Notifications() <-chan domain.LogNotification {
	return s.ch
}

func (s *LogStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *LogStream) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		s.sub.Unsubscribe()
	})
}
