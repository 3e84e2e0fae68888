package feed

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Loader fetches the current snapshot. ok=false means there is nothing to
// deliver yet and the watcher stays silent until the next change.
type Loader[T any] func(ctx context.Context) (snapshot T, ok bool, err error)

// Subscription is a live query. C receives the full snapshot once at start and
// again after every change; it is closed when the subscription ends.
type Subscription[T any] struct {
	C      <-chan T
	cancel context.CancelFunc
	done   chan struct{}
}

// Close stops the subscription and waits for its goroutine to exit.
func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

// Done is closed once the subscription has released its resources.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Watch subscribes to topics and reloads through load on every notification.
// Only the newest snapshot is kept for a slow consumer. Load errors are logged
// and the subscription keeps running.
func Watch[T any](ctx context.Context, hub *Hub, topics []string, load Loader[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	// Subscribe before the first load so a write racing with it is not lost.
	notify, unsubscribe := hub.Subscribe(topics...)

	out := make(chan T, 1)
	done := make(chan struct{})

	deliver := func() {
		v, ok, err := load(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Error().Err(err).Strs("topics", topics).Msg("feed: snapshot load failed")
			}
			return
		}
		if !ok {
			return
		}
		select {
		case <-out:
		default:
		}
		out <- v
	}

	go func() {
		defer close(done)
		defer close(out)
		defer unsubscribe()

		deliver()
		for {
			select {
			case <-ctx.Done():
				return
			case <-notify:
				deliver()
			}
		}
	}()

	return &Subscription[T]{C: out, cancel: cancel, done: done}
}
