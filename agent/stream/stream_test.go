package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_DeliversEventsInOrder(t *testing.T) {
	s := Run[int](context.Background(), 4, func(_ context.Context, emit Emitter[int]) {
		for i := 0; i < 5; i++ {
			emit(i)
		}
	})

	ctx := context.Background()
	var got []int
	for {
		v, ok := s.Next(ctx)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestRun_CancelStopsProducer(t *testing.T) {
	started := make(chan struct{})
	blocked := make(chan struct{})
	s := Run[int](context.Background(), 0, func(ctx context.Context, emit Emitter[int]) {
		close(started)
		emit(1) // buffer is 0, so this blocks until Next or cancellation
		close(blocked)
	})

	<-started
	s.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, ok := s.Next(ctx)
	require.False(t, ok, "expected no events after cancellation with no consumer ready")

	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("producer goroutine did not observe cancellation")
	}
}

func TestNext_ContextDoneReturnsNotOK(t *testing.T) {
	s := Run[int](context.Background(), 0, func(ctx context.Context, emit Emitter[int]) {
		<-ctx.Done()
	})
	defer s.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok := s.Next(ctx)
	require.False(t, ok)
}
