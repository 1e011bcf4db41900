package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingModule struct {
	started int32
}

func (m *blockingModule) RunModule(ctx context.Context) error {
	atomic.AddInt32(&m.started, 1)
	<-ctx.Done()
	return nil
}

func (m *blockingModule) Name() string { return "blocking" }

// flakyModule fails a number of times before succeeding.
type flakyModule struct {
	failures int32
	runs     int32
}

func (m *flakyModule) RunModule(ctx context.Context) error {
	if atomic.AddInt32(&m.runs, 1) <= m.failures {
		return errors.New("boom")
	}
	return nil
}

func (m *flakyModule) Name() string { return "flaky" }

func TestEngineRunAndShutdown(t *testing.T) {
	GracefulRetryDelay = 10 * time.Millisecond
	blocking := &blockingModule{}
	flaky := &flakyModule{failures: 2}
	engine := NewEngine([]Module{blocking, flaky}, NewBus(10))

	done := make(chan struct{})
	go func() {
		engine.Run(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&blocking.started) == 1 && atomic.LoadInt32(&flaky.runs) == 3
	}, time.Second, 10*time.Millisecond)

	engine.Shutdown()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestRunModuleStopsRetryingOnCancel(t *testing.T) {
	GracefulRetryDelay = time.Hour
	flaky := &flakyModule{failures: 100}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		RunModuleWithGracefulRestart(ctx, flaky)
		close(done)
	}()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&flaky.runs) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("module restart loop did not stop")
	}
}

func TestNotifierWithoutRedisPublishesLocally(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()
	messages, err := bus.Subscribe(context.Background(), TOPIC_POSTS_CHANGED)
	require.Nil(t, err)

	n := NewNotifier(nil, "unused", bus)
	require.Nil(t, n.NotifyPostsChanged(context.Background(), "INSERT"))

	select {
	case msg := <-messages:
		msg.Ack()
		change := PostsChanged{}
		require.Nil(t, json.Unmarshal(msg.Payload, &change))
		assert.Equal(t, PostsChanged{Source: SourceLocal, Table: "posts", Op: "INSERT"}, change)
	case <-time.After(time.Second):
		t.Fatal("no posts change published")
	}
}

func TestNotifierWithRedisPublishesToChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	sub := client.Subscribe(ctx, "rost.posts.changed")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.Nil(t, err)

	n := NewNotifier(client, "rost.posts.changed", nil)
	require.Nil(t, n.NotifyPostsChanged(ctx, "UPDATE"))

	select {
	case msg := <-sub.Channel():
		change := PostsChanged{}
		require.Nil(t, json.Unmarshal([]byte(msg.Payload), &change))
		assert.Equal(t, PostsChanged{Source: SourceRedis, Table: "posts", Op: "UPDATE"}, change)
	case <-time.After(time.Second):
		t.Fatal("nothing published on redis")
	}
}
