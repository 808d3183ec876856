package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(10, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.ConnectionCount())

	hub.UnregisterClient(clientA)
	assert.Equal(t, 1, hub.ConnectionCount())

	// Unregistering twice must not corrupt the count.
	hub.UnregisterClient(clientA)
	assert.Equal(t, 1, hub.ConnectionCount())

	hub.UnregisterClient(clientB)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(7, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(7, nil)
	assert.Error(t, err)

	// Other users are unaffected.
	_, err = hub.Register(8, nil)
	assert.NoError(t, err)
}

func TestHub_BroadcastAllReachesEveryClient(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(1, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.BroadcastAll([]byte(`{"type":"posts"}`))

	for _, c := range []*Client{clientA, clientB} {
		select {
		case msg := <-c.Send:
			assert.JSONEq(t, `{"type":"posts"}`, string(msg))
		default:
			t.Fatalf("client %d received nothing", c.UserID)
		}
	}
}

func TestHub_BroadcastAllDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(1, nil)
	require.NoError(t, err)

	// Fill the outbound buffer without a reader attached.
	for i := 0; i < cap(client.Send); i++ {
		client.Send <- []byte("fill")
	}

	done := make(chan struct{})
	go func() {
		hub.BroadcastAll([]byte("overflow"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(testEventuallyTimeout):
		t.Fatal("BroadcastAll blocked on a full client buffer")
	}
}

func TestHub_WiringForwardsRedisMessages(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	client, err := hub.Register(3, nil)
	require.NoError(t, err)

	event, err := EncodeFeedEvent(FeedEvent{Action: ActionDelete, PostID: 9})
	require.NoError(t, err)
	require.NoError(t, notifier.PublishFeed(ctx, string(event)))

	assert.Eventually(t, func() bool {
		select {
		case msg := <-client.Send:
			var env envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				return false
			}
			return env.Type == EventName && env.Payload.Action == ActionDelete && env.Payload.PostID == 9
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)
}
