package notify

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(4, zap.NewNop().Sugar())

	first, cancelFirst := hub.Subscribe()
	second, cancelSecond := hub.Subscribe()
	defer cancelSecond()
	assert.Equal(t, 2, hub.SubscriberCount())

	event := NewEvent(EventTeamCreated, map[string]string{"teamName": "Alpha"})
	hub.Broadcast(event)

	assert.Equal(t, event, <-first)
	assert.Equal(t, event, <-second)

	cancelFirst()
	cancelFirst()
	assert.Equal(t, 1, hub.SubscriberCount())

	_, open := <-first
	assert.False(t, open)

	hub.Broadcast(event)
	assert.Equal(t, event, <-second)
}

func TestHub_SlowSubscriberDrops(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	hub := NewHub(1, zap.New(core).Sugar())

	events, cancel := hub.Subscribe()
	defer cancel()

	hub.Broadcast(NewEvent(EventTeamCreated, 1))
	hub.Broadcast(NewEvent(EventTeamCreated, 2))

	got := <-events
	assert.Equal(t, 1, got.Payload)
	assert.Len(t, events, 0)
	assert.Equal(t, 1, logs.FilterMessage("dropping event for slow subscriber").Len())
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(1, zap.NewNop().Sugar())
	events, cancel := hub.Subscribe()

	hub.Close()
	cancel()

	_, open := <-events
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount())

	late, _ := hub.Subscribe()
	_, open = <-late
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount())
}

func TestNewHub_DefaultBuffer(t *testing.T) {
	hub := NewHub(0, zap.NewNop().Sugar())
	events, cancel := hub.Subscribe()
	defer cancel()
	assert.Equal(t, DefaultSubscriberBuffer, cap(events))
}

func TestLocalBroker(t *testing.T) {
	hub := NewHub(1, zap.NewNop().Sugar())
	events, cancel := hub.Subscribe()
	defer cancel()

	event := NewEvent(EventTeamJoined, nil)
	require.NoError(t, NewLocalBroker(hub).Publish(context.Background(), event))
	assert.Equal(t, event, <-events)
}

type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) Publish(ctx context.Context, event Event) error {
	return m.Called(ctx, event).Error(0)
}

func TestPublisher_Publish(t *testing.T) {
	t.Run("delivers after request context is cancelled", func(t *testing.T) {
		broker := new(mockBroker)
		publisher, err := NewPublisher(broker, 2, zap.NewNop().Sugar())
		require.NoError(t, err)

		delivered := make(chan struct{})
		event := NewEvent(EventTeamCreated, nil)
		broker.On("Publish", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil
		}), event).Return(nil).Run(func(mock.Arguments) { close(delivered) })

		ctx, cancel := context.WithCancel(context.Background())
		publisher.Publish(ctx, event)
		cancel()

		select {
		case <-delivered:
		case <-time.After(time.Second):
			t.Fatal("event was not delivered")
		}
		require.NoError(t, publisher.Close(time.Second))
		broker.AssertExpectations(t)
	})

	t.Run("broker error is logged", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		broker := new(mockBroker)
		publisher, err := NewPublisher(broker, 1, zap.New(core).Sugar())
		require.NoError(t, err)

		broker.On("Publish", mock.Anything, mock.Anything).Return(errors.New("redis down"))

		publisher.Publish(context.Background(), NewEvent(EventTeamCreated, nil))

		assert.Eventually(t, func() bool {
			return logs.FilterMessage("failed to publish event").Len() == 1
		}, time.Second, 10*time.Millisecond)
		require.NoError(t, publisher.Close(time.Second))
	})

	t.Run("full pool drops without blocking", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		broker := new(mockBroker)
		publisher, err := NewPublisher(broker, 1, zap.New(core).Sugar())
		require.NoError(t, err)

		release := make(chan struct{})
		var once sync.Once
		started := make(chan struct{})
		broker.On("Publish", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) {
			once.Do(func() { close(started) })
			<-release
		})

		publisher.Publish(context.Background(), NewEvent(EventTeamCreated, 1))
		<-started
		publisher.Publish(context.Background(), NewEvent(EventTeamCreated, 2))

		assert.Equal(t, 1, logs.FilterMessage("dropping event").Len())
		close(release)
		require.NoError(t, publisher.Close(time.Second))
		broker.AssertNumberOfCalls(t, "Publish", 1)
	})
}

func streamServer(t *testing.T, hub *Hub, keepAlive time.Duration) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/events", Stream(hub, keepAlive, zap.NewNop().Sugar()))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func openStream(t *testing.T, ctx context.Context, url string) *bufio.Scanner {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewScanner(resp.Body)
}

func readUntil(t *testing.T, scanner *bufio.Scanner, prefix string) string {
	t.Helper()
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, prefix) {
			return line
		}
	}
	t.Fatalf("stream ended before a line starting with %q", prefix)
	return ""
}

func TestStream_DeliversEvents(t *testing.T) {
	hub := NewHub(4, zap.NewNop().Sugar())
	server := streamServer(t, hub, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		assert.Eventually(t, func() bool { return hub.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)
		hub.Broadcast(NewEvent(EventTeamCreated, map[string]string{"teamId": "t1", "teamName": "Alpha"}))
	}()

	scanner := openStream(t, ctx, server.URL+"/events")

	assert.Equal(t, "event:"+EventTeamCreated, readUntil(t, scanner, "event:"))
	data := readUntil(t, scanner, "data:")
	assert.Contains(t, data, `"teamName":"Alpha"`)
	assert.Contains(t, data, `"event":"newTeamAdded"`)

	cancel()
	assert.Eventually(t, func() bool { return hub.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestStream_KeepAlive(t *testing.T) {
	hub := NewHub(4, zap.NewNop().Sugar())
	server := streamServer(t, hub, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scanner := openStream(t, ctx, server.URL+"/events")
	assert.Equal(t, ": keep-alive", readUntil(t, scanner, ":"))
}
