package feed

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRelayPublish(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	relay := NewRedisRelay(rdb, NewHub())

	payload, err := relay.encode([]string{"users/u1/patients"})
	require.NoError(t, err)
	mock.ExpectPublish(Channel, payload).SetVal(1)

	require.NoError(t, relay.Publish(context.Background(), []string{"users/u1/patients"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRelayPublishError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	relay := NewRedisRelay(rdb, NewHub())

	payload, _ := relay.encode([]string{"a"})
	mock.ExpectPublish(Channel, payload).RedisNil()

	assert.Error(t, relay.Publish(context.Background(), []string{"a"}))
}

func TestRedisRelayHandleSkipsOwnOrigin(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	hub := NewHub()
	relay := NewRedisRelay(rdb, hub)
	ch, cancel := hub.Subscribe("a")
	defer cancel()

	own, _ := relay.encode([]string{"a"})
	relay.handle(own)
	select {
	case <-ch:
		t.Fatal("own message replayed")
	default:
	}

	foreign, _ := json.Marshal(relayMessage{Origin: "other", Topics: []string{"a"}})
	relay.handle(string(foreign))
	select {
	case <-ch:
	default:
		t.Fatal("foreign message not replayed")
	}

	relay.handle("not json")
}
