package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"notes_system/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisher(w)
	user := &domain.User{ID: "u1", Username: "alice", Password: "secret-hash", Roles: []string{"Employee"}, Active: true}

	require.NoError(t, p.Publish(context.Background(), NewUserEvent(UserCreated, user)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "u1", string(w.msgs[0].Key))
	assert.NotContains(t, string(w.msgs[0].Value), "secret-hash")

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, UserCreated, got.Type)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, []string{"Employee"}, got.Roles)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewKafkaPublisher(&recordingWriter{err: boom})
	err := p.Publish(context.Background(), NewUserEvent(UserDeleted, &domain.User{ID: "u1"}))
	assert.ErrorIs(t, err, boom)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), Event{}))
}

func TestEvent_KeyKeepsUserOnOnePartition(t *testing.T) {
	user := &domain.User{ID: "4b0f7c1e-9d2a-4e55-8f3a-2c6d1e7b9a10", Username: "alice", Roles: []string{"Employee"}, Active: true}
	partitions := []int{0, 1, 2, 3, 4, 5}
	balancer := &kafka.Hash{}

	var got []int
	for _, typ := range []string{UserCreated, UserUpdated, UserDeleted} {
		msg := kafka.Message{Key: []byte(NewUserEvent(typ, user).Key())}
		got = append(got, balancer.Balance(msg, partitions...))
	}
	assert.Equal(t, got[0], got[1])
	assert.Equal(t, got[0], got[2])
}
