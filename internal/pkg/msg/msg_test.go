package msg

import (
	"testing"

	"github.com/google/uuid"
	"gotest.tools/assert"
)

func TestSubscribeReceivesPublished(t *testing.T) {
	pidPub, err := uuid.NewUUID()
	assert.NilError(t, err)
	pidSub, err := uuid.NewUUID()
	assert.NilError(t, err)

	pubsub := NewPublisher(pidPub)
	ch := pubsub.Subscribe(pidSub, Result)

	pubsub.Publish(Result, 42.0)

	incoming := <-ch
	assert.Equal(t, incoming.Payload(), 42.0)
	assert.Equal(t, incoming.Topic(), Result)
	assert.Equal(t, incoming.PID(), pidPub)
}

func TestTopicsAreIndependent(t *testing.T) {
	pidPub, _ := uuid.NewUUID()
	pidSub, _ := uuid.NewUUID()

	pubsub := NewPublisher(pidPub)
	ch := pubsub.Subscribe(pidSub, Status)

	pubsub.Publish(Result, "ignored")
	pubsub.Publish(Status, "seen")

	incoming := <-ch
	assert.Equal(t, incoming.Payload(), "seen")
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	pidPub, _ := uuid.NewUUID()
	pidSub, _ := uuid.NewUUID()

	pubsub := NewPublisher(pidPub)
	ch := pubsub.Subscribe(pidSub, Status)
	pubsub.Unsubscribe(pidSub)

	_, ok := <-ch
	assert.Assert(t, !ok)
}

func TestPublishSkipsFullSubscriber(t *testing.T) {
	pidPub, _ := uuid.NewUUID()
	pidSub, _ := uuid.NewUUID()

	pubsub := NewPublisher(pidPub)
	pubsub.Subscribe(pidSub, Status)

	// fill the buffer past capacity; Publish must not block
	for i := 0; i < 20; i++ {
		pubsub.Publish(Status, i)
	}
}
