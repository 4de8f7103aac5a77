package dropcopy

import (
	"context"
	"errors"
	"testing"

	"github.com/ismaiel54/fix-counterparty-sim/internal/msg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProducer struct {
	produced []msg.DropCopyMsg
	failOn   string
}

func (p *fakeProducer) ProduceJSON(ctx context.Context, topic, key string, v any) error {
	m := v.(msg.DropCopyMsg)
	if m.EventID == p.failOn {
		return errors.New("broker unavailable")
	}
	p.produced = append(p.produced, m)
	return nil
}

func appendEvents(t *testing.T, store *Store, ids ...string) {
	t.Helper()
	for i, id := range ids {
		_, err := store.Append(context.Background(), msg.DropCopyMsg{
			EventID: id,
			Seq:     int64(i + 1),
			Session: "s",
			MsgType: "8",
		})
		require.NoError(t, err)
	}
}

func TestPublishPending(t *testing.T) {
	store := openTestStore(t)
	appendEvents(t, store, "a", "b")
	producer := &fakeProducer{}
	stages := stageCounter{}
	p := NewPublisher(store, producer, zap.NewNop(), stages)

	n, err := p.PublishPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, producer.produced, 2)
	assert.Equal(t, "a", producer.produced[0].EventID)
	assert.Equal(t, "b", producer.produced[1].EventID)
	assert.Equal(t, 2, stages[StagePublished])

	n, err = p.PublishPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublishPending_StopsAtFailure(t *testing.T) {
	store := openTestStore(t)
	appendEvents(t, store, "a", "b", "c")
	producer := &fakeProducer{failOn: "b"}
	p := NewPublisher(store, producer, zap.NewNop(), nil)

	n, err := p.PublishPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending, err := store.ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "b", pending[0].EventID)

	producer.failOn = ""
	n, err = p.PublishPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
