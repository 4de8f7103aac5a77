package dropcopy

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/ismaiel54/fix-counterparty-sim/internal/msg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppend_Idempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	event := msg.DropCopyMsg{
		EventID:      "exec-1",
		Session:      "FIX.4.4:SERVER->CLIENT",
		MsgType:      "8",
		ClOrdID:      "C1",
		TsUnixMillis: 1000,
	}

	inserted, err := store.Append(ctx, event)
	require.NoError(t, err)
	assert.True(t, inserted, "first append should insert")

	event.TsUnixMillis = 2000
	inserted, err = store.Append(ctx, event)
	require.NoError(t, err)
	assert.False(t, inserted, "same event id should be ignored")

	unpublished, err := store.ListUnpublished(ctx, 100)
	require.NoError(t, err)
	require.Len(t, unpublished, 1)
	assert.Equal(t, "exec-1", unpublished[0].EventID)
	assert.Equal(t, msg.TopicDropCopy, unpublished[0].Topic)
	assert.Equal(t, "FIX.4.4:SERVER->CLIENT", unpublished[0].Key)

	var stored msg.DropCopyMsg
	require.NoError(t, json.Unmarshal([]byte(unpublished[0].PayloadJSON), &stored))
	assert.Equal(t, int64(1000), stored.TsUnixMillis)
}

func TestMarkPublished(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		_, err := store.Append(ctx, msg.DropCopyMsg{EventID: id, Session: "s", MsgType: "W"})
		require.NoError(t, err)
	}

	require.NoError(t, store.MarkPublished(ctx, "a", 2000))

	unpublished, err := store.ListUnpublished(ctx, 100)
	require.NoError(t, err)
	require.Len(t, unpublished, 1)
	assert.Equal(t, "b", unpublished[0].EventID)
}

func TestAppend_StampsSeqFromOutboxID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "a", "c"} {
		_, err := store.Append(ctx, msg.DropCopyMsg{EventID: id, Seq: 99, Session: "s", MsgType: "W"})
		require.NoError(t, err)
	}

	unpublished, err := store.ListUnpublished(ctx, 100)
	require.NoError(t, err)
	require.Len(t, unpublished, 3)
	for i, e := range unpublished {
		var stored msg.DropCopyMsg
		require.NoError(t, json.Unmarshal([]byte(e.PayloadJSON), &stored))
		assert.Equal(t, int64(i+1), e.ID)
		assert.Equal(t, e.ID, stored.Seq)
	}
}
