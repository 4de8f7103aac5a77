package dropcopy

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ismaiel54/fix-counterparty-sim/internal/model"
	"github.com/ismaiel54/fix-counterparty-sim/internal/msg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSession = model.SessionHandle("FIX.4.4:SERVER->CLIENT")

type stubDispatcher struct {
	sent int
	fail bool
}

func (d *stubDispatcher) Send(session model.SessionHandle, m model.Outbound) error {
	if d.fail {
		return fmt.Errorf("%w: %s", model.ErrSessionNotFound, session)
	}
	d.sent++
	return nil
}

type concurrentDispatcher struct{}

func (concurrentDispatcher) Send(model.SessionHandle, model.Outbound) error { return nil }

type stageCounter map[string]int

func (c stageCounter) ObserveDropCopy(stage string) { c[stage]++ }

func TestJournal_RecordsSentMessages(t *testing.T) {
	store := openTestStore(t)
	next := &stubDispatcher{}
	stages := stageCounter{}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	j := NewJournal(next, store, zap.NewNop(),
		WithJournalMetrics(stages),
		WithJournalClock(func() time.Time { return now }),
	)

	require.NoError(t, j.Send(testSession, model.MarketDataSnapshot{MDReqID: "MD1", Symbol: "AAPL"}))
	require.NoError(t, j.Send(testSession, model.SecurityStatus{SecurityStatusReqID: "MD1", Symbol: "AAPL"}))
	assert.Equal(t, 2, next.sent)
	assert.Equal(t, 2, stages[StageAppended])

	events, err := store.ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.MsgTypeMarketDataSnapshot, events[0].MsgType)
	assert.Equal(t, model.MsgTypeSecurityStatus, events[1].MsgType)
	assert.Equal(t, now.UnixMilli(), events[0].CreatedUnixMillis)
}

func TestJournal_SkipsFailedSends(t *testing.T) {
	store := openTestStore(t)
	j := NewJournal(&stubDispatcher{fail: true}, store, zap.NewNop())

	err := j.Send(testSession, model.SecurityStatus{Symbol: "AAPL"})
	assert.ErrorIs(t, err, model.ErrSessionNotFound)

	events, err := store.ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func payloadSeqs(t *testing.T, store *Store) []int64 {
	t.Helper()
	events, err := store.ListUnpublished(context.Background(), 1000)
	require.NoError(t, err)

	seqs := make([]int64, 0, len(events))
	for _, e := range events {
		var m msg.DropCopyMsg
		require.NoError(t, json.Unmarshal([]byte(e.PayloadJSON), &m))
		assert.Equal(t, e.ID, m.Seq, "seq follows the outbox id")
		seqs = append(seqs, m.Seq)
	}
	return seqs
}

func TestJournal_SeqContinuesAfterRestart(t *testing.T) {
	store := openTestStore(t)

	j := NewJournal(&stubDispatcher{}, store, zap.NewNop())
	require.NoError(t, j.Send(testSession, model.SecurityStatus{Symbol: "AAPL"}))

	j = NewJournal(&stubDispatcher{}, store, zap.NewNop())
	require.NoError(t, j.Send(testSession, model.SecurityStatus{Symbol: "AAPL"}))

	assert.Equal(t, []int64{1, 2}, payloadSeqs(t, store))
}

func TestJournal_SeqMatchesAppendOrderAcrossSessions(t *testing.T) {
	store := openTestStore(t)
	j := NewJournal(concurrentDispatcher{}, store, zap.NewNop())

	const sessions, perSession = 8, 25
	var wg sync.WaitGroup
	for s := 0; s < sessions; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			session := model.SessionHandle(fmt.Sprintf("FIX.4.4:SERVER->CLIENT%d", s))
			for i := 0; i < perSession; i++ {
				assert.NoError(t, j.Send(session, model.SecurityStatus{Symbol: "AAPL"}))
			}
		}(s)
	}
	wg.Wait()

	seqs := payloadSeqs(t, store)
	require.Len(t, seqs, sessions*perSession)
	for i, seq := range seqs {
		assert.Equal(t, int64(i+1), seq)
	}
}

func TestJournal_DuplicateLeavesNoSeqGap(t *testing.T) {
	store := openTestStore(t)
	j := NewJournal(&stubDispatcher{}, store, zap.NewNop())

	report := model.ExecutionReport{OrderID: "C1", ExecID: "E1", OrdStatus: model.OrdStatusPendingNew}
	require.NoError(t, j.Send(testSession, report))
	require.NoError(t, j.Send(testSession, report))
	require.NoError(t, j.Send(testSession, model.SecurityStatus{Symbol: "AAPL"}))

	assert.Equal(t, []int64{1, 2}, payloadSeqs(t, store))
}

func TestEvent(t *testing.T) {
	ts := time.UnixMilli(1700000000000)
	newID := func() string { return "generated" }

	report := model.ExecutionReport{
		OrderID:   "C1",
		ExecID:    "E1",
		ExecType:  model.ExecTypeRejected,
		OrdStatus: model.OrdStatusRejected,
		Symbol:    "MSFT",
		Text:      "Symbol must be AAPL",
	}
	ev := Event(testSession, report, ts, newID)
	assert.Equal(t, "E1", ev.EventID)
	assert.Equal(t, "C1", ev.ClOrdID, "rejected reports fall back to the order id")
	assert.Equal(t, "8", ev.OrdStatus)
	assert.Zero(t, ev.Seq)
	assert.Equal(t, ts.UnixMilli(), ev.TsUnixMillis)

	ev = Event(testSession, model.MarketDataRequestReject{MDReqID: "MD9", Text: "x"}, ts, newID)
	assert.Equal(t, "generated", ev.EventID)
	assert.Equal(t, "MD9", ev.MDReqID)
	assert.Equal(t, model.MsgTypeMarketDataRequestReject, ev.MsgType)
}
