package dropcopy

import (
	"fmt"
	"sort"

	"github.com/ismaiel54/fix-counterparty-sim/internal/model"
	"github.com/ismaiel54/fix-counterparty-sim/internal/msg"
)

// Verifier checks a drop copy stream: each order gets exactly one execution
// report, and every security status follows the snapshot of its request.
// Redelivered events, recognised by event id, are ignored.
type Verifier struct {
	seen       map[string]struct{}
	reports    map[string]int
	firstExec  map[string]string
	snapshots  map[string]struct{}
	violations []string
	total      int
}

// Result summarises a verification run
type Result struct {
	Total              int
	UniqueOrders       int
	Duplicates         map[string]int
	FirstExecIDs       map[string]string
	OrderingViolations []string
}

// OK reports whether no duplicates or ordering violations were found
func (r Result) OK() bool {
	return len(r.Duplicates) == 0 && len(r.OrderingViolations) == 0
}

func NewVerifier() *Verifier {
	return &Verifier{
		seen:      make(map[string]struct{}),
		reports:   make(map[string]int),
		firstExec: make(map[string]string),
		snapshots: make(map[string]struct{}),
	}
}

// Observe records one drop copy
func (v *Verifier) Observe(m msg.DropCopyMsg) {
	if _, dup := v.seen[m.EventID]; dup {
		return
	}
	v.seen[m.EventID] = struct{}{}
	v.total++

	switch m.MsgType {
	case model.MsgTypeExecutionReport:
		key := m.Session + "|" + m.ClOrdID
		v.reports[key]++
		if _, ok := v.firstExec[key]; !ok {
			v.firstExec[key] = m.ExecID
		}
	case model.MsgTypeMarketDataSnapshot:
		v.snapshots[m.Session+"|"+m.MDReqID] = struct{}{}
	case model.MsgTypeSecurityStatus:
		if _, ok := v.snapshots[m.Session+"|"+m.MDReqID]; !ok {
			v.violations = append(v.violations,
				fmt.Sprintf("session %s: security status for %s before its snapshot", m.Session, m.MDReqID))
		}
	}
}

// Result returns the findings so far
func (v *Verifier) Result() Result {
	res := Result{
		Total:              v.total,
		UniqueOrders:       len(v.reports),
		Duplicates:         make(map[string]int),
		FirstExecIDs:       make(map[string]string),
		OrderingViolations: append([]string(nil), v.violations...),
	}
	for key, count := range v.reports {
		if count > 1 {
			res.Duplicates[key] = count
			res.FirstExecIDs[key] = v.firstExec[key]
		}
	}
	sort.Strings(res.OrderingViolations)
	return res
}
