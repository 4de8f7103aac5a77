package msg

// TopicDropCopy carries a copy of every message the acceptor sent
const TopicDropCopy = "fix.dropcopy"

// DropCopyMsg is the drop copy of one outbound FIX message. Order fields are
// set for execution reports, MDReqID for market data responses.
type DropCopyMsg struct {
	EventID      string `json:"event_id"`
	Seq          int64  `json:"seq"`
	Session      string `json:"session"`
	MsgType      string `json:"msg_type"`
	ClOrdID      string `json:"cl_ord_id,omitempty"`
	OrderID      string `json:"order_id,omitempty"`
	ExecID       string `json:"exec_id,omitempty"`
	OrdStatus    string `json:"ord_status,omitempty"`
	MDReqID      string `json:"md_req_id,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
	Text         string `json:"text,omitempty"`
	TsUnixMillis int64  `json:"ts_unix_millis"`
}

// Key partitions drop copies by session so per-session order is kept
func (m DropCopyMsg) Key() string {
	return m.Session
}

// Record represents a consumed Kafka record
type Record struct {
	Topic     string
	Key       string
	Value     []byte
	Partition int32
	Offset    int64
	Timestamp int64
}
