package fixgateway

import (
	"fmt"
	"strconv"

	"github.com/ismaiel54/fix-counterparty-sim/internal/model"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/fix44/marketdatarequest"
	"github.com/quickfixgo/fix44/marketdatarequestreject"
	"github.com/quickfixgo/fix44/marketdatasnapshotfullrefresh"
	"github.com/quickfixgo/fix44/newordersingle"
	"github.com/quickfixgo/fix44/securitystatus"
	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/tag"
	"github.com/shopspring/decimal"
)

const mdEntryTimeFormat = "15:04:05.000"

// scaleOf is the number of fractional digits d carries, so quantities and
// prices go out exactly as they came in.
func scaleOf(d decimal.Decimal) int32 {
	if e := d.Exponent(); e < 0 {
		return -e
	}
	return 0
}

// DecodeLogon extracts the credentials of a Logon. Absent fields stay empty.
func DecodeLogon(msg *quickfix.Message) model.LogonAttempt {
	var attempt model.LogonAttempt
	if v, err := msg.Body.GetString(tag.Username); err == nil {
		attempt.Username = v
	}
	if v, err := msg.Body.GetString(tag.Password); err == nil {
		attempt.Password = v
	}
	return attempt
}

// DecodeNewOrder converts a NewOrderSingle. A missing field is returned as the
// quickfix reject for that tag.
func DecodeNewOrder(msg newordersingle.NewOrderSingle) (model.NewOrderRequest, quickfix.MessageRejectError) {
	var req model.NewOrderRequest

	clOrdID, err := msg.GetClOrdID()
	if err != nil {
		return req, err
	}
	side, err := msg.GetSide()
	if err != nil {
		return req, err
	}
	symbol, err := msg.GetSymbol()
	if err != nil {
		return req, err
	}
	orderQty, err := msg.GetOrderQty()
	if err != nil {
		return req, err
	}
	price, err := msg.GetPrice()
	if err != nil {
		return req, err
	}
	account, err := msg.GetAccount()
	if err != nil {
		return req, err
	}
	ordType, err := msg.GetOrdType()
	if err != nil {
		return req, err
	}
	timeInForce, err := msg.GetTimeInForce()
	if err != nil {
		return req, err
	}

	return model.NewOrderRequest{
		ClOrdID:     clOrdID,
		Side:        model.Side(side),
		Symbol:      symbol,
		OrderQty:    orderQty,
		Price:       price,
		Account:     account,
		OrdType:     model.OrdType(ordType),
		TimeInForce: model.TimeInForce(timeInForce),
	}, nil
}

// DecodeMarketDataRequest converts a MarketDataRequest
func DecodeMarketDataRequest(msg marketdatarequest.MarketDataRequest) (model.MarketDataRequest, quickfix.MessageRejectError) {
	var req model.MarketDataRequest

	mdReqID, err := msg.GetMDReqID()
	if err != nil {
		return req, err
	}
	depth, err := msg.GetMarketDepth()
	if err != nil {
		return req, err
	}
	updateType, err := msg.GetMDUpdateType()
	if err != nil {
		return req, err
	}
	ut, convErr := strconv.Atoi(string(updateType))
	if convErr != nil {
		return req, quickfix.ValueIsIncorrect(tag.MDUpdateType)
	}

	var symbols []string
	if group, err := msg.GetNoRelatedSym(); err == nil {
		symbols = make([]string, 0, group.Len())
		for i := 0; i < group.Len(); i++ {
			sym, err := group.Get(i).GetSymbol()
			if err != nil {
				return req, err
			}
			symbols = append(symbols, sym)
		}
	}

	return model.MarketDataRequest{
		MDReqID:        mdReqID,
		MarketDepth:    depth,
		MDUpdateType:   model.MDUpdateType(ut),
		RelatedSymbols: symbols,
	}, nil
}

// Encode converts an outbound message into its FIX 4.4 form
func Encode(m model.Outbound) (quickfix.Messagable, error) {
	switch v := m.(type) {
	case model.ExecutionReport:
		return encodeExecutionReport(v), nil
	case model.MarketDataSnapshot:
		return encodeSnapshot(v), nil
	case model.SecurityStatus:
		return encodeSecurityStatus(v), nil
	case model.MarketDataRequestReject:
		return encodeMarketDataRequestReject(v), nil
	default:
		return nil, fmt.Errorf("cannot encode %T", m)
	}
}

func encodeExecutionReport(r model.ExecutionReport) executionreport.ExecutionReport {
	msg := executionreport.New(
		field.NewOrderID(r.OrderID),
		field.NewExecID(r.ExecID),
		field.NewExecType(enum.ExecType(r.ExecType)),
		field.NewOrdStatus(enum.OrdStatus(r.OrdStatus)),
		field.NewSide(enum.Side(r.Side)),
		field.NewLeavesQty(r.LeavesQty, scaleOf(r.LeavesQty)),
		field.NewCumQty(r.CumQty, scaleOf(r.CumQty)),
		field.NewAvgPx(r.AvgPx, scaleOf(r.AvgPx)),
	)

	if r.Accepted() {
		msg.SetClOrdID(r.ClOrdID)
		msg.SetAccount(r.Account)
		msg.SetOrderQty(r.OrderQty, scaleOf(r.OrderQty))
		msg.SetPrice(r.Price, scaleOf(r.Price))
		msg.SetOrdType(enum.OrdType(r.OrdType))
		msg.SetTimeInForce(enum.TimeInForce(r.TimeInForce))
	}
	msg.SetSymbol(r.Symbol)
	if r.Text != "" {
		msg.SetText(r.Text)
	}
	msg.SetTransactTime(r.TransactTime)

	return msg
}

func encodeSnapshot(s model.MarketDataSnapshot) marketdatasnapshotfullrefresh.MarketDataSnapshotFullRefresh {
	msg := marketdatasnapshotfullrefresh.New()
	msg.SetMDReqID(s.MDReqID)
	msg.SetSymbol(s.Symbol)

	entries := marketdatasnapshotfullrefresh.NewNoMDEntriesRepeatingGroup()
	for _, e := range s.Entries {
		row := entries.Add()
		row.SetMDEntryType(enum.MDEntryType(e.Type))
		row.SetMDEntryPx(e.Price, scaleOf(e.Price))
		row.SetMDEntrySize(e.Size, scaleOf(e.Size))
		row.SetMDEntryTime(e.Time.UTC().Format(mdEntryTimeFormat))
		row.SetMDEntryPositionNo(e.PositionNo)
	}
	msg.SetNoMDEntries(entries)

	return msg
}

func encodeSecurityStatus(s model.SecurityStatus) securitystatus.SecurityStatus {
	msg := securitystatus.New()
	msg.SetSecurityStatusReqID(s.SecurityStatusReqID)
	msg.SetSymbol(s.Symbol)
	msg.SetSecurityTradingStatus(enum.SecurityTradingStatus(strconv.Itoa(int(s.TradingStatus))))
	return msg
}

func encodeMarketDataRequestReject(r model.MarketDataRequestReject) marketdatarequestreject.MarketDataRequestReject {
	msg := marketdatarequestreject.New(field.NewMDReqID(r.MDReqID))
	msg.SetMDReqRejReason(enum.MDReqRejReason(r.Reason))
	msg.SetText(r.Text)
	return msg
}
