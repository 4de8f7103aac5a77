package fixgateway

import (
	"bytes"
	"fmt"

	"github.com/quickfixgo/quickfix"
	"go.uber.org/zap"
)

// NewZapLogFactory routes quickfix session logs into zap. Raw messages are
// logged at debug level with SOH shown as '|'.
func NewZapLogFactory(logger *zap.Logger) quickfix.LogFactory {
	return zapLogFactory{logger: logger.Named("quickfix")}
}

type zapLogFactory struct {
	logger *zap.Logger
}

func (f zapLogFactory) Create() (quickfix.Log, error) {
	return zapLog{logger: f.logger}, nil
}

func (f zapLogFactory) CreateSessionLog(id quickfix.SessionID) (quickfix.Log, error) {
	return zapLog{logger: f.logger.With(zap.String("session", id.String()))}, nil
}

type zapLog struct {
	logger *zap.Logger
}

func (l zapLog) OnIncoming(msg []byte) {
	l.logger.Debug("fix incoming", zap.ByteString("msg", readable(msg)))
}

func (l zapLog) OnOutgoing(msg []byte) {
	l.logger.Debug("fix outgoing", zap.ByteString("msg", readable(msg)))
}

func (l zapLog) OnEvent(text string) {
	l.logger.Info(text)
}

func (l zapLog) OnEventf(format string, a ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, a...))
}

func readable(msg []byte) []byte {
	return bytes.ReplaceAll(msg, []byte{0x01}, []byte{'|'})
}
