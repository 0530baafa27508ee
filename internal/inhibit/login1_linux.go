//go:build linux

package inhibit

import (
	"os"
	"sync"

	"github.com/coreos/go-systemd/v22/login1"
	"go.uber.org/zap"
)

const (
	what = "idle:sleep"
	who  = "Tray ping"
	why  = "Network monitoring is active"
	mode = "block"
)

// Login1 holds a systemd-logind inhibitor lock. The lock lives as long as
// the file descriptor returned by logind stays open.
type Login1 struct {
	mu   sync.Mutex
	conn *login1.Conn
	fd   *os.File
	log  *zap.Logger
}

// New connects to logind. When the system bus is unreachable it falls back
// to Nop so monitoring still works.
func New(log *zap.Logger) Inhibitor {
	conn, err := login1.New()
	if err != nil {
		log.Warn("logind unavailable, idle inhibition disabled", zap.Error(err))
		return Nop{}
	}
	return &Login1{conn: conn, log: log.Named("inhibit")}
}

func (l *Login1) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fd != nil {
		return nil
	}
	fd, err := l.conn.Inhibit(what, who, why, mode)
	if err != nil {
		return err
	}
	l.fd = fd
	l.log.Debug("inhibitor acquired", zap.String("what", what))
	return nil
}

func (l *Login1) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fd == nil {
		return nil
	}
	err := l.fd.Close()
	l.fd = nil
	l.log.Debug("inhibitor released")
	return err
}
