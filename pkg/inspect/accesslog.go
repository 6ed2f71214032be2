// pkg/inspect/accesslog.go

package inspect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"LitView/pkg/apperr"
	"LitView/pkg/metrics"
)

type logReader struct {
	buffer chan []byte
}

// access log readers, fed without blocking the query
type accessLog struct {
	sync.Mutex
	readers map[uint64]*logReader
	next    uint64
}

// OpenAccessLog subscribes to one line per finished query. Lines are
// dropped when the reader falls behind.
func (e *Engine) OpenAccessLog() (uint64, <-chan []byte) {
	e.alog.Lock()
	defer e.alog.Unlock()
	e.alog.next++
	r := &logReader{buffer: make(chan []byte, 10240)}
	e.alog.readers[e.alog.next] = r
	return e.alog.next, r.buffer
}

func (e *Engine) CloseAccessLog(id uint64) {
	e.alog.Lock()
	defer e.alog.Unlock()
	delete(e.alog.readers, id)
}

func (e *Engine) logit(reqID string, used time.Duration, err error, format string, args ...interface{}) {
	cmd := fmt.Sprintf(format, args...)
	if err != nil {
		cmd += fmt.Sprintf(": %s", err)
	}
	cmd += fmt.Sprintf(" <%.6f>", used.Seconds())
	entry := logger.WithField("req", reqID)
	if used >= e.conf.SlowQuery {
		entry.Infof("slow operation: %s", cmd)
	} else {
		entry.Debugf("%s", cmd)
	}

	e.alog.Lock()
	defer e.alog.Unlock()
	if len(e.alog.readers) == 0 {
		return
	}
	ts := time.Now().Format("2006.01.02 15:04:05.000000")
	line := []byte(fmt.Sprintf("%s [req:%s] %s\n", ts, reqID, cmd))
	for _, r := range e.alog.readers {
		select {
		case r.buffer <- line:
		default:
		}
	}
}

func resultCode(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.KindOf(err).String()
}

// query runs fn on the pool, then records it in the access log and metrics.
func query[T any](ctx context.Context, e *Engine, op string, fn func() (T, error), format string, args ...interface{}) (T, error) {
	start := time.Now()
	reqID := uuid.NewString()
	v, err := run(ctx, e.pool, fn)
	if err != nil && apperr.KindOf(err) == 0 {
		err = apperr.Wrap(apperr.Io, err, op)
	}
	e.logit(reqID, time.Since(start), err, op+" "+format, args...)
	metrics.QueryDone(op, resultCode(err), start)
	return v, err
}
