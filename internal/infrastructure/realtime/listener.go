package realtime

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	listenerBuffer = 16
	keepAlive      = 30 * time.Second
)

type listener struct {
	send chan []byte
}

func newListener() *listener {
	return &listener{send: make(chan []byte, listenerBuffer)}
}

// offer queues data without blocking the publisher.
func (l *listener) offer(data []byte) bool {
	select {
	case l.send <- data:
		return true
	default:
		return false
	}
}

// stream writes queued events and pings idle connections until ctx ends or
// the send channel is closed.
func (l *listener) stream(ctx context.Context, conn *ws.Conn) {
	ping := time.NewTicker(keepAlive)
	defer ping.Stop()

	for {
		select {
		case data, ok := <-l.send:
			if !ok {
				return
			}
			if err := conn.Write(ctx, ws.MessageText, data); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
