package zmq

import (
	"time"

	"github.com/zeromq/goczmq"
)

type Options struct {
	ReconnectInterval time.Duration // socket level reconnect interval
	SendTimeout       time.Duration // per frame send timeout
	SendHWM           int           // socket send high water mark in messages
	Linger            time.Duration // time queued frames may still be sent after Close, 0 discards them
}

// ZeroMQ PUSH socket sink. Sockets are not goroutine safe, only the flusher uses one.
type Sink struct {
	endpoint string
	sock     *goczmq.Sock
}
