package beats

import (
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

type Options struct {
	CompressionLevel int
	Timeout          time.Duration // dial and acknowledgement timeout
}

// Lumberjack v2 sink, connected on first send
type Sink struct {
	endpoint string
	opts     Options
	client   *lumberjack.SyncClient
}
