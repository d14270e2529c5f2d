package beats

import (
	"context"
	"encoding/json"
	"fmt"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

// Sends one record as a beats event, connecting first if needed
func (sink *Sink) Send(ctx context.Context, frame []byte) (err error) {
	if sink.client == nil {
		compression := lumberjack.CompressionLevel(sink.opts.CompressionLevel)
		timeout := lumberjack.Timeout(sink.opts.Timeout)

		sink.client, err = lumberjack.SyncDial(sink.endpoint, compression, timeout)
		if err != nil {
			sink.client = nil
			err = fmt.Errorf("failed connection to beats server: %w", err)
			return
		}
		logctx.LogEvent(logctx.AppendCtxTag(ctx, global.NSoBeats), global.VerbosityProgress, global.InfoLog,
			"Connected to beats server %s\n", sink.endpoint)
	}

	events := []interface{}{eventFields(frame)}

	_, err = sink.client.Send(events)
	if err != nil {
		err = fmt.Errorf("failed sending event to beats server: %w", err)
		return
	}
	return
}

// Expands the record into beats event fields with the relay's agent metadata
func eventFields(frame []byte) (fields map[string]interface{}) {
	err := json.Unmarshal(frame, &fields)
	if err != nil || fields == nil {
		fields = map[string]interface{}{
			"message": string(frame),
		}
	}

	fields["@timestamp"] = time.Now().UTC()
	fields["agent"] = map[string]interface{}{
		// Meta fields identifying the relay itself
		"program": global.ProgBaseName,
		"version": global.ProgVersion,
		"type":    global.ProgBaseName,
		"pid":     global.PID,
	}
	return
}

// Gracefully closes the connection
func (sink *Sink) Close() (err error) {
	if sink == nil || sink.client == nil {
		return
	}
	err = sink.client.Close()
	sink.client = nil
	return
}
