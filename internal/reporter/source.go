package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gorilla/websocket"

	"github.com/bitrise-io/metro-cli/internal/output"
)

// maxEventSize bounds one NDJSON line. Bundling errors carry code frames and
// import stacks, so lines can be long.
const maxEventSize = 4 << 20

// ReadEvents decodes newline-delimited JSON events from r and passes each to
// handle until r is exhausted or ctx is cancelled. Lines that are not valid
// events are skipped.
func ReadEvents(ctx context.Context, r io.Reader, handle func(Event)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++

		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		event, err := decodeEvent(raw)
		if err != nil {
			output.Debug("skipping malformed event", "line", line, "err", err)
			continue
		}
		handle(event)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading events: %w", err)
	}
	return nil
}

// DialEvents connects to the dev server's event websocket at url and passes
// each event to handle until the server closes the connection or ctx is
// cancelled.
func DialEvents(ctx context.Context, url string, handle func(Event)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", url, err)
	}
	defer conn.Close()
	output.Debug("connected to event socket", "url", url)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				output.Debug("event socket closed", "url", url)
				return nil
			}
			return fmt.Errorf("reading event socket: %w", err)
		}

		event, err := decodeEvent(data)
		if err != nil {
			output.Debug("skipping malformed event", "err", err)
			continue
		}
		handle(event)
	}
}

func decodeEvent(data []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("decoding event: %w", err)
	}
	if event.Type == "" {
		return Event{}, errors.New("event has no type")
	}
	return event, nil
}
