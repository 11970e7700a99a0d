package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"taskboard/internal/realtime"
)

const (
	eventReady  = "ready"
	eventChange = "change"
)

// Subscribe opens the change stream of a table. It returns once the server
// reports the subscription live, so no change made after Subscribe returns is
// missed. Closing the subscription (or cancelling ctx) ends the stream.
func (c *Client) Subscribe(ctx context.Context, table string, eventType realtime.EventType) (*realtime.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	path := "/realtime/" + url.PathEscape(table)
	if eventType != "" {
		path += "?event=" + url.QueryEscape(string(eventType))
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", table, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		cancel()
		return nil, decodeError(resp)
	}

	r := newEventReader(resp.Body)
	name, _, err := r.next()
	if err != nil || name != eventReady {
		resp.Body.Close()
		cancel()
		if err == nil {
			err = fmt.Errorf("unexpected first event %q", name)
		}
		return nil, fmt.Errorf("subscribe %s: %w", table, err)
	}

	sub, ch := realtime.NewSubscription(cancel)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		for {
			name, data, err := r.next()
			if err != nil {
				return
			}
			if name != eventChange {
				continue
			}
			var ev realtime.ChangeEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				continue
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return sub, nil
}

// eventReader splits a text/event-stream body into named events.
type eventReader struct {
	sc *bufio.Scanner
}

func newEventReader(r io.Reader) *eventReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &eventReader{sc: sc}
}

func (r *eventReader) next() (string, string, error) {
	var name string
	var data []string
	for r.sc.Scan() {
		line := r.sc.Text()
		switch {
		case line == "":
			if name == "" && len(data) == 0 {
				continue
			}
			if name == "" {
				name = "message"
			}
			return name, strings.Join(data, "\n"), nil
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := r.sc.Err(); err != nil {
		return "", "", err
	}
	return "", "", io.EOF
}
