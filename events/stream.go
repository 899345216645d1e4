package events

import (
	"bufio"
	"context"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"io"
	"strings"
)

// ReadStream dispatches one JSON event per line until r is exhausted. Blank
// lines and lines starting with '#' are skipped; bad events are logged and
// skipped. ctx is checked between lines.
func ReadStream(ctx context.Context, r io.Reader, h Handler) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := HandlePayload(h, []byte(line)); err != nil {
			log.WithField("err", err).
				WithField("line", lineNo).
				Warn("event not handled")
		}
	}
	return errors.Wrap(scanner.Err(), "unable to read events")
}
