package cli

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// ReadAll reads r to EOF, returning early if ctx is done. Surrounding
// whitespace is trimmed. Used for note text piped on stdin.
func ReadAll(ctx context.Context, r io.Reader) (string, error) {
	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		data, err := io.ReadAll(r)
		resultCh <- result{value: string(data), err: err}
	}()

	select {
	case <-ctx.Done():
		// The read goroutine finishes on its own when r is closed.
		return "", ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.value), nil
	}
}
