// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

// maxLineBytes caps a single request line.
const maxLineBytes = 1 << 20

// Serve reads one JSON request per line from r and writes one JSON response
// per line to w until r is exhausted, ctx is done, or a write fails.
//
// concurrency bounds in-flight requests. With 1 (or less) requests run in
// input order; with more, responses may arrive out of order and are
// correlated by id.
//
// On cancellation Serve stops reading, waits for in-flight requests, and
// returns ctx.Err(). A read blocked in r is abandoned, not interrupted.
func Serve(ctx context.Context, d *Dispatcher, r io.Reader, w io.Writer, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}

	var mu sync.Mutex
	enc := json.NewEncoder(w)
	write := func(resp Response) error {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(resp); err != nil {
			return oops.With("command_id", resp.ID).Wrapf(err, "write response")
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(r, done)

	eof := false
loop:
	for {
		select {
		case <-gctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				eof = true
				break loop
			}
			g.Go(func() error {
				return write(d.DispatchJSON(gctx, line))
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if !eof {
		return ctx.Err() //nolint:wrapcheck // callers match context.Canceled
	}
	if err := <-readErr; err != nil {
		return oops.Wrapf(err, "read requests")
	}
	return nil
}

// readLines scans r on its own goroutine, sending each non-blank line. The
// scan error, possibly nil, is sent on the error channel before lines closes.
// The goroutine exits early once done is closed.
func readLines(r io.Reader, done <-chan struct{}) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	errs := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- bytes.Clone(line):
			case <-done:
				return
			}
		}
		errs <- scanner.Err()
	}()

	return lines, errs
}
