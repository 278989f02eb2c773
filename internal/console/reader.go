// Package console connects a session to a text terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"gamble3000/internal/session"
)

// QuitToken is the input that cashes out.
const QuitToken = "q"

// ParseCommand turns one line of input into a command. Surrounding space and
// case are ignored. Only unsigned digit strings are bets; a number too large
// for int64 is kept as the largest value so it fails the range check.
func ParseCommand(raw string) session.Command {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == QuitToken {
		return session.CashOut()
	}
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return session.Malformed(raw)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return session.Malformed(raw)
	}
	cmd := session.Bet(n)
	cmd.Raw = raw
	return cmd
}

// MaxLineBytes bounds one input line. Anything past it is discarded and
// the line counts as malformed.
const MaxLineBytes = 4096

type line struct {
	text     string
	overlong bool
	err      error
}

// Reader prompts for and reads bets. It implements session.Input.
type Reader struct {
	in     *bufio.Reader
	out    io.Writer
	prompt string

	once      sync.Once
	closeOnce sync.Once
	lines     chan line
	done      chan struct{}
	stopped   chan struct{}
}

// NewReader creates a Reader that writes the prompt to out and reads lines
// from in.
func NewReader(in io.Reader, out io.Writer, minBet, maxBet int64) *Reader {
	return &Reader{
		in:      bufio.NewReaderSize(in, MaxLineBytes),
		out:     out,
		prompt:  fmt.Sprintf("Enter your bet (%d-%d) or '%s' to cash out: ", minBet, maxBet, QuitToken),
		lines:   make(chan line),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Next prompts and waits for the next line. It returns io.EOF once input is
// exhausted or the Reader is closed, and ctx.Err() if ctx is done first.
func (r *Reader) Next(ctx context.Context) (session.Command, error) {
	select {
	case <-r.done:
		return session.Command{}, io.EOF
	default:
	}
	r.once.Do(func() { go r.scan() })

	if _, err := io.WriteString(r.out, r.prompt); err != nil {
		return session.Command{}, fmt.Errorf("failed to write prompt: %w", err)
	}

	select {
	case <-ctx.Done():
		return session.Command{}, ctx.Err()
	case <-r.done:
		return session.Command{}, io.EOF
	case l, ok := <-r.lines:
		if !ok {
			return session.Command{}, io.EOF
		}
		if l.err != nil {
			return session.Command{}, l.err
		}
		if l.overlong {
			return session.Malformed(l.text), nil
		}
		return ParseCommand(l.text), nil
	}
}

// Close stops the reading goroutine once its pending read returns. Later
// calls to Next return io.EOF.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	return nil
}

// scan feeds lines to Next. A blocked terminal read cannot be interrupted, so
// it runs apart from the session goroutine.
func (r *Reader) scan() {
	defer close(r.stopped)
	defer close(r.lines)

	for {
		l, err := r.readLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.send(line{err: fmt.Errorf("failed to read input: %w", err)})
			}
			return
		}
		if !r.send(l) {
			return
		}
	}
}

// readLine returns the next line without its terminator. A line longer than
// MaxLineBytes keeps only its first MaxLineBytes and is marked overlong.
func (r *Reader) readLine() (line, error) {
	buf, isPrefix, err := r.in.ReadLine()
	if err != nil {
		return line{}, err
	}
	l := line{text: string(buf), overlong: isPrefix}
	for isPrefix {
		_, isPrefix, err = r.in.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return line{}, err
		}
	}
	return l, nil
}

func (r *Reader) send(l line) bool {
	select {
	case r.lines <- l:
		return true
	case <-r.done:
		return false
	}
}
