package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// Separator splits the event name from its payload on the wire.
const Separator = ">>"

// ErrSocketUnresolved is returned when the runtime directory or instance
// signature needed to locate the event socket is missing.
var ErrSocketUnresolved = errors.New("event socket path unresolved")

// Line is one decoded event line.
type Line struct {
	Event   string
	Payload string
}

// String renders the line in wire form without the trailing newline.
func (l Line) String() string {
	return l.Event + Separator + l.Payload
}

// FormatLine renders a newline-terminated wire line.
func FormatLine(event, payload string) string {
	return event + Separator + payload + "\n"
}

// Decoder reads event lines from a stream. It is not restartable: once Next
// returns an error the decoder is spent.
type Decoder struct {
	r   *bufio.Reader
	err error
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next well-formed line. Blank lines and lines without the
// separator are skipped. Invalid UTF-8 is dropped. At end of input Next
// returns io.EOF; a final line without a newline is still returned first.
func (d *Decoder) Next() (Line, error) {
	for d.err == nil {
		raw, err := d.r.ReadString('\n')
		if err != nil {
			d.err = err
		}
		if line, ok := parseLine(raw); ok {
			return line, nil
		}
	}
	return Line{}, d.err
}

func parseLine(raw string) (Line, bool) {
	raw = strings.TrimSpace(strings.ToValidUTF8(raw, ""))
	if raw == "" {
		return Line{}, false
	}
	event, payload, found := strings.Cut(raw, Separator)
	if !found {
		return Line{}, false
	}
	return Line{Event: event, Payload: payload}, true
}

// SocketPath returns <runtimeDir>/hypr/<signature>/.socket2.sock.
func SocketPath(runtimeDir, signature string) (string, error) {
	if runtimeDir == "" {
		return "", fmt.Errorf("%w: runtime directory not set", ErrSocketUnresolved)
	}
	if signature == "" {
		return "", fmt.Errorf("%w: instance signature not set", ErrSocketUnresolved)
	}
	return filepath.Join(runtimeDir, "hypr", signature, ".socket2.sock"), nil
}

// SocketPathFromEnv resolves the socket path, using XDG_RUNTIME_DIR and
// HYPRLAND_INSTANCE_SIGNATURE for any override left empty.
func SocketPathFromEnv(runtimeDir, signature string) (string, error) {
	if runtimeDir == "" {
		runtimeDir = os.Getenv("XDG_RUNTIME_DIR")
	}
	if signature == "" {
		signature = os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	}
	return SocketPath(runtimeDir, signature)
}

// Dial connects to the event socket at path.
func Dial(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", path, err)
	}
	return conn, nil
}
