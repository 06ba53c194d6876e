// Package wsjtx listens for WSJT-X UDP multicast traffic and yields the
// completed contacts it announces.
package wsjtx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"golang.org/x/net/ipv4"

	"github.com/adifpush/adifpush/internal/adif"
	"github.com/adifpush/adifpush/internal/qso"
	"github.com/adifpush/adifpush/pkg/logger"
)

// readBufSize bounds one datagram read. WSJT-X messages are far smaller;
// anything larger is truncated and, when that breaks the framing, dropped.
const readBufSize = 8 * 1024

// ErrClosed is returned by Next after the listener has been closed.
var ErrClosed = errors.New("listener closed")

// Listener consumes the WSJT-X multicast group and yields one raw record
// per completed contact. Non-contact and undecodable datagrams are skipped
// internally.
type Listener struct {
	conn      net.PacketConn
	group     net.IP
	addr      string
	logger    *logger.Logger
	closeOnce sync.Once
}

// Listen binds the WSJT-X UDP port with address reuse and joins the
// multicast group on the default interface.
func Listen(group string, port int, log *logger.Logger) (*Listener, error) {
	ip := net.ParseIP(group)
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("invalid multicast group: %q", group)
	}

	conn, err := net.ListenPacket("udp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to bind UDP port %d: %w", port, err)
	}

	p := ipv4.NewPacketConn(conn)
	if err := p.JoinGroup(nil, &net.UDPAddr{IP: ip}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to join multicast group %s: %w", group, err)
	}

	l := &Listener{
		conn:   conn,
		group:  ip,
		addr:   fmt.Sprintf("%s:%d", group, port),
		logger: log.Named("wsjtx"),
	}
	l.logger.Info("Listening for WSJT-X traffic", logger.String("group", l.addr))
	return l, nil
}

// Addr returns the multicast group:port the listener is joined to.
func (l *Listener) Addr() string {
	return l.addr
}

// Next blocks until the next contact datagram arrives and returns it as a
// raw, not yet validated record. It returns ErrClosed once the listener is
// closed, including via cancellation of ctx.
func (l *Listener) Next(ctx context.Context) (qso.Raw, error) {
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	buf := make([]byte, readBufSize)
	for {
		n, src, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return qso.Raw{}, ErrClosed
			}
			return qso.Raw{}, fmt.Errorf("failed to read datagram: %w", err)
		}

		text, err := decodeADIF(buf[:n])
		if err != nil {
			if !errors.Is(err, errNotContact) {
				l.logger.Warn("Dropping undecodable datagram",
					logger.String("source", src.String()),
					logger.Int("bytes", n),
					logger.Error(err),
				)
			}
			continue
		}

		raw, err := parseContact(text)
		if err != nil {
			l.logger.Warn("Dropping contact datagram with unusable ADIF",
				logger.String("source", src.String()),
				logger.Error(err),
			)
			continue
		}
		return raw, nil
	}
}

// Close releases the socket and unblocks any in-flight Next.
func (l *Listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = l.conn.Close()
	})
	return err
}

// parseContact decodes the ADIF text of a LoggedADIF message. WSJT-X
// wraps the record in a one-line header, so strip through <EOH> first.
func parseContact(text string) (qso.Raw, error) {
	if idx := strings.Index(strings.ToLower(text), "<eoh>"); idx >= 0 {
		text = text[idx+len("<eoh>"):]
	}
	return adif.ParseString(strings.TrimSpace(text))
}
