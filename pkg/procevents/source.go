package procevents

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"
)

// Source subscribes to the kernel process-event connector and decodes its
// notifications (spec.md §4.5, §6 "Kernel process-event connector"). Socket
// setup retries with backoff, matching classifier.cpp's connect-or-die
// startup ordering but surfaced as a retryable operation instead of a
// one-shot syscall.
type Source struct {
	conn *netlink.Conn
}

// ConnectRetry is the backoff policy for establishing and subscribing the
// connector socket at startup; exhausting it is startup-fatal (spec.md §7).
func ConnectRetry() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// Connect dials the NETLINK_CONNECTOR socket, joins the proc connector's
// multicast group, and sends the LISTEN subscribe op, retrying transient
// failures per retry.
func Connect(retry backoff.BackOff) (*Source, error) {
	var src *Source
	op := func() error {
		conn, err := netlink.Dial(unix.NETLINK_CONNECTOR, nil)
		if err != nil {
			return fmt.Errorf("dial netlink connector: %w", err)
		}
		if err := conn.JoinGroup(cnIdxProc); err != nil {
			conn.Close()
			return fmt.Errorf("join proc connector multicast group: %w", err)
		}
		if _, err := conn.Send(netlink.Message{Data: marshalListenOp(true)}); err != nil {
			conn.Close()
			return fmt.Errorf("subscribe to proc events: %w", err)
		}
		src = &Source{conn: conn}
		return nil
	}

	if err := backoff.Retry(op, retry); err != nil {
		return nil, err
	}
	logger.L().Info("subscribed to kernel process-event connector")
	return src, nil
}

// Events blocks, decoding notifications and sending them on the returned
// channel until ctx is canceled or the socket returns a shutdown signal.
// The channel is closed on return. This mirrors handle_proc_ev's read loop,
// including its EINTR-retry and zero-length-read-means-shutdown behavior.
func (s *Source) Events(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			if ctx.Err() != nil {
				return
			}
			msgs, err := s.conn.Receive()
			if err != nil {
				if errors.Is(err, unix.EINTR) {
					continue
				}
				if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
					return
				}
				logger.L().Error("netlink receive failed", helpers.Error(err))
				return
			}
			if len(msgs) == 0 {
				return
			}
			for _, m := range msgs {
				ev, ok := parseCnMsg(m.Data)
				if !ok {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Close unsubscribes from the multicast group and closes the socket.
func (s *Source) Close() error {
	_, _ = s.conn.Send(netlink.Message{Data: marshalListenOp(false)})
	return s.conn.Close()
}
