// Package netutil provides network helpers: waiting for a TCP port and
// discovering the host's public address.
package netutil

import (
	"context"
	"fmt"
	"net"
	"time"
)

// WaitForPort waits for a TCP port to be open on the target IP.
// It retries every second until the port is accessible or the timeout is reached.
func WaitForPort(ctx context.Context, ip string, port int, timeout time.Duration) error {
	address := net.JoinHostPort(ip, fmt.Sprintf("%d", port))
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if conn, err := net.DialTimeout("tcp", address, 2*time.Second); err == nil {
		_ = conn.Close()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("timeout waiting for %s", address)
			}
			return ctx.Err()
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", address, 2*time.Second)
			if err == nil {
				_ = conn.Close()
				return nil
			}
		}
	}
}
