package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const (
	// BufferSize matches the server's receive buffer
	BufferSize = 16384

	ConnectionInterrupted = "Connection to server was interrupted. Please try reconnecting..."

	disconnectedSuccessfully = "Disconnected successfully."
	serverShutdown           = "Server was shutdown."
)

// ErrConnectionLost is returned when the server goes away mid-session
var ErrConnectionLost = errors.New("connection to server lost")

// Dial connects to the wallet server
func Dial(addr string, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return conn, nil
}

// Run sends every non-blank line of in to the server and prints each response to out.
// It returns nil when in is exhausted or the server ends the session.
func Run(conn net.Conn, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	buf := make([]byte, BufferSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			return fmt.Errorf("%w: %v", ErrConnectionLost, err)
		}

		n, err := conn.Read(buf)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConnectionLost, err)
		}

		response := string(buf[:n])
		fmt.Fprintln(out, response)

		if response == disconnectedSuccessfully || response == serverShutdown {
			return nil
		}
	}

	return scanner.Err()
}
