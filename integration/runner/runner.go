// Package runner drives scripted sessions against a running EmberMUD
// server over its TCP line protocol. It is deliberately prompt-aware:
// login prompts are not newline-terminated, so reads scan raw bytes for
// expected fragments instead of whole lines.
package runner

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// Client is one scripted player connection.
type Client struct {
	conn    net.Conn
	Timeout time.Duration
	buf     strings.Builder
}

// Dial connects to the server at addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Client{conn: conn, Timeout: 10 * time.Second}, nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// SendLine types one input line.
func (c *Client) SendLine(line string) error {
	_, err := fmt.Fprintf(c.conn, "%s\r\n", line)
	return err
}

// Expect reads server output until the given fragment appears, returning
// everything read since the previous match. Output consumed while waiting
// is discarded once matched, so successive Expect calls move forward
// through the transcript.
func (c *Client) Expect(fragment string) (string, error) {
	deadline := time.Now().Add(c.Timeout)
	tmp := make([]byte, 4096)
	for {
		if i := strings.Index(c.buf.String(), fragment); i >= 0 {
			got := c.buf.String()
			rest := got[i+len(fragment):]
			c.buf.Reset()
			c.buf.WriteString(rest)
			return got[:i+len(fragment)], nil
		}
		if time.Now().After(deadline) {
			return c.buf.String(), fmt.Errorf("timed out waiting for %q, got: %q", fragment, c.buf.String())
		}
		c.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, err := c.conn.Read(tmp)
		if n > 0 {
			c.buf.Write(tmp[:n])
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return c.buf.String(), fmt.Errorf("read failed while waiting for %q: %w", fragment, err)
		}
	}
}

// Command sends one input line and waits for a fragment of its response.
func (c *Client) Command(line, expect string) (string, error) {
	if err := c.SendLine(line); err != nil {
		return "", err
	}
	return c.Expect(expect)
}

// Login walks the name/password conversation. A new name registers; an
// existing one authenticates.
func (c *Client) Login(name, password string) error {
	if _, err := c.Expect("Character name:"); err != nil {
		return err
	}
	if err := c.SendLine(name); err != nil {
		return err
	}
	// "Choose a password:" for a fresh name, "Password:" for a known one.
	if _, err := c.Expect("assword:"); err != nil {
		return err
	}
	if err := c.SendLine(password); err != nil {
		return err
	}
	_, err := c.Expect("Welcome, ")
	return err
}
