package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type ConsoleConfig struct {
	ServerAddr  string
	DialTimeout time.Duration
}

func main() {
	cfg := &ConsoleConfig{
		ServerAddr:  getEnv("MUD_ADDR", "localhost:4000"),
		DialTimeout: 10 * time.Second,
	}

	conn, err := net.DialTimeout("tcp", cfg.ServerAddr, cfg.DialTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not connect to %s: %v\nIs the server running?\n", cfg.ServerAddr, err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, conn),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())

	// Pump server lines into the UI as messages.
	go func() {
		scanner := bufio.NewScanner(conn)
		scanner.Buffer(make([]byte, 64*1024), 64*1024)
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), "\r")
			p.Send(serverLineMsg{line: line})
		}
		p.Send(disconnectedMsg{err: scanner.Err()})
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
	conn.Close()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
