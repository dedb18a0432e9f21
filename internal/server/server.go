// Package server is the TCP line-protocol front end. It owns sessions
// and their sockets; all world mutation it triggers goes through the
// game core's serialized Run path.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/embermud/ember/internal/config"
	"github.com/embermud/ember/internal/game"
	"github.com/embermud/ember/internal/storage"
	"github.com/embermud/ember/pkg/event"
)

// Server accepts connections and routes game events back to sessions.
type Server struct {
	cfg    *config.Config
	game   *game.Game
	store  storage.Storage
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session // by player id

	listener net.Listener
	wg       sync.WaitGroup
}

// New builds a server around a running game core.
func New(cfg *config.Config, g *game.Game, store storage.Storage, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		game:     g,
		store:    store,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// ListenAndServe accepts connections until the context is cancelled.
// It also starts the event fan-out goroutine that drains the game's
// outbound channel.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", s.cfg.Port, err)
	}
	s.listener = ln
	s.logger.Info("Server listening", "port", s.cfg.Port)

	go s.fanOut(ctx)
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Warn("Accept failed", "error", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}

	s.closeAllSessions()
	s.wg.Wait()
	return nil
}

// fanOut routes game events to session output channels. The transport
// never reads world state; recipients arrive pre-resolved.
func (s *Server) fanOut(ctx context.Context) {
	events := s.game.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch ev.Type {
			case event.TypeMessage:
				s.deliver(ev.PlayerID, ev.Text)
			case event.TypeRoomBroadcast:
				for _, id := range ev.Recipients {
					s.deliver(id, ev.Text)
				}
			case event.TypeDisconnect:
				s.mu.RLock()
				sess := s.sessions[ev.PlayerID]
				s.mu.RUnlock()
				if sess != nil {
					sess.requestClose()
				}
			case event.TypePlayerUpdate:
				// Persistence markers are handled by the autosave loop,
				// not the transport.
			}
		}
	}
}

func (s *Server) deliver(playerID, text string) {
	s.mu.RLock()
	sess := s.sessions[playerID]
	s.mu.RUnlock()
	if sess == nil {
		return
	}
	sess.send(text)
}

func (s *Server) addSession(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.sessions[sess.playerID]; taken {
		return false
	}
	s.sessions[sess.playerID] = sess
	return true
}

func (s *Server) removeSession(playerID string) {
	s.mu.Lock()
	delete(s.sessions, playerID)
	s.mu.Unlock()
}

func (s *Server) closeAllSessions() {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.requestClose()
	}
}
