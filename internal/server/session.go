package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/embermud/ember/internal/commands"
	"github.com/embermud/ember/internal/storage"
	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/textfilter"
)

const (
	// sessionOutBuffer is the per-session outbound line buffer. A session
	// that cannot drain it loses lines rather than stalling the fan-out.
	sessionOutBuffer = 256
	loginAttempts    = 3
	loginTimeout     = 2 * time.Minute
)

// session is one authenticated connection.
type session struct {
	conn     net.Conn
	playerID string
	out      chan string
	closed   chan struct{}
}

func newSession(conn net.Conn, playerID string) *session {
	return &session{
		conn:     conn,
		playerID: playerID,
		out:      make(chan string, sessionOutBuffer),
		closed:   make(chan struct{}),
	}
}

// send queues a line for the session's writer goroutine.
func (sess *session) send(text string) {
	select {
	case sess.out <- text:
	case <-sess.closed:
	default:
		// Writer is stuck; drop rather than block the fan-out.
	}
}

// requestClose unblocks the reader so the session winds down.
func (sess *session) requestClose() {
	select {
	case <-sess.closed:
	default:
		close(sess.closed)
	}
	sess.conn.Close()
}

// handle runs one connection from greeting to disconnect.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	s.logger.Info("Connection opened", "remote", remote)

	reader := bufio.NewReaderSize(conn, textfilter.MaxInputLength*2)
	p, err := s.login(ctx, conn, reader)
	if err != nil {
		s.logger.Info("Login failed", "remote", remote, "error", err)
		return
	}

	sess := newSession(conn, p.ID)
	if !s.addSession(sess) {
		fmt.Fprintf(conn, "That character is already playing.\r\n")
		return
	}
	defer s.removeSession(p.ID)

	var joinErr error
	var welcome string
	s.game.Run(func() {
		if joinErr = s.game.JoinPlayer(p); joinErr == nil {
			welcome = s.game.LookText(p)
		}
	})
	if joinErr != nil {
		s.logger.Error("Failed to join player", "player_id", p.ID, "error", joinErr)
		fmt.Fprintf(conn, "The world rejected you. Try again later.\r\n")
		return
	}

	go sess.writeLoop()
	sess.send(fmt.Sprintf("Welcome, %s!\r\n%s", p.Name, welcome))

	s.readLoop(sess, reader, p.ID)

	// Disconnect runs through the serialized game path, then the final
	// snapshot is saved outside the lock.
	var departed *actor.Player
	s.game.Run(func() {
		departed = s.game.LeavePlayer(p.ID)
	})
	if departed != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.store.SavePlayer(saveCtx, departed); err != nil {
			s.logger.Error("Final save failed", "player_id", departed.ID, "error", err)
		}
	}
	sess.requestClose()
	s.logger.Info("Connection closed", "remote", remote, "player_id", p.ID)
}

// readLoop feeds input lines through the dispatcher until the connection
// drops, the rate limit is flooded, or a command quits.
func (s *Server) readLoop(sess *session, reader *bufio.Reader, playerID string) {
	perSecond := rate.Limit(float64(s.cfg.RatePerMinute) / 60.0)
	limiter := rate.NewLimiter(perSecond, 10)

	for {
		select {
		case <-sess.closed:
			return
		default:
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		if !limiter.Allow() {
			sess.send("You are doing that too fast. Slow down.")
			continue
		}

		var res commands.Result
		s.game.Run(func() {
			p := s.game.World().GetPlayer(playerID)
			if p == nil {
				res = commands.Result{Quit: true}
				return
			}
			res = commands.Dispatch(s.game, p, line)
		})
		if res.Message != "" {
			sess.send(res.Message)
		}
		if res.Quit {
			return
		}
	}
}

// writeLoop drains the outbound queue onto the socket, one line per
// message, flushing after each.
func (sess *session) writeLoop() {
	w := bufio.NewWriter(sess.conn)
	for {
		select {
		case <-sess.closed:
			return
		case text := <-sess.out:
			w.WriteString(strings.ReplaceAll(text, "\n", "\r\n"))
			w.WriteString("\r\n")
			if err := w.Flush(); err != nil {
				return
			}
		}
	}
}

// login authenticates or registers an account, then loads or creates its
// character. Account names are case-insensitive; passwords are bcrypt
// hashed.
func (s *Server) login(ctx context.Context, conn net.Conn, reader *bufio.Reader) (*actor.Player, error) {
	conn.SetReadDeadline(time.Now().Add(loginTimeout))
	defer conn.SetReadDeadline(time.Time{})

	fmt.Fprintf(conn, "Welcome to EmberMUD.\r\n")
	for attempt := 0; attempt < loginAttempts; attempt++ {
		fmt.Fprintf(conn, "Character name: ")
		name, err := readLine(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read name: %w", err)
		}
		if !textfilter.ValidName(name) {
			fmt.Fprintf(conn, "Names are 3-16 letters.\r\n")
			continue
		}
		name = textfilter.DisplayName(name)

		acct, err := s.store.LoadAccount(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
		if acct == nil {
			return s.register(ctx, conn, reader, name)
		}

		fmt.Fprintf(conn, "Password: ")
		pass, err := readLine(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(pass)) != nil {
			fmt.Fprintf(conn, "Wrong password.\r\n")
			continue
		}

		p, err := s.store.LoadPlayer(ctx, acct.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load player: %w", err)
		}
		if p == nil {
			// Account without a character record; start fresh.
			return s.newCharacter(ctx, acct, name)
		}
		return p, nil
	}
	fmt.Fprintf(conn, "Too many attempts.\r\n")
	return nil, fmt.Errorf("login attempts exhausted")
}

// register creates a new account and its character.
func (s *Server) register(ctx context.Context, conn net.Conn, reader *bufio.Reader, name string) (*actor.Player, error) {
	fmt.Fprintf(conn, "New character. Choose a password: ")
	pass, err := readLine(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(pass) < 4 {
		return nil, fmt.Errorf("password too short")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	acct := &storage.Account{
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	return s.newCharacter(ctx, acct, name)
}

func (s *Server) newCharacter(ctx context.Context, acct *storage.Account, name string) (*actor.Player, error) {
	p := actor.NewPlayer(name, "adventurer", s.game.World().RespawnRoom())
	acct.PlayerID = p.ID
	if err := s.store.SavePlayer(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save new player: %w", err)
	}
	if err := s.store.SaveAccount(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	s.logger.Info("Character created", "player_id", p.ID, "player", name)
	return p, nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
