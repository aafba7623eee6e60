package main

import (
	"bufio"
	"context"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"golang.org/x/sync/errgroup"

	"skabillium/memolist/cmd/db"
	"skabillium/memolist/cmd/resp"
)

const MemoVersion = "0.1.0"

var logger = loggo.GetLogger("memo.server")

// Request limits for connections that have not authenticated yet.
const (
	preAuthMaxBulkLen  = 16 << 10
	preAuthMaxArrayLen = 10
)

type Server struct {
	options *ServerOptions
	db      *db.Database
	ln      net.Listener

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

func NewServer(options *ServerOptions) *Server {
	return &Server{
		options: options,
		db:      db.NewDatabase(),
		conns:   make(map[net.Conn]struct{}),
	}
}

func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.options.Host, s.options.Port))
	if err != nil {
		return errors.Annotate(err, "starting listener")
	}
	s.ln = ln
	logger.Infof("Memo server %s listening on %s", MemoVersion, ln.Addr())
	return nil
}

func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until ctx is cancelled, then closes every open
// connection and waits for their handlers to return.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		return errors.New("server is not listening")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		s.shutdown()
		return nil
	})
	g.Go(func() error {
		return s.acceptLoop(ctx)
	})

	err := g.Wait()
	s.wg.Wait()
	logger.Infof("Memo server stopped")
	return err
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return errors.Annotate(err, "listener closed")
			}
			logger.Warningf("accept error: %v", err)
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return nil
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.ln.Close()
	for conn := range s.conns {
		conn.Close()
	}
}

// session is the per-connection state.
type session struct {
	authenticated bool
}

func (s *Server) applyLimits(rd *resp.Reader, sess *session) {
	maxBulkLen := int64(s.options.MaxBulkLen.Bytes())
	if sess.authenticated {
		rd.MaxBulkLen = maxBulkLen
		rd.MaxArrayLen = resp.DefaultMaxArrayLen
		return
	}
	rd.MaxBulkLen = min(maxBulkLen, preAuthMaxBulkLen)
	rd.MaxArrayLen = preAuthMaxArrayLen
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.untrack(conn)
	defer conn.Close()

	logger.Debugf("client connected from %s", conn.RemoteAddr())
	rd := resp.NewReader(bufio.NewReader(conn))
	w := bufio.NewWriter(conn)
	sess := &session{authenticated: !s.options.AuthRequired()}
	s.applyLimits(rd, sess)

	for {
		req, err := rd.Read()
		if errors.Is(err, resp.ErrEmptyLine) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Debugf("closing connection from %s: %v", conn.RemoteAddr(), err)
				// Protocol errors leave the stream unusable.
				_ = resp.Write(w, errors.Cause(err))
				_ = w.Flush()
			}
			return
		}

		var reply any
		quit := false
		args, err := requestArgs(req)
		if err == nil {
			var cmd *Command
			if cmd, err = ParseCommand(args); err == nil {
				reply = s.execute(sess, cmd)
				quit = cmd.Kind == CmdQuit
				s.applyLimits(rd, sess)
			}
		}
		if err != nil {
			reply = err
		}

		if err := resp.Write(w, reply); err != nil {
			logger.Errorf("cannot serialize reply %v: %v", reply, err)
			return
		}
		// Replies to pipelined requests are flushed together.
		if rd.Buffered() == 0 || quit {
			if err := w.Flush(); err != nil {
				return
			}
		}
		if quit {
			return
		}
	}
}

func main() {
	options, err := getServerOptions(os.Args[1:])
	if err != nil {
		logger.Criticalf("%v", err)
		os.Exit(2)
	}
	if err := loggo.ConfigureLoggers("<root>=" + options.LogLevel); err != nil {
		logger.Criticalf("invalid log level %q: %v", options.LogLevel, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := NewServer(options)
	if err := server.ListenAndServe(ctx); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
