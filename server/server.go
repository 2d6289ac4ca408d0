package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/nixxel-company-limited/ecr-task-server/equipment"
)

// maxBatchSize bounds a single newline-terminated task batch
const maxBatchSize = 1 << 20

// Executor runs task batches off the caller's goroutine
type Executor interface {
	Submit(tasks []equipment.Task) <-chan equipment.EquipmentResponse
}

// Server accepts TCP clients sending newline-delimited JSON task batches
// and answers every batch with one JSON EquipmentResponse line
type Server struct {
	executor Executor
	listener net.Listener
	address  string
	mu       sync.Mutex
	running  bool
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// New creates a new server instance
func New(executor Executor, address string) *Server {
	return NewWithLogger(executor, address, zap.L().Named("server"))
}

// NewWithLogger creates a new server instance with a custom logger
func NewWithLogger(executor Executor, address string, logger *zap.Logger) *Server {
	return &Server{
		executor: executor,
		address:  address,
		conns:    make(map[net.Conn]struct{}),
		logger:   logger,
	}
}

// Start starts the TCP server and blocks until Stop is called
func (s *Server) Start() error {
	if err := s.listen("blocking"); err != nil {
		return err
	}

	s.logger.Info("ready to accept connections")
	s.acceptConnections()
	return nil
}

// StartAsync starts the TCP server in a goroutine (non-blocking)
func (s *Server) StartAsync() error {
	if err := s.listen("async"); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptConnections()
	}()
	s.logger.Info("server started in background")
	return nil
}

func (s *Server) listen(mode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("starting server", zap.String("address", s.address), zap.String("mode", mode))

	if s.running {
		s.logger.Error("server already running")
		return fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		s.logger.Error("failed to start server", zap.Error(err))
		return fmt.Errorf("failed to start server: %w", err)
	}

	s.listener = listener
	s.running = true
	s.logger.Info("server listening", zap.Stringer("address", listener.Addr()))
	return nil
}

// acceptConnections handles incoming client connections
func (s *Server) acceptConnections() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.IsRunning() {
				s.logger.Debug("server shutting down, stopping accept loop")
				return
			}
			s.logger.Warn("error accepting connection", zap.Error(err))
			continue
		}

		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.logger.Info("client connected", zap.Stringer("remote", conn.RemoteAddr()))
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection serves task batches from a single client until it disconnects
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
		s.logger.Info("client disconnected", zap.Stringer("remote", conn.RemoteAddr()))
	}()

	log := s.logger.With(zap.Stringer("remote", conn.RemoteAddr()))
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxBatchSize)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp := s.handleBatch(line, log)
		if err := enc.Encode(resp); err != nil {
			log.Warn("error writing response", zap.Error(err))
			return
		}
	}

	if err := scanner.Err(); err != nil && s.IsRunning() {
		log.Warn("error reading from client", zap.Error(err))
	}
}

func (s *Server) handleBatch(line []byte, log *zap.Logger) equipment.EquipmentResponse {
	var tasks []equipment.Task
	if err := json.Unmarshal(line, &tasks); err != nil {
		log.Warn("malformed task batch", zap.Error(err))
		return equipment.EquipmentResponse{
			ResultCode: equipment.HandlingError,
			ResultInfo: fmt.Sprintf("malformed task batch: %v", err),
		}
	}

	log.Debug("task batch received", zap.Int("tasks", len(tasks)))
	resp := <-s.executor.Submit(tasks)
	log.Info("task batch done",
		zap.Int("tasks", len(tasks)),
		zap.Stringer("result", resp.ResultCode),
		zap.String("info", resp.ResultInfo),
	)
	return resp
}

// Stop closes the listener and all client connections and waits for
// in-flight batches to finish
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.logger.Debug("stop called but server is not running")
		return nil
	}

	s.logger.Info("stopping server")
	s.running = false
	listener := s.listener
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	if listener != nil {
		listener.Close()
	}

	s.wg.Wait()
	s.logger.Info("server stopped")
	return nil
}

// IsRunning returns whether the server is running
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Address returns the configured server address
func (s *Server) Address() string {
	return s.address
}

// ListenAddr returns the bound listener address, or nil before Start
func (s *Server) ListenAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
