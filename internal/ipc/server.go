package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/zonetile/internal/actionlog"
	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/layout"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/runtimepath"
	"github.com/1broseidon/zonetile/internal/state"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgPath      string
	cfgMu        sync.RWMutex
	manager      *layout.Manager
	store        state.Store
	actions      *actionlog.Logger
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. cfgPath may be empty, in which case a
// RELOAD re-reads the default config location. actions may be nil.
func NewServer(cfg *config.Config, cfgPath string, manager *layout.Manager, store state.Store, actions *actionlog.Logger, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		cfgPath:    cfgPath,
		manager:    manager,
		store:      store,
		actions:    actions,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandPing:
		return s.handlePing()
	case CommandStatus:
		return s.handleStatus()
	case CommandDo:
		return s.handleDo(req.Payload)
	case CommandRebalance:
		return s.handleRebalance()
	case CommandSave:
		return s.handleSave(req.Payload)
	case CommandRestore:
		return s.handleRestore(req.Payload)
	case CommandLayouts:
		return s.handleLayouts()
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handlePing() *Response {
	resp, _ := NewOKResponse(PingData{
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
	return resp
}

func (s *Server) handleStatus() *Response {
	resp, _ := NewOKResponse(s.manager.Status())
	return resp
}

func (s *Server) handleDo(payload json.RawMessage) *Response {
	var doReq DoPayload
	if err := json.Unmarshal(payload, &doReq); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid do payload: %v", err))
	}

	action, err := layout.ParseAction(doReq.Action)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	dir, err := layout.ParseDirection(doReq.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	s.manager.Do(action, platform.WindowID(doReq.Window), dir)

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleRebalance() *Response {
	s.manager.Rebalance()
	s.actions.Log(actionlog.ActionRebalance, 0, nil)

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSave(payload json.RawMessage) *Response {
	name := layoutName(payload)

	snap := s.manager.Snapshot()
	data, err := snap.Encode()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to encode snapshot: %v", err))
	}
	if err := s.store.Set(name, data); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to save layout: %v", err))
	}
	if name != state.LastKey {
		_ = s.store.Set(state.LastKey, data)
	}
	s.actions.Log(actionlog.ActionSave, 0, map[string]interface{}{"layout": name})

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleRestore(payload json.RawMessage) *Response {
	name := layoutName(payload)

	data, err := s.store.Get(name)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return NewErrorResponse(fmt.Sprintf("No layout named %q", name))
		}
		return NewErrorResponse(fmt.Sprintf("Failed to read layout: %v", err))
	}
	snap, err := state.DecodeSnapshot(data)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to decode layout %q: %v", name, err))
	}
	if err := s.manager.Restore(snap); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to restore layout: %v", err))
	}

	// Record the post-restore truth as the most recent layout.
	cur := s.manager.Snapshot()
	if curData, err := cur.Encode(); err == nil {
		_ = s.store.Set(state.LastKey, curData)
	}
	s.actions.Log(actionlog.ActionRestore, 0, map[string]interface{}{"layout": name})

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleLayouts() *Response {
	layouts, err := s.store.List()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list layouts: %v", err))
	}

	resp, _ := NewOKResponse(LayoutsData{Layouts: layouts})
	return resp
}

// handleReload re-reads the configuration and applies it to the running
// manager. The daemon is notified so it can refresh its own config-derived
// pieces; hotkey bindings stay as they were until restart.
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	var (
		newCfg *config.Config
		err    error
	)
	if s.cfgPath != "" {
		newCfg, err = config.LoadFromPath(s.cfgPath)
	} else {
		newCfg, err = config.Load()
	}
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	if err := s.manager.ApplyConfig(newCfg); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to apply config: %v", err))
	}

	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	s.actions.Log(actionlog.ActionReload, 0, nil)
	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// layoutName extracts the layout key from an optional payload, defaulting
// to the user-intent key.
func layoutName(payload json.RawMessage) string {
	var p LayoutPayload
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &p)
	}
	if p.Name == "" {
		return state.DefaultKey
	}
	return p.Name
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
