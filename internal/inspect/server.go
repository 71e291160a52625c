// Package inspect 通过 WebSocket 推送世界快照，供外部调试工具观察
//
// 游戏循环调用 Publish 发布快照；连接的客户端按固定间隔收到最新快照
// （只有快照更新时才发送）。Server 从不访问 World 本身。
package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/decker502/liquidbox/pkg/world"
)

const (
	// DefaultInterval 默认推送间隔
	DefaultInterval = 100 * time.Millisecond
	writeTimeout    = 2 * time.Second
)

// Server 快照推送服务
type Server struct {
	upgrader websocket.Upgrader
	interval time.Duration
	log      *zap.Logger

	mu      sync.RWMutex
	latest  world.Snapshot
	version uint64

	httpServer *http.Server

	connMu  sync.Mutex
	conns   map[*websocket.Conn]struct{}
	closing bool
	clients sync.WaitGroup
}

// NewServer 创建推送服务；interval <= 0 时使用 DefaultInterval
func NewServer(interval time.Duration, log *zap.Logger) *Server {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		interval: interval,
		log:      log.Named("inspect"),
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// Publish 发布新快照，调用方之后不得修改 snap
func (s *Server) Publish(snap world.Snapshot) {
	s.mu.Lock()
	s.latest = snap
	s.version++
	s.mu.Unlock()
}

// Latest 返回最新快照及其版本号（从未发布时版本为 0）
func (s *Server) Latest() (world.Snapshot, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.version
}

// Handler 返回 HTTP 路由：/ws 推送快照流，/snapshot 返回最新快照
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	return mux
}

// Start 在 addr 上监听并在后台提供服务，返回实际监听地址
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("inspector listen %s: %w", addr, err)
	}
	s.httpServer = &http.Server{Handler: s.Handler()}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("inspector stopped", zap.Error(err))
		}
	}()
	s.log.Info("inspector listening", zap.String("addr", ln.Addr().String()))
	return ln.Addr().String(), nil
}

// Shutdown 停止服务，关闭全部 WebSocket 连接并等待其退出
// 开始关闭后新的 WebSocket 请求直接返回 503
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.connMu.Lock()
	s.closing = true
	for conn := range s.conns {
		conn.Close()
	}
	s.connMu.Unlock()

	s.clients.Wait()
	return err
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, version := s.Latest()
	if version == 0 {
		http.Error(w, "no snapshot published yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.log.Warn("encode snapshot", zap.Error(err))
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	// Add 与 closing 在同一把锁下，Shutdown 的 Wait 不会与之并发
	s.connMu.Lock()
	if s.closing {
		s.connMu.Unlock()
		http.Error(w, "inspector shutting down", http.StatusServiceUnavailable)
		return
	}
	s.clients.Add(1)
	s.connMu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		s.clients.Done()
		return
	}
	s.connMu.Lock()
	s.conns[conn] = struct{}{}
	s.connMu.Unlock()
	defer func() {
		s.connMu.Lock()
		delete(s.conns, conn)
		s.connMu.Unlock()
		conn.Close()
		s.clients.Done()
	}()

	s.log.Debug("inspector client connected", zap.String("remote", r.RemoteAddr))

	// 读循环只用于感知客户端断开
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var sent uint64
	for {
		select {
		case <-closed:
			s.log.Debug("inspector client disconnected", zap.String("remote", r.RemoteAddr))
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			snap, version := s.Latest()
			if version == 0 || version == sent {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				s.log.Debug("inspector write failed", zap.Error(err))
				return
			}
			sent = version
		}
	}
}
