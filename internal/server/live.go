package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	sketch "github.com/gogpu/sketch"
	"github.com/gogpu/sketch/grid"
)

const writeWait = 10 * time.Second

// session is one live connection. Frames are coalesced by a Controller on
// a per-connection TickScheduler; gorilla connections allow one writer at
// a time, so every write goes through send.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (ss *session) send(v any) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	_ = ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return ss.conn.WriteJSON(v)
}

func (s *Server) live(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if _, ok := err.(websocket.HandshakeError); !ok {
			s.log.Warn("server: upgrade", "err", err)
		}
		return
	}
	ss := &session{conn: conn}
	defer conn.Close()
	conn.SetReadLimit(s.maxUpload)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sched := sketch.NewTickScheduler(s.frame)
	go func() { _ = sched.Run(ctx) }()

	ctrl := sketch.NewController(s.pipeline, sched,
		sketch.WithOnResult(func(res *sketch.Result) {
			if err := ss.send(newPredictResponse(res)); err != nil {
				s.log.Debug("server: live write", "err", err)
				cancel()
			}
		}),
		sketch.WithOnError(func(err error) {
			_ = ss.send(ErrorResponse{Error: err.Error()})
		}))

	s.log.Info("server: live session opened", "remote", r.RemoteAddr)
	defer s.log.Info("server: live session closed", "remote", r.RemoteAddr)

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("server: live read", "err", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		if kind != websocket.BinaryMessage {
			_ = ss.send(ErrorResponse{Error: "expected a binary PNG frame"})
			continue
		}
		img, _, err := s.decode(msg)
		if errors.Is(err, ErrImageTooLarge) {
			_ = ss.send(ErrorResponse{Error: err.Error()})
			continue
		}
		if err != nil {
			_ = ss.send(ErrorResponse{Error: "invalid image frame"})
			continue
		}
		ctrl.Trigger(grid.FromImage(img))
	}
}
