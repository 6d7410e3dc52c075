// Package ws exposes the terrain stream to rendering clients over a
// websocket. The client opens with HELLO, receives WELCOME with the world
// parameters, then reports its position with POS messages and receives a
// CHUNK frame for every heightfield generated anywhere in the world.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"aeroterra.dev/internal/protocol"
	"aeroterra.dev/internal/sim/flight"
)

type Server struct {
	sim *flight.Sim
	log *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(sim *flight.Sim, logger *log.Logger) *Server {
	return &Server{
		sim: sim,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		observerID, out := s.handshake(conn)
		if observerID == "" {
			return
		}
		s.sim.Join() <- flight.JoinRequest{ObserverID: observerID, Out: out}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			if base.Type != protocol.TypePos {
				continue
			}
			var pos protocol.PosMsg
			if err := json.Unmarshal(msg, &pos); err != nil {
				continue
			}
			if pos.ProtocolVersion != protocol.Version {
				continue
			}
			s.sim.Inbox() <- flight.PosUpdate{ObserverID: observerID, Pos: pos.Pos}
		}

		// Cleanup.
		s.sim.Leave() <- observerID
	}
}

func (s *Server) handshake(conn *websocket.Conn) (observerID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		s.refuse(conn, protocol.ErrProtoBadRequest, "expected HELLO")
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		s.refuse(conn, protocol.ErrProtoBadRequest, "malformed HELLO")
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		s.refuse(conn, protocol.ErrProtoBadRequest, "unsupported protocol_version")
		return "", nil
	}
	if hello.ObserverName == "" {
		s.refuse(conn, protocol.ErrBadRequest, "observer_name required")
		return "", nil
	}

	observerID = uuid.NewString()
	tickRateHz, squareSize, detail, roughness, seed := s.sim.WorldParams()
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ObserverID:      observerID,
		WorldParams: protocol.WorldParams{
			TickRateHz: tickRateHz,
			SquareSize: squareSize,
			Detail:     detail,
			Roughness:  roughness,
			Seed:       seed,
		},
	}
	b, err := json.Marshal(welcome)
	if err != nil {
		return "", nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return "", nil
	}

	s.log.Printf("observer %s (%q) connected", observerID, hello.ObserverName)
	return observerID, make(chan []byte, 256)
}

func (s *Server) refuse(conn *websocket.Conn, code, message string) {
	b, _ := json.Marshal(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
	_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = conn.WriteMessage(websocket.TextMessage, b)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message),
		time.Now().Add(time.Second))
}
