package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/tripserve/pkg/cache"
	"github.com/bastiangx/tripserve/pkg/lookup"
	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// MaxQueryLen is the longest query, in characters, either transport accepts.
const MaxQueryLen = 256

// Backend is the engine as seen by the transports.
type Backend interface {
	Handle(ctx context.Context, req model.Request) model.Response
	ClearCache(ctx context.Context)
	CacheStats() cache.Stats
	Places() *lookup.Index
	Limit() int
}

// Server handles msgpack IPC over a reader and writer pair.
type Server struct {
	engine  Backend
	version string
	dec     *msgpack.Decoder
	enc     *msgpack.Encoder
}

// NewServer creates a server on stdin and stdout.
func NewServer(engine Backend, version string) *Server {
	return NewServerWithIO(engine, version, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server on r and w.
func NewServerWithIO(engine Backend, version string, r io.Reader, w io.Writer) *Server {
	return &Server{
		engine:  engine,
		version: version,
		dec:     msgpack.NewDecoder(r),
		enc:     msgpack.NewEncoder(w),
	}
}

// Start writes the ready message and serves requests until the input ends
// or ctx is done. A clean end of input is not an error.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting IPC server.")
	s.sendResponse(StatusResponse{Status: "ready", Version: s.version})

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				log.Debug("IPC input closed")
				return nil
			}
			log.Errorf("Reading request: %v", err)
			return err
		}
		s.handleRequest(ctx, raw)
	}
}

// handleRequest decodes one message and dispatches on its action.
func (s *Server) handleRequest(ctx context.Context, raw msgpack.RawMessage) {
	var req SuggestRequest
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		log.Errorf("Unmarshaling request: %v", err)
		s.sendError("", "invalid request", 400)
		return
	}

	switch req.Action {
	case "", ActionSuggest:
		s.handleSuggest(ctx, req)
	case ActionHealth:
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", Version: s.version})
	case ActionClearCache:
		s.engine.ClearCache(ctx)
		log.Debug("cache cleared")
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok"})
	case ActionStats:
		s.sendResponse(StatsResponse{
			ID:     req.ID,
			Status: "ok",
			Cache:  s.engine.CacheStats(),
			Places: s.engine.Places().Len(),
			Limit:  s.engine.Limit(),
		})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

func (s *Server) handleSuggest(ctx context.Context, req SuggestRequest) {
	if utf8.RuneCountInString(req.Query) > MaxQueryLen {
		log.Debug("Query is too long in request")
		s.sendError(req.ID, fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLen), 400)
		return
	}

	start := time.Now()
	resp := s.engine.Handle(ctx, model.Request{
		Query:          req.Query,
		CursorPosition: req.Cursor,
		Context:        req.Context,
	})
	elapsed := time.Since(start)

	suggestions := toWire(resp.Suggestions, req.Limit)
	out := SuggestResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		Entities:    resp.Entities,
		Source:      string(resp.Source),
		TimeTaken:   elapsed.Microseconds(),
	}
	if !resp.Intent.IsNone() {
		out.Intent = string(resp.Intent)
	}
	if resp.NextSlot != model.SlotNone {
		out.NextSlot = string(resp.NextSlot)
	}
	s.sendResponse(out)
}

// toWire converts suggestions, keeping at most limit selectable entries when
// limit is positive. Selectable entries are ranked from 1 in list order.
func toWire(in []model.Suggestion, limit int) []WireSuggestion {
	out := make([]WireSuggestion, 0, len(in))
	var rank uint16
	for _, sg := range in {
		w := WireSuggestion{
			Text:        sg.Text,
			EntityType:  sg.EntityType,
			Confidence:  sg.Confidence,
			Selectable:  sg.Selectable,
			Placeholder: sg.IsPlaceholder,
		}
		if sg.Selectable {
			if limit > 0 && int(rank) == limit {
				continue
			}
			rank++
			w.Rank = rank
		}
		out = append(out, w)
	}
	return out
}

// sendResponse encodes response onto the output stream.
func (s *Server) sendResponse(response any) {
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}
