package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bastiangx/phrasemeter/pkg/config"
	"github.com/bastiangx/phrasemeter/pkg/strength"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for phrase scoring
type Server struct {
	engine  *strength.Engine
	config  *config.Config
	quotes  int
	decoder *msgpack.Decoder
	out     *bufio.Writer
	served  uint64
}

// NewServer creates a server reading requests from r and writing responses to w.
// quotes is the size of the loaded corpus, reported by health pings.
func NewServer(engine *strength.Engine, cfg *config.Config, quotes int, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		engine:  engine,
		config:  cfg,
		quotes:  quotes,
		decoder: msgpack.NewDecoder(bufio.NewReader(r)),
		out:     bufio.NewWriter(w),
	}
}

// Start processes requests until the input is exhausted. A message that is
// well framed but does not decode into a Request is answered with an error and
// the session continues. Only a broken stream, which can no longer be framed,
// ends the session.
func (s *Server) Start() error {
	log.Debug("Starting Server.")
	for {
		var raw msgpack.RawMessage
		if err := s.decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Reading request: %v", err)
			s.sendError("", "malformed request stream", CodeBadRequest)
			return fmt.Errorf("read request: %w", err)
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			log.Errorf("Decoding request: %v", err)
			s.sendError(requestID(raw), fmt.Sprintf("malformed request: %v", err), CodeBadRequest)
			continue
		}
		s.handleRequest(req)
	}
}

// requestID recovers the id of a request that failed typed decoding, so the
// client can still correlate the error.
func requestID(raw msgpack.RawMessage) string {
	var fields map[string]any
	if err := msgpack.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	id, _ := fields["id"].(string)
	return id
}

// Served returns the number of requests answered so far.
func (s *Server) Served() uint64 {
	return s.served
}

func (s *Server) handleRequest(req Request) {
	switch req.Action {
	case "", ActionScore:
		s.handleScore(req)
	case ActionHealth:
		s.sendResponse(req.ID, HealthResponse{
			ID:     req.ID,
			Status: "ok",
			Quotes: s.quotes,
			Served: s.served,
		})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), CodeBadRequest)
	}
}

func (s *Server) handleScore(req Request) {
	if limit := s.config.Server.MaxPhraseLen; limit > 0 && len(req.Phrase) > limit {
		s.sendError(req.ID, fmt.Sprintf("phrase exceeds maximum length of %d bytes", limit), CodeTooLong)
		return
	}

	opts := s.config.ScoreOptions()
	opts.Penalty = req.Penalty

	start := time.Now()
	res, err := s.engine.Score(req.Phrase, opts)
	elapsed := time.Since(start)
	if err != nil {
		log.Debugf("Rejected phrase for %q: %v", req.ID, err)
		s.sendError(req.ID, err.Error(), CodeBadRequest)
		return
	}

	s.sendResponse(req.ID, toResponse(req.ID, res, elapsed))
}

func toResponse(id string, res strength.Result, elapsed time.Duration) ScoreResponse {
	resp := ScoreResponse{
		ID:         id,
		Phrase:     res.Phrase,
		Words:      res.WordCount,
		Entropy:    res.Entropy,
		Penalty:    res.Penalty,
		Overridden: res.PenaltyOverridden,
		Adjusted:   res.AdjustedEntropy,
		Offline:    CrackTime(res.Offline),
		Online:     CrackTime(res.Online),
		TimeTaken:  elapsed.Microseconds(),
	}
	if res.Breakdown != nil {
		for _, sig := range res.Breakdown.Signals {
			if sig.Score != 0 {
				resp.Signals = append(resp.Signals, SignalScore{Name: sig.Name, Score: sig.Score})
			}
		}
	}
	if res.Reference != nil {
		ref := Reference(*res.Reference)
		resp.Reference = &ref
	}
	return resp
}

// sendResponse encodes one response and flushes it so the client sees it
// before the next request is read. A response that cannot be encoded is
// replaced by an internal error.
func (s *Server) sendResponse(id string, response any) {
	s.served++
	data, err := msgpack.Marshal(response)
	if err != nil {
		log.Errorf("Encoding response: %v", err)
		data, err = msgpack.Marshal(ScoreError{ID: id, Error: "internal server error", Code: CodeInternal})
		if err != nil {
			log.Errorf("Encoding error response: %v", err)
			return
		}
	}
	if _, err := s.out.Write(data); err != nil {
		log.Errorf("Writing response: %v", err)
		return
	}
	if err := s.out.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(id, ScoreError{ID: id, Error: message, Code: code})
}
