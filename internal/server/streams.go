package server

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/vanishing-point-mcp/internal/config"
	"github.com/ironsheep/vanishing-point-mcp/internal/pipeline"
	"github.com/ironsheep/vanishing-point-mcp/internal/vanishing"
)

// DefaultStream is the stream used when a tool call names none. It always
// exists and cannot be closed.
const DefaultStream = "default"

// stream is one camera stream: a pipeline plus the lock serialising its
// frames, since filter history depends on frame order.
type stream struct {
	mu       sync.Mutex
	pipeline *pipeline.Pipeline
}

// process runs fn with exclusive access to the stream's pipeline.
func (st *stream) process(fn func(p *pipeline.Pipeline)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(st.pipeline)
}

// streamRegistry holds the open streams by id.
type streamRegistry struct {
	mu      sync.RWMutex
	base    config.Config
	logger  *zap.SugaredLogger
	streams map[string]*stream
}

func newStreamRegistry(base config.Config, logger *zap.SugaredLogger) (*streamRegistry, error) {
	r := &streamRegistry{
		base:    base,
		logger:  logger,
		streams: make(map[string]*stream),
	}
	st, err := r.newStream(DefaultStream, base)
	if err != nil {
		return nil, err
	}
	r.streams[DefaultStream] = st
	return r, nil
}

func (r *streamRegistry) newStream(id string, cfg config.Config) (*stream, error) {
	p, err := pipeline.New(cfg, vanishing.NewRandSampler(), r.logger.With("stream", id))
	if err != nil {
		return nil, err
	}
	return &stream{pipeline: p}, nil
}

// open creates a stream whose configuration is the base configuration with
// overrides applied, and returns its id.
func (r *streamRegistry) open(overrides json.RawMessage) (string, config.Config, error) {
	cfg, err := r.base.Merge(overrides)
	if err != nil {
		return "", config.Config{}, err
	}

	id := uuid.NewString()
	st, err := r.newStream(id, cfg)
	if err != nil {
		return "", config.Config{}, err
	}

	r.mu.Lock()
	r.streams[id] = st
	r.mu.Unlock()

	r.logger.Infow("stream opened", "stream", id)
	return id, cfg, nil
}

// get returns the stream with the given id; an empty id selects the default.
func (r *streamRegistry) get(id string) (*stream, string, error) {
	if id == "" {
		id = DefaultStream
	}
	r.mu.RLock()
	st, ok := r.streams[id]
	r.mu.RUnlock()
	if !ok {
		return nil, id, fmt.Errorf("unknown stream: %s", id)
	}
	return st, id, nil
}

// close removes a stream. The default stream cannot be closed.
func (r *streamRegistry) close(id string) error {
	if id == "" || id == DefaultStream {
		return fmt.Errorf("the %s stream cannot be closed", DefaultStream)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[id]; !ok {
		return fmt.Errorf("unknown stream: %s", id)
	}
	delete(r.streams, id)
	r.logger.Infow("stream closed", "stream", id)
	return nil
}

// ids returns the open stream ids in sorted order.
func (r *streamRegistry) ids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.streams))
	for id := range r.streams {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
