// Package miner coordinates the parallel vanity salt search.
package miner

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/screa/create3-salt-miner/internal/config"
	"github.com/screa/create3-salt-miner/internal/crypto"
	"github.com/screa/create3-salt-miner/internal/logger"
	"github.com/screa/create3-salt-miner/pkg/types"
	"github.com/screa/create3-salt-miner/pkg/worker"
)

// Errors
var (
	ErrPrefixNotHex  = errors.New("prefix is not hex encoded")
	ErrPrefixTooLong = errors.New("prefix too long (max 20 characters)")
	ErrInvalidCount  = errors.New("result count must be at least 1")
)

// Workers check for a stop signal between batches, so a batch bounds how long
// a worker keeps grinding after a winner is decided.
const batchSize = 512

// Miner drives the parallel salt search for a single run
type Miner struct {
	config       *config.Config
	logger       *logger.Logger
	workerConfig *types.WorkerConfig
	attempts     int64

	mu      sync.Mutex
	results []*types.Result
	seen    map[string]struct{}
	done    chan struct{}
	once    sync.Once
}

// SanitizePrefix trims and lowercases a desired address prefix and validates
// it: hex digits only, at most 20 characters.
func SanitizePrefix(prefix string) (string, error) {
	p := strings.TrimSpace(prefix)
	if len(p) > 20 {
		return "", ErrPrefixTooLong
	}
	for _, c := range p {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return "", ErrPrefixNotHex
		}
	}
	return strings.ToLower(p), nil
}

// NewMiner validates the configuration and creates a miner instance.
// The logger may be nil to disable progress logging.
func NewMiner(cfg *config.Config, log *logger.Logger) (*Miner, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Count < 1 {
		return nil, ErrInvalidCount
	}

	deployer, err := crypto.ParseAddress(cfg.Deployer)
	if err != nil {
		return nil, err
	}

	prefix, err := SanitizePrefix(cfg.Prefix)
	if err != nil {
		return nil, err
	}

	workerConfig := &types.WorkerConfig{
		Deployer:   deployer,
		Prefix:     prefix,
		SaltPrefix: cfg.SaltPrefix,
		Verbose:    cfg.Verbose,
	}
	if prefix != "" {
		workerConfig.PrefixBytes = []byte(prefix)
	}

	return &Miner{
		config:       cfg,
		logger:       log,
		workerConfig: workerConfig,
		seen:         make(map[string]struct{}),
		done:         make(chan struct{}),
	}, nil
}

// Mine searches until one result is found or ctx is cancelled. It returns nil
// only when cancelled before a match.
func (m *Miner) Mine(ctx context.Context) *types.Result {
	results := m.run(ctx, 1)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// MineBatch searches until Count distinct results are accumulated or ctx is
// cancelled. Results are returned in completion order, which is not
// deterministic across workers.
func (m *Miner) MineBatch(ctx context.Context) []*types.Result {
	return m.run(ctx, m.config.Count)
}

func (m *Miner) run(ctx context.Context, count int) []*types.Result {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < m.config.Workers; i++ {
		g.Go(func() error {
			m.searchWorker(ctx, count)
			return nil
		})
	}

	// Periodic progress logging
	var logTicker *time.Ticker
	var logDone chan struct{}
	if m.config.Verbose && m.logger != nil {
		interval := time.Duration(m.config.LogInterval) * time.Second
		logTicker = time.NewTicker(interval)
		logDone = make(chan struct{})
		go m.periodicLogger(logTicker, logDone, start)

		m.logger.Printf("Mining started with %d workers, logging every %d seconds...",
			m.config.Workers, m.config.LogInterval)
	}

	_ = g.Wait()

	if logTicker != nil {
		logTicker.Stop()
		close(logDone)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	elapsed := time.Since(start)
	for _, r := range m.results {
		r.Duration = elapsed
	}
	return m.results
}

// searchWorker runs the grind loop for one goroutine until a stop is signalled
func (m *Miner) searchWorker(ctx context.Context, count int) {
	w := worker.NewWorker(m.workerConfig, &m.attempts)

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		default:
		}

		result := w.ProcessBatch(batchSize)
		if result == nil {
			continue
		}
		m.collect(result, count)
	}
}

// collect accepts a match into the bounded result set. Matches past the bound
// and duplicate salts are discarded, first observed wins.
func (m *Miner) collect(result *types.WorkerResult, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.results) >= count {
		return
	}
	if _, dup := m.seen[result.Salt]; dup {
		return
	}
	m.seen[result.Salt] = struct{}{}

	m.results = append(m.results, &types.Result{
		Salt:       result.Salt,
		Address:    result.Address,
		SaltDigest: result.SaltDigest,
		Attempts:   result.Attempts,
	})

	if len(m.results) == count {
		m.once.Do(func() { close(m.done) })
	}
}

// Stop stops the mining process
func (m *Miner) Stop() {
	m.once.Do(func() { close(m.done) })
}

// Attempts returns the total attempt count so far
func (m *Miner) Attempts() int64 {
	return atomic.LoadInt64(&m.attempts)
}

// Results returns the results accumulated so far
func (m *Miner) Results() []*types.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.Result, len(m.results))
	copy(out, m.results)
	return out
}

// periodicLogger logs mining progress at regular intervals
func (m *Miner) periodicLogger(ticker *time.Ticker, done chan struct{}, start time.Time) {
	for {
		select {
		case <-ticker.C:
			attempts := atomic.LoadInt64(&m.attempts)
			elapsed := time.Since(start)

			rate := 0.0
			if elapsed.Seconds() > 0 {
				rate = float64(attempts) / elapsed.Seconds()
			}

			m.mu.Lock()
			found := len(m.results)
			m.mu.Unlock()

			if found > 0 {
				m.logger.Printf("Progress: %d attempts, %.2f hashes/sec, %d result(s) so far",
					attempts, rate, found)
			} else {
				m.logger.Printf("Progress: %d attempts, %.2f hashes/sec, no match yet",
					attempts, rate)
			}
		case <-done:
			return
		}
	}
}
