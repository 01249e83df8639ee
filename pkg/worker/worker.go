package worker

import (
	"encoding/hex"
	"hash"
	"sync/atomic"

	"github.com/screa/create3-salt-miner/internal/crypto"
	"github.com/screa/create3-salt-miner/pkg/salt"
	"github.com/screa/create3-salt-miner/pkg/types"
)

// Worker handles candidate salt generation, derivation and matching
type Worker struct {
	config   *types.WorkerConfig
	attempts *int64

	// Pre-primed inputs and scratch buffers, reused every attempt
	hasher     hash.Hash
	proxyInput [crypto.ProxyInputLen]byte
	childInput [crypto.ChildInputLen]byte
	hashBuf    [32]byte
	addrBuf    [20]byte
	addrHexBuf [40]byte // lowercase hex of addrBuf for prefix matching
}

// NewWorker creates a new worker instance
func NewWorker(config *types.WorkerConfig, attempts *int64) *Worker {
	return &Worker{
		config:     config,
		attempts:   attempts,
		hasher:     crypto.NewKeccak256(),
		proxyInput: crypto.PrimeProxyInput(config.Deployer),
		childInput: crypto.PrimeChildInput(),
	}
}

// Attempt generates one candidate salt, derives its address and checks it
// against the prefix criterion.
func (w *Worker) Attempt() *types.WorkerResult {
	candidate, err := salt.Candidate(w.config.SaltPrefix)
	if err != nil {
		return nil
	}

	// 32-byte salt = keccak256(salt string), written straight into the
	// proxy hop input
	w.hasher.Reset()
	w.hasher.Write([]byte(candidate))
	sum := w.hasher.Sum(w.hashBuf[:0])
	copy(w.proxyInput[crypto.SaltOffset:crypto.SaltEnd], sum)

	crypto.DeriveInto(w.hasher, w.proxyInput[:], w.childInput[:], w.hashBuf[:], w.addrBuf[:])

	atomic.AddInt64(w.attempts, 1)

	if !w.matchesBytes(w.addrBuf[:]) {
		return &types.WorkerResult{
			Salt:     candidate,
			Attempts: atomic.LoadInt64(w.attempts),
		}
	}

	return &types.WorkerResult{
		Salt:       candidate,
		SaltDigest: hex.EncodeToString(w.proxyInput[crypto.SaltOffset:crypto.SaltEnd]),
		Address:    crypto.ToChecksumAddress(w.addrBuf[:]),
		Attempts:   atomic.LoadInt64(w.attempts),
		IsMatch:    true,
	}
}

// ProcessBatch runs up to batchSize attempts and returns the first match,
// or nil if the batch produced none.
func (w *Worker) ProcessBatch(batchSize int) *types.WorkerResult {
	for i := 0; i < batchSize; i++ {
		result := w.Attempt()
		if result != nil && result.IsMatch {
			return result
		}
	}
	return nil
}

// matchesBytes checks the raw 20-byte address against the configured prefix
// without allocating. An empty prefix matches everything.
func (w *Worker) matchesBytes(addr20 []byte) bool {
	if len(w.config.PrefixBytes) == 0 {
		return true
	}
	hexEncode(w.addrHexBuf[:], addr20)
	for i, b := range w.config.PrefixBytes {
		if w.addrHexBuf[i] != b {
			return false
		}
	}
	return true
}

// hexEncode encodes src into dst as lowercase hexadecimal.
// dst must be at least len(src)*2 bytes.
func hexEncode(dst, src []byte) {
	const hextable = "0123456789abcdef"
	for i, v := range src {
		dst[i*2] = hextable[v>>4]
		dst[i*2+1] = hextable[v&0x0f]
	}
}
