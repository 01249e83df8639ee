package types

import "time"

// Result represents a found vanity salt
type Result struct {
	Salt       string // salt string whose keccak digest is the on-chain salt
	Address    string // EIP-55 checksummed contract address
	SaltDigest string // lowercase hex of keccak256(salt), the 32-byte form
	Attempts   int64
	Duration   time.Duration
}

// WorkerConfig contains configuration shared by search workers
type WorkerConfig struct {
	Deployer   [20]byte
	Prefix     string // sanitized: trimmed, lowercased, hex only
	SaltPrefix string
	Verbose    bool

	// Pre-converted prefix as lowercase hex chars for allocation-free
	// matching in the hot loop. Nil when the prefix is empty.
	PrefixBytes []byte
}

// WorkerResult represents a single attempt outcome from a worker
type WorkerResult struct {
	Salt       string // candidate salt string
	SaltDigest string // lowercase hex of the 32-byte salt, set on match
	Address    string // EIP-55 checksummed, set on match
	Attempts   int64
	IsMatch    bool
}
