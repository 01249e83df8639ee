package worker

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/screa/create3-salt-miner/internal/crypto"
	"github.com/screa/create3-salt-miner/pkg/salt"
	"github.com/screa/create3-salt-miner/pkg/types"
)

func testDeployer(t *testing.T) [20]byte {
	t.Helper()
	addr, err := crypto.ParseAddress("5e17b14ADd6c386305A32928F985b29bbA34Eff5")
	require.NoError(t, err)
	return addr
}

func TestNewWorker(t *testing.T) {
	config := &types.WorkerConfig{
		Deployer:    testDeployer(t),
		Prefix:      "0000",
		PrefixBytes: []byte("0000"),
	}

	attempts := int64(0)
	worker := NewWorker(config, &attempts)
	require.NotNil(t, worker)
	require.Same(t, config, worker.config)
}

func TestWorkerMatchesBytes(t *testing.T) {
	addr20 := []byte{0x12, 0x34, 0x56, 0x78, 0x90, 0xab, 0xcd, 0xef, 0x12, 0x34, 0x56, 0x78, 0x90, 0xab, 0xcd, 0xef, 0x12, 0x34, 0x56, 0x78}
	tests := []struct {
		name     string
		prefix   string
		expected bool
	}{
		{
			name:     "empty prefix matches everything",
			prefix:   "",
			expected: true,
		},
		{
			name:     "prefix match",
			prefix:   "1234",
			expected: true,
		},
		{
			name:     "odd-length prefix match",
			prefix:   "123",
			expected: true,
		},
		{
			name:     "no match",
			prefix:   "9999",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &types.WorkerConfig{
				Deployer: testDeployer(t),
				Prefix:   tt.prefix,
			}
			if tt.prefix != "" {
				config.PrefixBytes = []byte(tt.prefix)
			}

			attempts := int64(0)
			worker := NewWorker(config, &attempts)
			require.Equal(t, tt.expected, worker.matchesBytes(addr20))
		})
	}
}

func TestWorkerAttempt(t *testing.T) {
	deployer := testDeployer(t)
	config := &types.WorkerConfig{Deployer: deployer}

	attempts := int64(0)
	worker := NewWorker(config, &attempts)

	result := worker.Attempt()
	require.NotNil(t, result)
	require.True(t, result.IsMatch, "empty prefix must match the first candidate")
	require.Len(t, result.Salt, salt.DefaultLength)
	require.Equal(t, int64(1), result.Attempts)

	// the reported address and digest must re-derive from the salt string
	s := salt.ToSaltBytes(result.Salt)
	require.Equal(t, salt.DigestHex(s), result.SaltDigest)

	addr, err := crypto.CalcAddr(deployer[:], s[:])
	require.NoError(t, err)
	require.Equal(t, "0x"+hex.EncodeToString(addr[:]), strings.ToLower(result.Address))
	require.Equal(t, crypto.ToChecksumAddress(addr[:]), result.Address)
}

func TestWorkerAttemptSaltPrefix(t *testing.T) {
	config := &types.WorkerConfig{
		Deployer:   testDeployer(t),
		SaltPrefix: "testpfx_",
	}

	attempts := int64(0)
	worker := NewWorker(config, &attempts)

	result := worker.Attempt()
	require.NotNil(t, result)
	require.True(t, strings.HasPrefix(result.Salt, "testpfx_"))
	require.Len(t, result.Salt, len("testpfx_")+salt.PrefixedTailLength)
}

func TestWorkerProcessBatch(t *testing.T) {
	config := &types.WorkerConfig{
		Deployer:    testDeployer(t),
		Prefix:      "a",
		PrefixBytes: []byte("a"),
	}

	attempts := int64(0)
	worker := NewWorker(config, &attempts)

	// 1/16 odds per attempt; a few batches are ample
	var result *types.WorkerResult
	for i := 0; i < 100 && result == nil; i++ {
		result = worker.ProcessBatch(64)
	}
	require.NotNil(t, result)
	require.True(t, result.IsMatch)
	require.True(t, strings.HasPrefix(strings.ToLower(result.Address), "0xa"))
}
