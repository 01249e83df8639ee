package miner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/screa/create3-salt-miner/internal/config"
	"github.com/screa/create3-salt-miner/internal/crypto"
	"github.com/screa/create3-salt-miner/pkg/salt"
	"github.com/screa/create3-salt-miner/pkg/types"
)

const testDeployer = "5e17b14ADd6c386305A32928F985b29bbA34Eff5"

func testConfig(prefix string) *config.Config {
	cfg := config.NewConfig()
	cfg.Deployer = testDeployer
	cfg.Prefix = prefix
	return cfg
}

func requireValidResult(t *testing.T, result *types.Result, prefix string) {
	t.Helper()
	require.True(t, strings.HasPrefix(strings.ToLower(result.Address)[2:], strings.ToLower(prefix)))

	// salt string, digest and address must agree
	s := salt.ToSaltBytes(result.Salt)
	require.Equal(t, salt.DigestHex(s), result.SaltDigest)
	deployer, err := crypto.ParseAddress(testDeployer)
	require.NoError(t, err)
	addr, err := crypto.CalcAddr(deployer[:], s[:])
	require.NoError(t, err)
	require.Equal(t, crypto.ToChecksumAddress(addr[:]), result.Address)
}

func TestSanitizePrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
		err    error
	}{
		{name: "empty", prefix: "", want: ""},
		{name: "lowercased", prefix: "Def", want: "def"},
		{name: "trimmed", prefix: " 00 ", want: "00"},
		{name: "digits", prefix: "123", want: "123"},
		{name: "not hex", prefix: "zz", err: ErrPrefixNotHex},
		{name: "0x rejected", prefix: "0x123", err: ErrPrefixNotHex},
		{name: "words rejected", prefix: "lightning mcqueen", err: ErrPrefixNotHex},
		{name: "too long", prefix: strings.Repeat("0", 21), err: ErrPrefixTooLong},
		{name: "max length", prefix: strings.Repeat("0", 20), want: strings.Repeat("0", 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePrefix(tt.prefix)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNewMinerValidation(t *testing.T) {
	cfg := testConfig("zz")
	_, err := NewMiner(cfg, nil)
	require.ErrorIs(t, err, ErrPrefixNotHex)

	cfg = testConfig("")
	cfg.Deployer = "nothex"
	_, err = NewMiner(cfg, nil)
	require.ErrorIs(t, err, crypto.ErrInvalidAddressLength)

	cfg = testConfig("")
	cfg.Count = 0
	_, err = NewMiner(cfg, nil)
	require.ErrorIs(t, err, ErrInvalidCount)

	cfg = testConfig("abc")
	m, err := NewMiner(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestMineEmptyPrefix(t *testing.T) {
	m, err := NewMiner(testConfig(""), nil)
	require.NoError(t, err)

	result := m.Mine(context.Background())
	require.NotNil(t, result)
	requireValidResult(t, result, "")
	require.Positive(t, result.Attempts)
}

func TestMinePrefix(t *testing.T) {
	m, err := NewMiner(testConfig("a"), nil)
	require.NoError(t, err)

	result := m.Mine(context.Background())
	require.NotNil(t, result)
	requireValidResult(t, result, "a")
}

func TestMinePrefixCaseInsensitive(t *testing.T) {
	m, err := NewMiner(testConfig("A"), nil)
	require.NoError(t, err)

	result := m.Mine(context.Background())
	require.NotNil(t, result)
	requireValidResult(t, result, "a")
}

func TestMineSaltPrefix(t *testing.T) {
	cfg := testConfig("1")
	cfg.SaltPrefix = "testpfx_"
	m, err := NewMiner(cfg, nil)
	require.NoError(t, err)

	result := m.Mine(context.Background())
	require.NotNil(t, result)
	requireValidResult(t, result, "1")
	require.True(t, strings.HasPrefix(result.Salt, "testpfx_"))
}

func TestMineBatch(t *testing.T) {
	cfg := testConfig("0")
	cfg.Count = 3
	m, err := NewMiner(cfg, nil)
	require.NoError(t, err)

	results := m.MineBatch(context.Background())
	require.Len(t, results, 3)

	seen := make(map[string]struct{})
	for _, result := range results {
		requireValidResult(t, result, "0")
		_, dup := seen[result.Salt]
		require.False(t, dup, "batch results must have distinct salts")
		seen[result.Salt] = struct{}{}
	}
}

func TestMineCancel(t *testing.T) {
	// long enough prefix that the deadline fires first
	m, err := NewMiner(testConfig("0000000000"), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result := m.Mine(ctx)
	require.Nil(t, result)
}

func TestMineStop(t *testing.T) {
	m, err := NewMiner(testConfig("0000000000"), nil)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		m.Stop()
	}()

	result := m.Mine(context.Background())
	require.Nil(t, result)
}
