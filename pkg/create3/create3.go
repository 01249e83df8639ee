// Package create3 exposes the library-level boundary of the miner: address
// derivation and vanity salt search over a CREATE3 deployer.
package create3

import (
	"context"

	"github.com/screa/create3-salt-miner/internal/config"
	"github.com/screa/create3-salt-miner/internal/crypto"
	"github.com/screa/create3-salt-miner/pkg/miner"
	"github.com/screa/create3-salt-miner/pkg/salt"
	"github.com/screa/create3-salt-miner/pkg/types"
)

// DeriveAddress computes the CREATE3 contract address for a deployer and a
// salt input, returning the EIP-55 checksummed form. The deployer must be 40
// hex characters (0x tolerated). A salt input of exactly 64 hex characters is
// used as the raw 32-byte salt; anything else is hashed as a UTF-8 string.
func DeriveAddress(deployerHex, saltInput string) (string, error) {
	deployer, err := crypto.ParseAddress(deployerHex)
	if err != nil {
		return "", err
	}
	s := salt.Parse(saltInput)
	addr, err := crypto.CalcAddr(deployer[:], s[:])
	if err != nil {
		return "", err
	}
	return crypto.ToChecksumAddress(addr[:]), nil
}

// FindVanitySalt searches until a salt is found whose CREATE3 address starts
// with prefix. saltPrefix, when non-empty, is prepended to every candidate
// salt string. Runs unbounded until a match.
func FindVanitySalt(deployerHex, prefix, saltPrefix string) (*types.Result, error) {
	return FindVanitySaltContext(context.Background(), deployerHex, prefix, saltPrefix)
}

// FindVanitySaltContext is FindVanitySalt with caller-controlled cancellation.
// It returns ctx.Err() when cancelled before a match.
func FindVanitySaltContext(ctx context.Context, deployerHex, prefix, saltPrefix string) (*types.Result, error) {
	cfg := config.NewConfig()
	cfg.Deployer = deployerHex
	cfg.Prefix = prefix
	cfg.SaltPrefix = saltPrefix

	m, err := miner.NewMiner(cfg, nil)
	if err != nil {
		return nil, err
	}
	result := m.Mine(ctx)
	if result == nil {
		return nil, ctx.Err()
	}
	return result, nil
}

// FindVanitySaltBatch searches until count distinct salts are found, each
// yielding an address with the given prefix.
func FindVanitySaltBatch(deployerHex, prefix string, count uint) ([]*types.Result, error) {
	return FindVanitySaltBatchContext(context.Background(), deployerHex, prefix, count)
}

// FindVanitySaltBatchContext is FindVanitySaltBatch with caller-controlled
// cancellation. It returns ctx.Err() when cancelled before count matches.
func FindVanitySaltBatchContext(ctx context.Context, deployerHex, prefix string, count uint) ([]*types.Result, error) {
	if count == 0 {
		return nil, miner.ErrInvalidCount
	}

	cfg := config.NewConfig()
	cfg.Deployer = deployerHex
	cfg.Prefix = prefix
	cfg.Count = int(count)

	m, err := miner.NewMiner(cfg, nil)
	if err != nil {
		return nil, err
	}
	results := m.MineBatch(ctx)
	if len(results) < int(count) {
		return results, ctx.Err()
	}
	return results, nil
}
