package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

const (
	// CREATE3 proxy creation code. Only its keccak digest enters the address
	// computation; the bytecode the proxy later deploys never does.
	ProxyInitCodeHex = "67363d3d37363d34f03d5260086018f3"

	// Proxy hop input layout: 0xff (1) + deployer (20) + salt (32) + initcodeHash (32) = 85
	ProxyPrefixLen = 1 + 20
	ProxySaltLen   = 32
	ProxySuffixLen = 32
	ProxyInputLen  = ProxyPrefixLen + ProxySaltLen + ProxySuffixLen

	// Salt section of the proxy hop input: bytes [SaltOffset:SaltEnd).
	SaltOffset = ProxyPrefixLen
	SaltEnd    = ProxyPrefixLen + ProxySaltLen

	// Child hop input: rlp([proxyAddress, 1]) = list header (1) + 0x94 (1) + address (20) + nonce (1)
	ChildInputLen   = 23
	childAddrOffset = 2

	AddressLen = 20
	SaltLen    = 32

	// The proxy deploys the child with its first CREATE, so the nonce is
	// always 1. Standard rlp encodes it as the single byte 0x01.
	childNonce = uint64(1)
)

// Errors
var (
	ErrInvalidAddressLength = errors.New("deployer address must be 20 bytes")
	ErrInvalidSaltLength    = errors.New("salt must be 32 bytes")
)

// proxyInitCodeHash is keccak256 of ProxyInitCodeHex, constant per process.
var proxyInitCodeHash = [ProxySuffixLen]byte{
	0x21, 0xc3, 0x5d, 0xbe, 0x1b, 0x34, 0x4a, 0x24, 0x88, 0xcf, 0x33, 0x21, 0xd6, 0xce, 0x54, 0x2f,
	0x8e, 0x9f, 0x30, 0x55, 0x44, 0xff, 0x09, 0xe4, 0x99, 0x3a, 0x62, 0x31, 0x9a, 0x49, 0x7c, 0x1f,
}

// ProxyInitCode returns the proxy creation bytecode.
func ProxyInitCode() []byte {
	code, err := hex.DecodeString(ProxyInitCodeHex)
	if err != nil {
		panic(err)
	}
	return code
}

// ProxyInitCodeHash returns keccak256 of the proxy creation bytecode.
func ProxyInitCodeHash() [ProxySuffixLen]byte {
	return proxyInitCodeHash
}

// NewKeccak256 returns a keccak256 hasher for reuse across derivations.
func NewKeccak256() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// Keccak256 calculates the keccak256 hash of the input bytes
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		_, _ = h.Write(b)
	}
	return h.Sum(nil)
}

// PrimeProxyInput returns the proxy hop input with the deployer and initcode
// hash filled in and the salt section zeroed. Caller writes the 32-byte salt
// into [SaltOffset:SaltEnd] before hashing.
func PrimeProxyInput(deployer [AddressLen]byte) [ProxyInputLen]byte {
	var buf [ProxyInputLen]byte
	buf[0] = 0xff
	copy(buf[1:ProxyPrefixLen], deployer[:])
	copy(buf[SaltEnd:], proxyInitCodeHash[:])
	return buf
}

// PrimeChildInput returns rlp([zero address, nonce 1]). Caller patches the
// proxy address into bytes [2:22] before hashing. Encoding through the rlp
// codec pins down the single-byte nonce rule rather than assuming it.
func PrimeChildInput() [ChildInputLen]byte {
	data, err := rlp.EncodeToBytes([]interface{}{common.Address{}, childNonce})
	if err != nil {
		panic(fmt.Errorf("child input encoding: %w", err))
	}
	if len(data) != ChildInputLen {
		panic(fmt.Errorf("child input encoding: got %d bytes, want %d", len(data), ChildInputLen))
	}
	var buf [ChildInputLen]byte
	copy(buf[:], data)
	return buf
}

// DeriveInto computes the CREATE3 address for the salt already written into
// proxyInput, reusing the provided hasher to avoid allocations.
// proxyInput must be primed by PrimeProxyInput, childInput by PrimeChildInput,
// hashBuf must be at least 32 bytes and addrBuf 20 bytes.
func DeriveInto(hasher hash.Hash, proxyInput, childInput, hashBuf, addrBuf []byte) {
	hasher.Reset()
	hasher.Write(proxyInput)
	sum := hasher.Sum(hashBuf[:0])
	copy(childInput[childAddrOffset:childAddrOffset+AddressLen], sum[12:32])

	hasher.Reset()
	hasher.Write(childInput)
	sum = hasher.Sum(hashBuf[:0])
	copy(addrBuf, sum[12:32])
}

// ProxyAddress computes the first hop: the CREATE2 address of the proxy,
// keccak256(0xff ++ deployer ++ salt ++ initcodeHash)[12:].
func ProxyAddress(deployer [AddressLen]byte, salt [SaltLen]byte) [AddressLen]byte {
	input := PrimeProxyInput(deployer)
	copy(input[SaltOffset:SaltEnd], salt[:])
	var addr [AddressLen]byte
	copy(addr[:], Keccak256(input[:])[12:])
	return addr
}

// ChildAddress computes the second hop: the address of the contract the proxy
// deploys with nonce 1, keccak256(rlp([proxy, 1]))[12:].
func ChildAddress(proxy [AddressLen]byte) [AddressLen]byte {
	data, err := rlp.EncodeToBytes([]interface{}{common.Address(proxy), childNonce})
	if err != nil {
		panic(fmt.Errorf("child input encoding: %w", err))
	}
	var addr [AddressLen]byte
	copy(addr[:], Keccak256(data)[12:])
	return addr
}

// CalcAddr derives the CREATE3 contract address for a deployer and a 32-byte
// salt. Pure and total for valid-length inputs.
func CalcAddr(deployer []byte, salt []byte) ([AddressLen]byte, error) {
	var addr [AddressLen]byte
	if len(deployer) != AddressLen {
		return addr, ErrInvalidAddressLength
	}
	if len(salt) != SaltLen {
		return addr, ErrInvalidSaltLength
	}
	var d [AddressLen]byte
	var s [SaltLen]byte
	copy(d[:], deployer)
	copy(s[:], salt)
	return ChildAddress(ProxyAddress(d, s)), nil
}

// ParseAddress decodes a hex address string (with or without 0x) into 20 bytes.
func ParseAddress(addrHex string) ([AddressLen]byte, error) {
	var addr [AddressLen]byte
	h := strings.TrimSpace(addrHex)
	if len(h) >= 2 && (h[0:2] == "0x" || h[0:2] == "0X") {
		h = h[2:]
	}
	if len(h) != AddressLen*2 {
		return addr, fmt.Errorf("invalid address length: got %d hex chars, want %d: %w", len(h), AddressLen*2, ErrInvalidAddressLength)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return addr, fmt.Errorf("invalid address hex: %w", err)
	}
	copy(addr[:], b)
	return addr, nil
}

// ToChecksumAddress converts a 20-byte address to its EIP-55 checksummed
// string. Each hex character is uppercased iff the matching nibble of
// keccak256(lowercase hex) is >= 8.
func ToChecksumAddress(addr20 []byte) string {
	if len(addr20) != AddressLen {
		panic(errors.New("address must be 20 bytes"))
	}
	hexLower := hex.EncodeToString(addr20)
	hash := Keccak256([]byte(hexLower))
	var out strings.Builder
	out.Grow(2 + AddressLen*2)
	out.WriteString("0x")
	for i := 0; i < len(hexLower); i++ {
		c := hexLower[i]
		if c >= '0' && c <= '9' {
			out.WriteByte(c)
			continue
		}
		// the digest nibble at the character's position decides case
		n := (hash[i/2] >> uint(4*(1-i%2))) & 0xF
		if n >= 8 {
			out.WriteByte(c - ('a' - 'A'))
		} else {
			out.WriteByte(c)
		}
	}
	return out.String()
}
