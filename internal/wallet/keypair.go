package wallet

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"github.com/blocto/solana-go-sdk/types"
)

// DecodeKeypair restores a signing account from a solana-keygen keypair file.
// The canonical format is a JSON array of 64 integers (seed followed by
// public key); a base64 string of the same 64 bytes is accepted for
// compatibility with keypairs exported by other tooling.
func DecodeKeypair(data []byte) (types.Account, error) {
	keyBytes, err := decodeKeyBytes(data)
	if err != nil {
		return types.Account{}, err
	}

	acc, err := types.AccountFromBytes(keyBytes)
	if err != nil {
		return types.Account{}, fmt.Errorf("restore account: %w", err)
	}

	// The trailing 32 bytes must be the public key derived from the seed.
	// A mismatch means a corrupted or hand-edited keypair file.
	derived := ed25519.NewKeyFromSeed(keyBytes[:ed25519.SeedSize]).Public().(ed25519.PublicKey)
	if !bytes.Equal(derived, keyBytes[32:]) {
		return types.Account{}, fmt.Errorf("keypair public key does not match its seed")
	}
	if !isOnCurve(derived) {
		return types.Account{}, fmt.Errorf("keypair public key is not on the ed25519 curve")
	}

	return acc, nil
}

func decodeKeyBytes(data []byte) ([]byte, error) {
	var keyBytes []byte
	if err := json.Unmarshal(data, &keyBytes); err == nil && len(keyBytes) == ed25519.PrivateKeySize {
		return keyBytes, nil
	}

	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("keypair file is not a JSON byte array: %w", err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("unexpected keypair length: got %d, want %d", len(ints), ed25519.PrivateKeySize)
	}

	keyBytes = make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("keypair byte out of range at index %d: %d", i, v)
		}
		keyBytes[i] = byte(v)
	}
	return keyBytes, nil
}
