package capmsg

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// PeerIDSize is the length in bytes of a PeerID. The wire format allows a
// variable-length id; every implementation in this module emits exactly
// PeerIDSize bytes.
const PeerIDSize = 32

// PeerID is an unguessable capability identifier. Two ids are equal iff
// their underlying bytes are equal; the value has no internal structure.
type PeerID [PeerIDSize]byte

// NewPeerID mints a fresh, cryptographically random peer id.
func NewPeerID() (PeerID, error) {
	var id PeerID
	if _, err := rand.Read(id[:]); err != nil {
		return PeerID{}, fmt.Errorf("unable to generate peer id: %w", err)
	}

	return id, nil
}

// String renders the peer id as lowercase hex.
func (p PeerID) String() string {
	return hex.EncodeToString(p[:])
}

// Equal reports whether two peer ids hold the same bytes.
func (p PeerID) Equal(other PeerID) bool {
	return p == other
}

// Bytes returns the raw id bytes.
func (p PeerID) Bytes() []byte {
	return p[:]
}

// ParsePeerID decodes a hex string (either case) into a PeerID. The decoded
// length must match PeerIDSize exactly.
func ParsePeerID(s string) (PeerID, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return PeerID{}, fmt.Errorf("%w: peer id is not valid hex: %v",
			ErrMalformedAddress, err)
	}

	if len(raw) != PeerIDSize {
		return PeerID{}, fmt.Errorf("%w: peer id must be %d bytes, got %d",
			ErrMalformedAddress, PeerIDSize, len(raw))
	}

	var id PeerID
	copy(id[:], raw)

	return id, nil
}

// PeerIDFromBytes copies a raw byte slice into a PeerID, rejecting any
// slice whose length is not PeerIDSize; callers that read off the wire
// use this for the raw id bytes.
func PeerIDFromBytes(raw []byte) (PeerID, error) {
	if len(raw) != PeerIDSize {
		return PeerID{}, fmt.Errorf("%w: peer id must be %d bytes, got %d",
			ErrMalformedAddress, PeerIDSize, len(raw))
	}

	var id PeerID
	copy(id[:], raw)

	return id, nil
}
