package capmsg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedAddress is returned (wrapped) when a textual address fails to
// parse under the rules in the external-interfaces section: a missing tag,
// a missing peer id, or separators appearing in the wrong order.
var ErrMalformedAddress = errors.New("malformed actor address")

// ActorAddress is the triple (protocol tag, peer id, host) that forms a
// revocable capability. Its canonical textual form is "<tag>:<hex-peer-id>@<host>".
type ActorAddress struct {
	// Tag is the transport's fixed protocol identifier, e.g. "tcp",
	// "unix", "tor".
	Tag string

	// PeerID names the attached bridge within the remote router's peer
	// table.
	PeerID PeerID

	// Host is the transport-specific dial string. It may itself embed a
	// port or path and may contain '@' characters; only the first '@'
	// after the tag's ':' is treated as the separator.
	Host string
}

// NewActorAddress constructs an address from its three parts.
func NewActorAddress(tag string, id PeerID, host string) ActorAddress {
	return ActorAddress{Tag: tag, PeerID: id, Host: host}
}

// Format renders the canonical textual form "<tag>:<hex-peer-id>@<host>".
func (a ActorAddress) Format() string {
	return fmt.Sprintf("%s:%s@%s", a.Tag, a.PeerID.String(), a.Host)
}

// String implements fmt.Stringer via Format.
func (a ActorAddress) String() string {
	return a.Format()
}

// Equal reports whether two addresses carry the same tag, peer id, and host.
func (a ActorAddress) Equal(other ActorAddress) bool {
	return a.Tag == other.Tag && a.PeerID.Equal(other.PeerID) &&
		a.Host == other.Host
}

// ParseActorAddress parses the canonical textual form. The first ':'
// separates tag from peer id; the first '@' strictly after that ':'
// separates peer id from host. An empty tag, an empty peer id, or
// separators out of order is an error.
func ParseActorAddress(s string) (ActorAddress, error) {
	colonIdx := strings.IndexByte(s, ':')
	if colonIdx <= 0 {
		return ActorAddress{}, fmt.Errorf("%w: missing or empty tag in %q",
			ErrMalformedAddress, s)
	}

	rest := s[colonIdx+1:]
	atIdx := strings.IndexByte(rest, '@')
	if atIdx <= 0 {
		return ActorAddress{}, fmt.Errorf(
			"%w: missing or empty peer id in %q", ErrMalformedAddress, s)
	}

	tag := s[:colonIdx]
	peerHex := rest[:atIdx]
	host := rest[atIdx+1:]

	if host == "" {
		return ActorAddress{}, fmt.Errorf("%w: missing host in %q",
			ErrMalformedAddress, s)
	}

	id, err := ParsePeerID(peerHex)
	if err != nil {
		return ActorAddress{}, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}

	return ActorAddress{Tag: tag, PeerID: id, Host: host}, nil
}
