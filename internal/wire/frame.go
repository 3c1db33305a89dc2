// Package wire implements the length-prefixed request/reply framing and
// the RemoteHandle operation built on top of it.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/quietlane/capwire/internal/capmsg"
)

// DefaultMaxMsgSize is the reference bound from §4.3: requests declaring a
// larger body are rejected before any allocation.
const DefaultMaxMsgSize = 4 * 1024 * 1024

// RequestHeader is the parsed prefix of a request frame (the peer id and
// the declared message length), read before the message body so the
// router can apply its size bound without allocating the body buffer first.
type RequestHeader struct {
	PeerID capmsg.PeerID
	MsgLen uint32
}

// WriteRequest writes a full request frame: u16 id_len, id bytes, u32
// msg_len, msg bytes. All integers are big-endian. Callers on a buffered
// stream must flush after this call to honor the flush contract in §4.4;
// streams in this module are unbuffered net.Conns, so the write itself
// already satisfies it.
func WriteRequest(w io.Writer, id capmsg.PeerID, msgBody []byte) error {
	idBytes := id.Bytes()
	if len(idBytes) > 0xFFFF {
		return fmt.Errorf("peer id too long: %d bytes", len(idBytes))
	}

	header := make([]byte, 2+len(idBytes)+4)
	binary.BigEndian.PutUint16(header[0:2], uint16(len(idBytes)))
	copy(header[2:2+len(idBytes)], idBytes)
	binary.BigEndian.PutUint32(header[2+len(idBytes):], uint32(len(msgBody)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing request header: %w", err)
	}
	if len(msgBody) > 0 {
		if _, err := w.Write(msgBody); err != nil {
			return fmt.Errorf("writing request body: %w", err)
		}
	}

	return nil
}

// ReadRequestHeader reads the id_len/peer_id/msg_len prefix of a request
// frame without touching the body.
func ReadRequestHeader(r io.Reader) (RequestHeader, error) {
	var idLenBuf [2]byte
	if _, err := io.ReadFull(r, idLenBuf[:]); err != nil {
		return RequestHeader{}, fmt.Errorf("reading id_len: %w", err)
	}
	idLen := binary.BigEndian.Uint16(idLenBuf[:])

	idBuf := make([]byte, idLen)
	if _, err := io.ReadFull(r, idBuf); err != nil {
		return RequestHeader{}, fmt.Errorf("reading peer id: %w", err)
	}

	id, err := capmsg.PeerIDFromBytes(idBuf)
	if err != nil {
		return RequestHeader{}, err
	}

	var msgLenBuf [4]byte
	if _, err := io.ReadFull(r, msgLenBuf[:]); err != nil {
		return RequestHeader{}, fmt.Errorf("reading msg_len: %w", err)
	}

	return RequestHeader{
		PeerID: id,
		MsgLen: binary.BigEndian.Uint32(msgLenBuf[:]),
	}, nil
}

// ReadRequestBody reads exactly msgLen bytes. Callers must check msgLen
// against their configured max_msg_size before calling this so a
// request declaring an oversized body never causes an allocation of that
// size; this function trusts the caller already did so.
func ReadRequestBody(r io.Reader, msgLen uint32) ([]byte, error) {
	body := make([]byte, msgLen)
	if msgLen > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
	}

	return body, nil
}

// WriteReply writes a reply frame: u32 reply_len, reply bytes.
func WriteReply(w io.Writer, replyBody []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(replyBody)))

	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("writing reply length: %w", err)
	}
	if len(replyBody) > 0 {
		if _, err := w.Write(replyBody); err != nil {
			return fmt.Errorf("writing reply body: %w", err)
		}
	}

	return nil
}

// ReadReply reads a full reply frame, rejecting a declared length beyond
// maxMsgSize before allocating the body buffer.
func ReadReply(r io.Reader, maxMsgSize uint32) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("reading reply length: %w", err)
	}
	replyLen := binary.BigEndian.Uint32(lenBuf[:])

	if maxMsgSize > 0 && replyLen > maxMsgSize {
		return nil, fmt.Errorf("reply declares %d bytes, exceeds max %d",
			replyLen, maxMsgSize)
	}

	body := make([]byte, replyLen)
	if replyLen > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("reading reply body: %w", err)
		}
	}

	return body, nil
}
