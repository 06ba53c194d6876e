package wsjtx

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// WSJT-X UDP envelope: big-endian QDataStream framing. Every datagram
// starts with the magic number, the schema version, the message type and
// the sending client id, followed by type-specific payload.
const magic = 0xadbccbda

// Message types from the WSJT-X NetworkMessage documentation. Only
// LoggedADIF carries a completed contact; everything else is traffic we
// deliberately ignore.
const (
	msgHeartbeat  = 0
	msgStatus     = 1
	msgDecode     = 2
	msgQSOLogged  = 5
	msgLoggedADIF = 12
)

var errNotContact = errors.New("not a contact message")

// decodeADIF extracts the ADIF text from a LoggedADIF datagram. It
// returns errNotContact for heartbeat/status/decode/unknown message types
// and a decode error for datagrams that claim to be WSJT-X traffic but
// cannot be read.
func decodeADIF(buf []byte) (string, error) {
	d := &decoder{buf: buf}

	m, err := d.uint32()
	if err != nil {
		return "", err
	}
	if m != magic {
		return "", fmt.Errorf("bad magic number: %#x", m)
	}
	if _, err := d.uint32(); err != nil { // schema version
		return "", err
	}
	msgType, err := d.uint32()
	if err != nil {
		return "", err
	}
	if msgType != msgLoggedADIF {
		return "", errNotContact
	}
	if _, err := d.utf8(); err != nil { // client id
		return "", err
	}
	adif, err := d.utf8()
	if err != nil {
		return "", err
	}
	if adif == "" {
		return "", fmt.Errorf("empty ADIF payload")
	}
	return adif, nil
}

// decoder reads big-endian fields off a datagram.
type decoder struct {
	buf []byte
	off int
}

func (d *decoder) uint32() (uint32, error) {
	if d.off+4 > len(d.buf) {
		return 0, fmt.Errorf("datagram truncated at offset %d", d.off)
	}
	v := binary.BigEndian.Uint32(d.buf[d.off:])
	d.off += 4
	return v, nil
}

// utf8 reads a QDataStream byte string: int32 length (0xffffffff = null)
// followed by that many bytes of UTF-8.
func (d *decoder) utf8() (string, error) {
	n, err := d.uint32()
	if err != nil {
		return "", err
	}
	if n == 0xffffffff { // null string
		return "", nil
	}
	if d.off+int(n) > len(d.buf) {
		return "", fmt.Errorf("string of %d bytes truncated at offset %d", n, d.off)
	}
	s := string(d.buf[d.off : d.off+int(n)])
	d.off += int(n)
	return s, nil
}
