// Key encoding for the time index.
//
// by_time key format (big-endian, so byte order is chronological order):
//
//	createdAt: uint64 unix milliseconds
//	id:        [len]byte
//
// The value is the report id. Times before the epoch sort as zero.
package bbolt

import (
	"encoding/binary"
	"fmt"
	"time"
)

// tsSize is the byte size of the timestamp prefix.
const tsSize = 8

// timeKey encodes (t, id) as a by_time key. An empty id yields the seek
// prefix for the first key at or after t.
func timeKey(t time.Time, id string) []byte {
	ms := t.UnixMilli()
	if ms < 0 {
		ms = 0
	}
	buf := make([]byte, tsSize+len(id))
	binary.BigEndian.PutUint64(buf, uint64(ms))
	copy(buf[tsSize:], id)
	return buf
}

// splitTimeKey decodes a by_time key.
func splitTimeKey(k []byte) (time.Time, string, error) {
	if len(k) < tsSize {
		return time.Time{}, "", fmt.Errorf("time key too short: %d bytes", len(k))
	}
	ms := binary.BigEndian.Uint64(k[:tsSize])
	return time.UnixMilli(int64(ms)).UTC(), string(k[tsSize:]), nil
}
