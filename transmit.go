package clockless

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/spi"
)

// session is exclusive use of the SPI connection for one frame.
//
// It is acquired with Dev.acquire and must be released on every path,
// usually with defer.
type session struct {
	c       spi.Conn
	maxTx   int
	release func()
}

// acquire takes the device lock without waiting. A lock already held is
// reported as ErrBusy.
func (d *Dev) acquire() (session, error) {
	if !d.mu.TryLock() {
		return session{}, ErrBusy
	}
	if d.halted {
		d.mu.Unlock()
		return session{}, ErrHalted
	}
	if d.c == nil {
		d.mu.Unlock()
		return session{}, ErrNotInitialized
	}
	return d.session(), nil
}

// session returns the session for the connection. d.mu must be held.
func (d *Dev) session() session {
	return session{c: d.c, maxTx: d.maxTx, release: d.mu.Unlock}
}

// write sends b as one transaction.
//
// When the connection caps the transfer size, b is split into packets
// that keep chip select asserted and handed to the driver in a single
// call, so the data line never idles long enough to latch mid frame.
func (s session) write(b []byte) error {
	if s.maxTx <= 0 || len(b) <= s.maxTx {
		if err := s.c.Tx(b, nil); err != nil {
			return errors.Wrap(err, "clockless: write")
		}
		return nil
	}
	pkts := make([]spi.Packet, 0, (len(b)+s.maxTx-1)/s.maxTx)
	for len(b) > 0 {
		n := min(len(b), s.maxTx)
		pkts = append(pkts, spi.Packet{W: b[:n], KeepCS: n < len(b)})
		b = b[n:]
	}
	if err := s.c.TxPackets(pkts); err != nil {
		return errors.Wrap(err, "clockless: write")
	}
	return nil
}
