package hand

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/san-kum/handcloud/internal/dynamo"
)

const maxDatagram = 64 * 1024

// packet is the datagram written by the capture sidecar.
type packet struct {
	Hands []packetHand `json:"hands"`
}

type packetHand struct {
	Score     *float64   `json:"score,omitempty"`
	Landmarks []Landmark `json:"landmarks"`
}

// confidence is the detection score, 1 when the sender omits it.
func (h packetHand) confidence() float64 {
	if h.Score == nil {
		return 1
	}
	return *h.Score
}

// UDPTracker receives JSON landmark datagrams from an external capture
// process.
type UDPTracker struct {
	conn    net.PacketConn
	opts    Options
	out     chan Result
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	now     func() time.Time
	dropped int
}

// ListenUDP binds addr and starts receiving.
func ListenUDP(addr string, opts Options) (*UDPTracker, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	t := newUDPTracker(conn, opts)
	log.Printf("hand: listening for landmarks on %s", conn.LocalAddr())
	return t, nil
}

func newUDPTracker(conn net.PacketConn, opts Options) *UDPTracker {
	t := &UDPTracker{
		conn: conn,
		opts: opts,
		out:  make(chan Result, 16),
		done: make(chan struct{}),
		now:  time.Now,
	}
	t.wg.Add(1)
	go t.loop()
	return t
}

func (t *UDPTracker) Addr() net.Addr { return t.conn.LocalAddr() }

func (t *UDPTracker) Results() <-chan Result { return t.out }

func (t *UDPTracker) Close() error {
	var err error
	t.once.Do(func() {
		close(t.done)
		err = t.conn.Close()
		t.wg.Wait()
		close(t.out)
		log.Printf("hand: tracker closed (%d malformed datagrams dropped)", t.dropped)
	})
	return err
}

func (t *UDPTracker) loop() {
	defer t.wg.Done()
	buf := make([]byte, maxDatagram)
	for {
		n, _, err := t.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-t.done:
				return
			default:
			}
			log.Printf("hand: read: %v", err)
			continue
		}

		res, err := Decode(buf[:n], t.opts)
		if err != nil {
			t.dropped++
			log.Printf("hand: %v", err)
			continue
		}
		res.At = t.now()

		select {
		case t.out <- res:
		case <-t.done:
			return
		}
	}
}

// Decode parses one datagram and applies MaxHands and
// MinDetectionConfidence.
func Decode(data []byte, opts Options) (Result, error) {
	var p packet
	if err := json.Unmarshal(data, &p); err != nil {
		return Result{}, fmt.Errorf("%w: %v", dynamo.ErrMalformedLandmarks, err)
	}

	var res Result
	for _, h := range p.Hands {
		if opts.MaxHands > 0 && len(res.Hands) >= opts.MaxHands {
			break
		}
		if h.confidence() < opts.MinDetectionConfidence {
			continue
		}
		res.Hands = append(res.Hands, h.Landmarks)
	}
	return res, nil
}

// Encode builds a datagram for a result, the inverse of Decode. Every hand is
// reported with full confidence.
func Encode(res Result) ([]byte, error) {
	var p packet
	full := 1.0
	for _, lms := range res.Hands {
		p.Hands = append(p.Hands, packetHand{Score: &full, Landmarks: lms})
	}
	return json.Marshal(p)
}
