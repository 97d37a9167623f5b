package hand

import (
	"sync"
	"time"
)

// ReplayTracker plays recorded results back at their recorded pace.
// Timestamps are rebased onto the wall clock at playback.
type ReplayTracker struct {
	frames []Result
	loop   bool
	out    chan Result
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewReplay starts playback immediately. With loop set the recording
// restarts after the last frame.
func NewReplay(frames []Result, loop bool) *ReplayTracker {
	r := &ReplayTracker{
		frames: frames,
		loop:   loop,
		out:    make(chan Result, 16),
		done:   make(chan struct{}),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

func (r *ReplayTracker) Results() <-chan Result { return r.out }

func (r *ReplayTracker) Close() error {
	r.once.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
	return nil
}

func (r *ReplayTracker) run() {
	defer r.wg.Done()
	defer close(r.out)

	if len(r.frames) == 0 {
		return
	}

	for {
		origin := r.frames[0].At
		start := time.Now()
		for _, f := range r.frames {
			due := start.Add(f.At.Sub(origin))
			if wait := time.Until(due); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-timer.C:
				case <-r.done:
					timer.Stop()
					return
				}
			}
			out := Result{Hands: f.Hands, At: due}
			select {
			case r.out <- out:
			case <-r.done:
				return
			}
		}
		if !r.loop {
			return
		}
	}
}

// Drain collects every result from a tracker until its channel closes.
func Drain(t Tracker) []Result {
	var all []Result
	for res := range t.Results() {
		all = append(all, res)
	}
	return all
}

// Poll hands every result already queued on t to fn without blocking and
// reports whether the tracker has closed its channel.
func Poll(t Tracker, fn func(Result)) (closed bool) {
	ch := t.Results()
	for {
		select {
		case res, ok := <-ch:
			if !ok {
				return true
			}
			fn(res)
		default:
			return false
		}
	}
}
