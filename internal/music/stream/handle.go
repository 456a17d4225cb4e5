package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"layeh.com/gopus"
)

// Handle controls one running pipeline. It satisfies the stream control
// contract used by the playback engine: pause gates the frame loop, gain
// applies on the next frame, Stop tears the pipeline down, and Done delivers
// the terminal result exactly once (nil on natural end or Stop).
type Handle struct {
	pcm     io.ReadCloser
	cleanup func()
	send    chan<- []byte
	encoder *gopus.Encoder

	gainBits atomic.Uint64
	frames   atomic.Int64

	mu     sync.Mutex
	cond   *sync.Cond
	paused bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan error
}

func newHandle(pcm io.ReadCloser, cleanup func(), send chan<- []byte, gain float64) (*Handle, error) {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("encoder error: %w", err)
	}

	h := &Handle{
		pcm:     pcm,
		cleanup: cleanup,
		send:    send,
		encoder: encoder,
		stop:    make(chan struct{}),
		done:    make(chan error, 1),
	}
	h.cond = sync.NewCond(&h.mu)
	h.gainBits.Store(math.Float64bits(gain))
	return h, nil
}

func (h *Handle) Pause() {
	h.mu.Lock()
	h.paused = true
	h.mu.Unlock()
}

func (h *Handle) Resume() {
	h.mu.Lock()
	h.paused = false
	h.mu.Unlock()
	h.cond.Broadcast()
}

// Stop ends the pipeline. Safe to call more than once and after the stream
// already finished.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
		h.cond.Broadcast()
	})
}

func (h *Handle) SetVolume(gain float64) {
	h.gainBits.Store(math.Float64bits(gain))
}

// Elapsed is the audio time streamed so far.
func (h *Handle) Elapsed() time.Duration {
	return time.Duration(h.frames.Load()) * frameDuration
}

// Done delivers the terminal error, nil on a clean end.
func (h *Handle) Done() <-chan error {
	return h.done
}

func (h *Handle) run() {
	defer h.pcm.Close()
	defer h.cleanup()

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		if !h.waitWhilePaused() {
			h.done <- nil
			return
		}

		_, err := io.ReadFull(h.pcm, pcmBuf)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || h.stopped() {
				h.done <- nil
			} else {
				h.done <- fmt.Errorf("read error: %w", err)
			}
			return
		}

		gain := math.Float64frombits(h.gainBits.Load())
		for i := range intBuf {
			sample := float64(int16(binary.LittleEndian.Uint16(pcmBuf[i*2:i*2+2]))) * gain
			intBuf[i] = clampSample(sample)
		}

		opus, err := h.encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			h.done <- fmt.Errorf("encode error: %w", err)
			return
		}

		select {
		case h.send <- opus:
			h.frames.Add(1)
		case <-h.stop:
			h.done <- nil
			return
		}
	}
}

// waitWhilePaused blocks while paused; false means the stream was stopped.
func (h *Handle) waitWhilePaused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for h.paused && !h.stopped() {
		h.cond.Wait()
	}
	return !h.stopped()
}

func (h *Handle) stopped() bool {
	select {
	case <-h.stop:
		return true
	default:
		return false
	}
}

func clampSample(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
