package obfuscate

import (
	"sync"
)

// stream forwards the work units of a tap into the tube from which the engine workers read
type stream struct {
	tube RequestChannel
	tap  Tap

	wg   *sync.WaitGroup
	done chan struct{}

	// to prevent multiple go routines to run shutdown and open at the same time
	mux    sync.Mutex
	isOpen bool
	closed bool
}

func newStream(bufferSize uint16, tap Tap) *stream {
	return &stream{
		tube: make(RequestChannel, bufferSize),
		done: make(chan struct{}),
		wg:   &sync.WaitGroup{},
		tap:  tap,
	}
}

// consumeTap owns the tube and closes it once the tap runs dry or the stream shuts down.
// A unit already taken off the tap is never dropped.
func (s *stream) consumeTap() {
	defer s.wg.Done()
	defer close(s.tube)
	requests := s.tap.Requests()
	for {
		select {
		case <-s.done:
			return
		case w, more := <-requests:
			if !more {
				return
			}
			select {
			case s.tube <- w:
			case <-s.done:
				// the workers keep reading until the tube is closed
				s.tube <- w
				return
			}
		}
	}
}

func (s *stream) shutdown() {
	s.mux.Lock()
	defer s.mux.Unlock()

	if !s.isOpen {
		return
	}

	close(s.done)
	s.wg.Wait()
	if s.tap.IsOpen() {
		s.tap.Close()
	}
	s.isOpen = false
	s.closed = true
}

func (s *stream) open() {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.isOpen || s.closed {
		return
	}

	if !s.tap.IsOpen() {
		s.tap.Open()
	}
	s.wg.Add(1)
	go s.consumeTap()
	s.isOpen = true
}
