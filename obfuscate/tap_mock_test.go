package obfuscate

import "sync"

type mockedTap struct {
	requests RequestChannel

	mux    sync.Mutex
	isOpen bool
	closed bool
}

func newMockedTap(bufferSize int) *mockedTap {
	return &mockedTap{
		requests: make(RequestChannel, bufferSize),
	}
}

func (m *mockedTap) IsOpen() bool {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.isOpen
}

func (m *mockedTap) Requests() RequestChannel {
	return m.requests
}

func (m *mockedTap) Open() {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.isOpen = true
}

func (m *mockedTap) Push(units ...*WorkUnit) {
	for _, wu := range units {
		m.requests <- wu
	}
}

// dry closes the request channel, the way a tap with a finite amount of work does
func (m *mockedTap) dry() {
	m.mux.Lock()
	defer m.mux.Unlock()
	if !m.closed {
		close(m.requests)
		m.closed = true
	}
}

func (m *mockedTap) Close() {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.isOpen = false
}
