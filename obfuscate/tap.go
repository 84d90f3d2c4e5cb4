package obfuscate

// RequestChannel is the channel through which a tap sends work units to the engine
type RequestChannel chan *WorkUnit

// Tap is the interface for the types responsible to send work units to an Engine
type Tap interface {
	// Open opens the tap and starts pushing work units into its request channel.
	// The engine will automatically open the tap, so there is no need for you to explicitly call this method.
	// NOTE: The implementation of this function SHOULD NOT be blocking.
	Open()
	// Close closes the tap and its request channel.
	// The engine will automatically close the tap when it stops.
	// NOTE: Make sure the implementation of this method blocks until all the tap's internal resources are released
	Close()
	// IsOpen returns true if the tap is open
	IsOpen() bool
	// Requests returns the channel of work units
	Requests() RequestChannel
}
