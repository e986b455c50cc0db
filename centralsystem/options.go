package centralsystem

// Observer is told when stations connect (+1) and disconnect (-1).
type Observer interface {
	StationConnected(delta int)
}

// Option configures a CentralSystem.
type Option func(*CentralSystem)

// WithObserver reports connection changes to o.
func WithObserver(o Observer) Option {
	return func(cs *CentralSystem) {
		cs.observer = o
	}
}
