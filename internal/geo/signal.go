package geo

// SignalKind is the outcome of one sync cycle of the upstream databases.
type SignalKind uint8

// SignalKind values.
const (
	SignalChanged SignalKind = iota + 1
	SignalUnchanged
	SignalError
)

// String implements the fmt.Stringer interface for SignalKind.
func (k SignalKind) String() string {
	switch k {
	case SignalChanged:
		return "changed"
	case SignalUnchanged:
		return "unchanged"
	case SignalError:
		return "error"
	default:
		return "unknown"
	}
}

// RefreshSignal is emitted by a syncer after each sync cycle.
type RefreshSignal struct {
	Kind SignalKind
	// Err is the reason for a SignalError.
	Err error
}

// Changed returns a SignalChanged signal.
func Changed() RefreshSignal {
	return RefreshSignal{Kind: SignalChanged}
}

// Unchanged returns a SignalUnchanged signal.
func Unchanged() RefreshSignal {
	return RefreshSignal{Kind: SignalUnchanged}
}

// Failed returns a SignalError signal carrying err.
func Failed(err error) RefreshSignal {
	return RefreshSignal{Kind: SignalError, Err: err}
}
