package store

// Overlay stages writes on top of another Context. Reads see the staged
// writes first. Nothing reaches the underlying Context until Commit.
type Overlay struct {
	base   Context
	writes map[string][]byte
}

// NewOverlay ...
func NewOverlay(base Context) *Overlay {
	return &Overlay{
		base:   base,
		writes: make(map[string][]byte),
	}
}

// GetState implements Context.
func (o *Overlay) GetState(address string) ([]byte, error) {
	if v, ok := o.writes[address]; ok {
		return copyBytes(v), nil
	}
	return o.base.GetState(address)
}

// SetState implements Context.
func (o *Overlay) SetState(address string, data []byte) error {
	o.writes[address] = copyBytes(data)
	return nil
}

// Commit writes the staged values to the underlying Context and clears them.
func (o *Overlay) Commit() error {
	for k, v := range o.writes {
		if err := o.base.SetState(k, v); err != nil {
			return err
		}
	}
	o.writes = make(map[string][]byte)
	return nil
}
