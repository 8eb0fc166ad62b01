package input

// KeySet is a KeySource fed by press and release events, for hosts that
// deliver key events instead of polled state. The zero value is ready to use.
type KeySet struct {
	held map[Key]struct{}
}

func (s *KeySet) Press(key Key) {
	if s.held == nil {
		s.held = make(map[Key]struct{})
	}
	s.held[key] = struct{}{}
}

func (s *KeySet) Release(key Key) {
	delete(s.held, key)
}

// Reset releases every key, for example when the window loses focus.
func (s *KeySet) Reset() {
	clear(s.held)
}

func (s *KeySet) Pressed(key Key) bool {
	_, ok := s.held[key]
	return ok
}
