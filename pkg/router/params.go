package router

// Params holds the values captured from a route's {name} placeholders.
type Params map[string]string

// Get returns the value of name, or "" when it was not captured.
func (p Params) Get(name string) string {
	return p[name]
}

// Clone returns a copy of p. Cloning a nil Params yields an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
