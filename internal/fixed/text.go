package fixed

// MarshalText implements encoding.TextMarshaler using String.
func (x Fixed) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using Parse.
func (x *Fixed) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*x = v
	return nil
}
