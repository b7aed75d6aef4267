package token

// Static is a read-only Reader over a known credential.
type Static string

func (s Static) Get() (string, bool) {
	return string(s), s != ""
}
