package domain

// Credential is an API key handed to a gateway at construction time.
type Credential struct {
	value string
}

func NewCredential(value string) Credential {
	return Credential{value: value}
}

func (c Credential) Value() string {
	return c.value
}

func (c Credential) Empty() bool {
	return c.value == ""
}

func (c Credential) String() string {
	if c.value == "" {
		return "<unset>"
	}
	return "<redacted>"
}

// Require returns an auth error for op when the credential is unset.
func (c Credential) Require(op string) error {
	if c.Empty() {
		return Errorf(KindAuth, op, "missing API credential")
	}
	return nil
}
