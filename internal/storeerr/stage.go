package storeerr

// Stage identifies the step of the envelope pipeline that failed, so a
// caller can tell a bad key apart from a tampered message without the error
// ever carrying key material or plaintext.
type Stage int8

const (
	Unknown Stage = iota
	ParseKey
	ParseEnvelope
	WrapKey
	Seal
	Serialize
	Open
)

func (s Stage) String() string {
	stages := map[Stage]string{
		Unknown:       "unknown",
		ParseKey:      "parse key",
		ParseEnvelope: "parse envelope",
		WrapKey:       "wrap key",
		Seal:          "seal",
		Serialize:     "serialize",
		Open:          "open",
	}

	if str, ok := stages[s]; ok {
		return str
	}
	return "unknown"
}
