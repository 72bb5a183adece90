package toolprovider

// Mock is a test double satisfying Provider: CallFunc supplies the
// behavior, defaulting to echoing the input back as the output.
type Mock struct {
	NameVal    string
	VersionVal string
	SchemaVal  Schema
	CapsVal    []string
	CallFunc   func(inputJSON []byte) ([]byte, error)
}

func (m *Mock) Name() string           { return m.NameVal }
func (m *Mock) Version() string        { return m.VersionVal }
func (m *Mock) Schema() Schema         { return m.SchemaVal }
func (m *Mock) Capabilities() []string { return m.CapsVal }

func (m *Mock) Call(inputJSON []byte) ([]byte, error) {
	if m.CallFunc != nil {
		return m.CallFunc(inputJSON)
	}

	return inputJSON, nil
}
