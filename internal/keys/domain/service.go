package domain

// ServiceName identifies a crypto service the key service can bootstrap.
type ServiceName string

const (
	ServiceFieldEncryption ServiceName = "field-encryption"
	ServiceTokenEncryption ServiceName = "token-encryption"
	ServiceTokenStorage    ServiceName = "token-storage"
)

// KeyTypeFor returns the key a service is initialized with.
func KeyTypeFor(name ServiceName) KeyType {
	switch name {
	case ServiceFieldEncryption:
		return KeyEmployeeData
	case ServiceTokenEncryption:
		return KeyHMRCEncryption
	case ServiceTokenStorage:
		return KeyTokenStorage
	default:
		return KeyGeneral
	}
}

// InitializationFailure records why one service could not be initialized.
type InitializationFailure struct {
	Service ServiceName `json:"service"`
	KeyType KeyType     `json:"key_type"`
	Error   string      `json:"error"`
}

// InitializationReport summarizes a bootstrap pass. Failures never abort the pass.
type InitializationReport struct {
	Initialized []ServiceName           `json:"initialized"`
	Failures    []InitializationFailure `json:"failures"`
}

// OK reports whether every requested service was initialized.
func (r InitializationReport) OK() bool {
	return len(r.Failures) == 0
}
