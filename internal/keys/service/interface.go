// Package service resolves named encryption keys from configured sources and bootstraps
// the crypto services that depend on them.
package service

import "context"

// KeySource looks up a secret by configuration variable name.
//
// A missing value returns ok=false with a nil error. Errors are reserved for backend
// failures such as an unreachable KMS.
type KeySource interface {
	Lookup(ctx context.Context, name string) (value string, ok bool, err error)
}

// Initializer is implemented by every service that needs a key before first use.
type Initializer interface {
	Initialize(key string) error
}

// Services lists the services InitializeServices bootstraps. Nil entries are skipped.
type Services struct {
	FieldEncryption Initializer
	TokenEncryption Initializer
	TokenStorage    Initializer
}
