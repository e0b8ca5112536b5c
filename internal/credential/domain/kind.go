package domain

import (
	"fmt"
	"strings"
)

// Kind identifies the closed set of credential variants. The kind of a credential is
// fixed for the lifetime of its name.
type Kind string

const (
	// ValueKind is an arbitrary user-supplied string.
	ValueKind Kind = "value"
	// PasswordKind is a generated or user-supplied password.
	PasswordKind Kind = "password"
	// CertificateKind is an X.509 certificate with its private key and optional CA.
	CertificateKind Kind = "certificate"
	// SSHKind is an SSH key pair. It refines CertificateKind.
	SSHKind Kind = "ssh"
	// RSAKind is an RSA key pair in PEM form. It refines CertificateKind.
	RSAKind Kind = "rsa"
)

// Kinds lists every supported kind.
var Kinds = []Kind{ValueKind, PasswordKind, CertificateKind, SSHKind, RSAKind}

// ParseKind converts a string to a Kind, ignoring case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// IsValid reports whether k is one of the supported kinds.
func (k Kind) IsValid() bool {
	switch k {
	case ValueKind, PasswordKind, CertificateKind, SSHKind, RSAKind:
		return true
	}
	return false
}

// Handler is the per-variant function of a Mapping. It receives the runtime kind so
// a handler shared by a family can still tell its refinements apart.
type Handler[T, R any] func(kind Kind, in T) R

// Mapping is a bundle with one handler per credential variant. SSH and RSA are
// optional refinements: when nil they fall back to the Certificate handler.
type Mapping[T, R any] struct {
	Value       Handler[T, R]
	Password    Handler[T, R]
	Certificate Handler[T, R]
	SSH         Handler[T, R]
	RSA         Handler[T, R]
}

// StaticMapping returns a Mapping that ignores its input and yields a fixed result per
// variant family.
func StaticMapping[T, R any](value, password, certificate R) Mapping[T, R] {
	return Mapping[T, R]{
		Value:       func(Kind, T) R { return value },
		Password:    func(Kind, T) R { return password },
		Certificate: func(Kind, T) R { return certificate },
	}
}

// handler resolves the handler for kind, applying the certificate fallback.
func (m Mapping[T, R]) handler(kind Kind) Handler[T, R] {
	switch kind {
	case ValueKind:
		return m.Value
	case PasswordKind:
		return m.Password
	case CertificateKind:
		return m.Certificate
	case SSHKind:
		if m.SSH != nil {
			return m.SSH
		}
		return m.Certificate
	case RSAKind:
		if m.RSA != nil {
			return m.RSA
		}
		return m.Certificate
	}
	return nil
}

// Map selects the handler matching kind and returns it as a plain function.
// It fails with ErrUnknownKind for kinds outside the closed set or when the bundle has
// no handler for the variant.
func Map[T, R any](kind Kind, m Mapping[T, R]) (func(T) R, error) {
	h := m.handler(kind)
	if h == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return func(in T) R { return h(kind, in) }, nil
}

// Apply is a shorthand for Map followed by a call with in.
func Apply[T, R any](kind Kind, m Mapping[T, R], in T) (R, error) {
	fn, err := Map(kind, m)
	if err != nil {
		var zero R
		return zero, err
	}
	return fn(in), nil
}

// Compose returns a Mapping that feeds each variant's output of before into the
// matching variant of m.
func Compose[V, T, R any](m Mapping[T, R], before Mapping[V, T]) Mapping[V, R] {
	compose := func(kind Kind) Handler[V, R] {
		outer, inner := m.handler(kind), before.handler(kind)
		if outer == nil || inner == nil {
			return nil
		}
		return func(k Kind, in V) R { return outer(k, inner(k, in)) }
	}
	return Mapping[V, R]{
		Value:       compose(ValueKind),
		Password:    compose(PasswordKind),
		Certificate: compose(CertificateKind),
		SSH:         compose(SSHKind),
		RSA:         compose(RSAKind),
	}
}
