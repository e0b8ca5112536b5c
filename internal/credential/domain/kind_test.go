package domain

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	t.Run("Success_CaseInsensitive", func(t *testing.T) {
		kind, err := ParseKind(" Certificate ")
		require.NoError(t, err)
		assert.Equal(t, CertificateKind, kind)
	})

	t.Run("Error_UnknownKind", func(t *testing.T) {
		_, err := ParseKind("json")
		assert.ErrorIs(t, err, ErrUnknownKind)
	})
}

func TestMap(t *testing.T) {
	describe := Mapping[string, string]{
		Value:       func(k Kind, in string) string { return "value:" + in },
		Password:    func(k Kind, in string) string { return "password:" + in },
		Certificate: func(k Kind, in string) string { return "certificate(" + string(k) + "):" + in },
		SSH:         func(k Kind, in string) string { return "ssh:" + in },
	}

	tests := []struct {
		kind Kind
		want string
	}{
		{ValueKind, "value:x"},
		{PasswordKind, "password:x"},
		{CertificateKind, "certificate(certificate):x"},
		{SSHKind, "ssh:x"},
		{RSAKind, "certificate(rsa):x"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			fn, err := Map(tt.kind, describe)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fn("x"))
		})
	}

	t.Run("Error_UnknownKind", func(t *testing.T) {
		fn, err := Map(Kind("json"), describe)
		assert.ErrorIs(t, err, ErrUnknownKind)
		assert.Nil(t, fn)
	})

	t.Run("Error_MissingHandler", func(t *testing.T) {
		_, err := Map(PasswordKind, Mapping[string, string]{})
		assert.ErrorIs(t, err, ErrUnknownKind)
	})
}

func TestStaticMapping(t *testing.T) {
	m := StaticMapping[int]("v", "p", "c")

	for kind, want := range map[Kind]string{
		ValueKind:       "v",
		PasswordKind:    "p",
		CertificateKind: "c",
		SSHKind:         "c",
		RSAKind:         "c",
	} {
		got, err := Apply(kind, m, 42)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCompose(t *testing.T) {
	before := Mapping[int, string]{
		Value:       func(_ Kind, in int) string { return strconv.Itoa(in) },
		Password:    func(_ Kind, in int) string { return strconv.Itoa(in * 2) },
		Certificate: func(_ Kind, in int) string { return strconv.Itoa(in * 3) },
		RSA:         func(_ Kind, in int) string { return strconv.Itoa(in * 4) },
	}
	length := Mapping[string, int]{
		Value:       func(_ Kind, in string) int { return len(in) },
		Password:    func(_ Kind, in string) int { return len(in) * 10 },
		Certificate: func(_ Kind, in string) int { return len(in) * 100 },
	}

	composed := Compose(length, before)

	tests := []struct {
		kind Kind
		in   int
		want int
	}{
		{ValueKind, 7, 1},
		{PasswordKind, 7, 20},
		{CertificateKind, 7, 200},
		{SSHKind, 7, 200},
		{RSAKind, 30, 300},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, err := Apply(tt.kind, composed, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
