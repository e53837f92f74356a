package auth

import (
	"direct-chat/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Cheap parameters keep the suite fast; production uses DefaultParams.
var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password, testParams)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))
	req.NotContains(hash, password)

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("MauvaisMDP", hash)
	req.NoError(err)
	req.False(match)
}

func TestHash_Is_Salted(t *testing.T) {
	req := require.New(t)

	first, err := HashPassword("secret", testParams)
	req.NoError(err)
	second, err := HashPassword("secret", testParams)
	req.NoError(err)

	// Same password, different salts
	req.NotEqual(first, second)
}

func TestCompare_Uses_Embedded_Params(t *testing.T) {
	req := require.New(t)
	hash, err := HashPassword("secret", Params{Memory: 2048, Iterations: 2, Parallelism: 1, SaltLength: 8, KeyLength: 16})
	req.NoError(err)
	req.Contains(hash, "m=2048,t=2,p=1")

	match, err := ComparePassword("secret", hash)
	req.NoError(err)
	req.True(match)
}

func TestCompare_Invalid_Hash(t *testing.T) {
	req := require.New(t)
	for _, encoded := range []string{"", "plain", "$argon2id$v=19$m=1,t=1,p=1$@@@$abc", "$bcrypt$v=19$m=1,t=1,p=1$abc$abc"} {
		_, err := ComparePassword("secret", encoded)
		req.ErrorIs(err, errors.ErrInvalidHash, encoded)
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr error
	}{
		{"Valid request", Credentials{"alice", "secret"}, nil},
		{"Valid dotted name", Credentials{"alice.b-2", "x"}, nil},
		{"Missing username", Credentials{"", "secret"}, errors.ErrInvalidUsername},
		{"Username with colon", Credentials{"ali:ce", "secret"}, errors.ErrInvalidUsername},
		{"Username with comma", Credentials{"ali,ce", "secret"}, errors.ErrInvalidUsername},
		{"Username with pipe", Credentials{"ali|ce", "secret"}, errors.ErrInvalidUsername},
		{"Username too long", Credentials{strings.Repeat("a", 33), "secret"}, errors.ErrInvalidUsername},
		{"Non ascii username", Credentials{"élodie", "secret"}, errors.ErrInvalidUsername},
		{"Missing password", Credentials{"alice", ""}, errors.ErrInvalidPassword},
		{"Password too long", Credentials{"alice", strings.Repeat("a", 73)}, errors.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := ValidateCredentials(tt.creds)
			if tt.wantErr == nil {
				req.NoError(err)
				return
			}
			req.ErrorIs(err, tt.wantErr)
		})
	}
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!", DefaultParams)
	}
}
