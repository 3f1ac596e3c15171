// Package secret keeps sensitive configuration values,
// like database passwords and access keys, from leaking into logs or status pages.
package secret

import (
	"encoding/json"
	"log/slog"
)

const mask = "******"

func New(secret string) Secret {
	return Secret{value: &secret}
}

// Secret masks its value whenever it is printed, logged, or encoded.
// Call Secret to get the actual value.
type Secret struct {
	value *string
}

// Secret returns the actual value of the Secret.
func (s Secret) Secret() string {
	if s.value == nil {
		return ""
	}

	return *s.value
}

// IsSet reports whether a non-empty value is held.
func (s Secret) IsSet() bool {
	return s.Secret() != ""
}

func (s Secret) String() string {
	return mask
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(mask)
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String()) //nolint:wrapcheck // export the underlying error
}

func (s *Secret) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err //nolint:wrapcheck // export the underlying error
	}

	s.value = &value

	return nil
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Secret) UnmarshalText(data []byte) error {
	text := string(data)
	s.value = &text

	return nil
}

var _ slog.LogValuer = Secret{}
