// internal/anchor/discriminator.go
package anchor

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// DiscriminatorLength is the size of every account, instruction and event tag.
const DiscriminatorLength = 8

type Discriminator [DiscriminatorLength]byte

func sighash(namespace, name string) Discriminator {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var d Discriminator
	copy(d[:], sum[:DiscriminatorLength])
	return d
}

// InstructionDiscriminator tags instruction data; name is the snake_case handler name.
func InstructionDiscriminator(name string) Discriminator {
	return sighash("global", name)
}

// AccountDiscriminator tags account data; name is the account struct name.
func AccountDiscriminator(name string) Discriminator {
	return sighash("account", name)
}

// EventDiscriminator tags emitted event payloads.
func EventDiscriminator(name string) Discriminator {
	return sighash("event", name)
}

// Serialize writes the discriminator followed by the borsh encoding of v.
func Serialize(d Discriminator, v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(d[:])
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize checks the discriminator and decodes the remainder into v.
func Deserialize(data []byte, d Discriminator, v any) error {
	if len(data) < DiscriminatorLength {
		return ErrAccountDiscriminatorNotFound
	}
	if !bytes.Equal(data[:DiscriminatorLength], d[:]) {
		return ErrAccountDiscriminatorMismatch
	}
	if err := bin.NewBorshDecoder(data[DiscriminatorLength:]).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrAccountDidNotDeserialize, err)
	}
	return nil
}
