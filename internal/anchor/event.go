// internal/anchor/event.go
package anchor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
)

const programDataPrefix = "Program data: "

// Emit logs an event as "Program data: base64(discriminator || borsh)".
func Emit(ic *ledger.InvokeContext, name string, event any) error {
	data, err := Serialize(EventDiscriminator(name), event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", name, err)
	}
	return ic.LogData(data)
}

// EventData returns the decoded payload of every "Program data:" log line.
func EventData(logs []string) [][]byte {
	var out [][]byte
	for _, line := range logs {
		encoded, ok := strings.CutPrefix(line, programDataPrefix)
		if !ok {
			continue
		}
		for _, chunk := range strings.Fields(encoded) {
			data, err := base64.StdEncoding.DecodeString(chunk)
			if err != nil {
				continue
			}
			out = append(out, data)
		}
	}
	return out
}

// DecodeEvent decodes data into v when it carries the named event's
// discriminator. ok is false for other events.
func DecodeEvent(data []byte, name string, v any) (ok bool, err error) {
	d := EventDiscriminator(name)
	if len(data) < DiscriminatorLength || !bytes.Equal(data[:DiscriminatorLength], d[:]) {
		return false, nil
	}
	if err := bin.NewBorshDecoder(data[DiscriminatorLength:]).Decode(v); err != nil {
		return true, fmt.Errorf("failed to decode event %s: %w", name, err)
	}
	return true, nil
}

// ParseEvents decodes every occurrence of the named event in logs.
func ParseEvents[T any](logs []string, name string) ([]T, error) {
	var out []T
	for _, data := range EventData(logs) {
		var ev T
		ok, err := DecodeEvent(data, name, &ev)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, ev)
		}
	}
	return out, nil
}
