// internal/ledger/logs.go
package ledger

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// MaxLogBytes caps the log output of a single transaction.
const MaxLogBytes = 10_000

type logCollector struct {
	lines     []string
	size      int
	truncated bool
}

func (c *logCollector) append(line string) {
	if c.truncated {
		return
	}
	if c.size+len(line) > MaxLogBytes {
		c.lines = append(c.lines, "Log truncated")
		c.truncated = true
		return
	}
	c.size += len(line)
	c.lines = append(c.lines, line)
}

func (c *logCollector) invoke(programID solana.PublicKey, depth int) {
	c.append(fmt.Sprintf("Program %s invoke [%d]", programID, depth))
}

func (c *logCollector) consumed(programID solana.PublicKey, used, limit uint64) {
	c.append(fmt.Sprintf("Program %s consumed %d of %d compute units", programID, used, limit))
}

func (c *logCollector) success(programID solana.PublicKey) {
	c.append(fmt.Sprintf("Program %s success", programID))
}

func (c *logCollector) failed(programID solana.PublicKey, err error) {
	c.append(fmt.Sprintf("Program %s failed: %v", programID, err))
}

func (c *logCollector) message(msg string) {
	c.append("Program log: " + msg)
}

func (c *logCollector) data(chunks [][]byte) {
	encoded := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		encoded = append(encoded, base64.StdEncoding.EncodeToString(chunk))
	}
	c.append("Program data: " + strings.Join(encoded, " "))
}
