package service

import (
	"bufio"
	"io"
	"strings"

	fecdomain "github.com/chantierpro/finance/internal/fec/domain"
)

// Encode writes the header and one row per line, joined by "\n" with no
// trailing newline.
func Encode(w io.Writer, ledger fecdomain.Ledger) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(fecdomain.Header, fecdomain.Delimiter)); err != nil {
		return err
	}
	for _, line := range ledger.Lines() {
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		if _, err := bw.WriteString(strings.Join(line.Fields(), fecdomain.Delimiter)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
