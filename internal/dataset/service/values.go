package service

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	"github.com/shopspring/decimal"
)

// number accepts JSON numbers, numeric strings (dot or comma decimal) and
// null. Anything else decodes to zero and is flagged as invalid so the loader
// can report it instead of failing the whole file.
type number struct {
	value   decimal.Decimal
	present bool
	invalid string
}

func (n *number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			n.invalid = raw
			return nil
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
		if !strings.Contains(raw, ".") {
			raw = strings.Replace(raw, ",", ".", 1)
		}
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		n.invalid = raw
		return nil
	}
	n.value = v
	n.present = true
	return nil
}

// identifier accepts string or numeric ids. Other JSON values decode to an
// empty id, which matches no record.
type identifier string

func (id *identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*id = ""
			return nil
		}
		*id = identifier(strings.TrimSpace(s))
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		*id = ""
		return nil
	}
	*id = identifier(data)
	return nil
}

func (id identifier) String() string { return string(id) }

// date accepts YYYY-MM-DD and RFC 3339 timestamps.
type date struct {
	value   time.Time
	invalid string
}

func (d *date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		if strings.TrimSpace(string(data)) != "null" {
			d.invalid = string(data)
		}
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(datasetdomain.DateLayout, s); err == nil {
		d.value = t
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.value = t
		return nil
	}
	d.invalid = s
	return nil
}

func (d date) ptr() *time.Time {
	if d.value.IsZero() {
		return nil
	}
	t := d.value
	return &t
}
