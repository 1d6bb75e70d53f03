package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Quantity holds an item quantity that may have been stored either as a JSON
// number or a JSON string. It re-encodes in the form it was decoded from.
type Quantity struct {
	text    string
	numeric bool
}

// NumberQty returns a quantity that encodes as a JSON number.
func NumberQty(n int) Quantity {
	return Quantity{text: strconv.Itoa(n), numeric: true}
}

// TextQty returns a quantity that encodes as a JSON string.
func TextQty(s string) Quantity {
	return Quantity{text: s}
}

func (q Quantity) String() string { return q.text }

func (q Quantity) IsZero() bool { return q.text == "" }

// Units returns the leading integer of the quantity, or 0 when there is none.
// "3 kg" yields 3.
func (q Quantity) Units() int {
	s := strings.TrimSpace(q.text)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.numeric {
		return []byte(q.text), nil
	}
	return json.Marshal(q.text)
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*q = Quantity{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = TextQty(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("quantity must be a number or string: %w", err)
	}
	*q = Quantity{text: n.String(), numeric: true}
	return nil
}
