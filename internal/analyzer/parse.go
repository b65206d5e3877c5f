package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoTransactions means the reply held no usable JSON array.
var ErrNoTransactions = errors.New("no transactions found in reply")

// Amount keeps a model-supplied amount as text; models return numbers,
// quoted numbers and rupee-formatted strings interchangeably.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// Extracted is one transaction row as the model returned it.
type Extracted struct {
	Amount      Amount `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Category    string `json:"category"`
}

// ExtractJSONArray returns the text between the first '[' and the last ']'
// of reply, ignoring code fences and prose around it.
func ExtractJSONArray(reply string) (string, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start == -1 || end == -1 || end <= start {
		return "", ErrNoTransactions
	}
	return reply[start : end+1], nil
}

// ParseReply decodes the transaction rows of reply.
func ParseReply(reply string) ([]Extracted, error) {
	raw, err := ExtractJSONArray(reply)
	if err != nil {
		return nil, err
	}
	var rows []Extracted
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoTransactions, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoTransactions
	}
	return rows, nil
}
