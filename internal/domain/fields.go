package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Coercing field types for create/update payloads. Clients send loosely
// typed JSON (numbers as strings, status as "true", thumbnails as a single
// value); each type below accepts the reasonable spellings and nothing else.
//
//	Text:     string, number or boolean -> its text form
//	Number:   number or numeric string
//	Flag:     boolean, "true"/"false", or number (0 = false)
//	TextList: array of scalars -> list of text; any other shape -> empty
//
// Fields in ProductInput are pointers so an absent field can be told apart
// from a zero value; unknown fields are dropped by the decoder.

type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		*t = Text(x)
	case float64:
		*t = Text(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		*t = Text(strconv.FormatBool(x))
	case nil:
		*t = ""
	default:
		return &ValidationError{Field: "?", Reason: "expected a text value"}
	}
	return nil
}

type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return &ValidationError{Field: "?", Reason: "expected a finite number"}
	}
	*n = Number(f)
	return nil
}

type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case bool:
		*f = Flag(x)
	case float64:
		*f = x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1":
			*f = true
		case "false", "0", "":
			*f = false
		default:
			return &ValidationError{Field: "?", Reason: "expected a boolean"}
		}
	default:
		return &ValidationError{Field: "?", Reason: "expected a boolean"}
	}
	return nil
}

type TextList []string

func (l *TextList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		// Not an array: same as no thumbnails at all.
		*l = TextList{}
		return nil
	}
	out := make(TextList, 0, len(raw))
	for _, r := range raw {
		var t Text
		if err := t.UnmarshalJSON(r); err != nil {
			return err
		}
		out = append(out, string(t))
	}
	*l = out
	return nil
}

// ProductInput is the field bag accepted by product create and update.
// Create requires everything except Thumbnails; update applies only the
// fields present. There is deliberately no ID field: the record id is
// immutable and any id in the payload is ignored.
type ProductInput struct {
	Title       *Text     `json:"title"`
	Description *Text     `json:"description"`
	Code        *Text     `json:"code"`
	Price       *Number   `json:"price"`
	Status      *Flag     `json:"status"`
	Stock       *Number   `json:"stock"`
	Category    *Text     `json:"category"`
	Thumbnails  *TextList `json:"thumbnails"`
}

// LineInput is one entry of a wholesale cart line replacement.
type LineInput struct {
	ProductID *Number `json:"product"`
	Quantity  *Number `json:"quantity"`
}
