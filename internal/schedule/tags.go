package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tags is a string map that remembers insertion order. The zero value is empty and ready to use.
type Tags struct {
	keys   []string
	values map[string]string
}

// Set stores value under key. An existing key keeps its position.
func (t *Tags) Set(key, value string) {
	if t.values == nil {
		t.values = make(map[string]string)
	}
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

func (t Tags) Get(key string) (string, bool) {
	v, ok := t.values[key]
	return v, ok
}

func (t Tags) Len() int { return len(t.keys) }

// Keys returns the keys in insertion order.
func (t Tags) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// IsPlaceholder reports whether the tags mark a non-enrollable placeholder listing.
func (t Tags) IsPlaceholder() bool {
	v, ok := t.Get(PlaceholderTagKey)
	return ok && v == PlaceholderTagValue
}

func (t Tags) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(t.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *Tags) UnmarshalJSON(data []byte) error {
	*t = Tags{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("tags: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("tags: expected string key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("tags: value for %q: %w", key, err)
		}
		t.Set(key, value)
	}
	_, err = dec.Token()
	return err
}
