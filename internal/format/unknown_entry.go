package format

import "encoding/json"

// UnknownEntry preserves an entry whose type is unrecognized (including
// every x_-prefixed extension tag) as a raw object, so reads and writes
// round-trip it byte-for-field without the codec understanding its
// shape.
type UnknownEntry struct {
	Common
	Raw map[string]json.RawMessage
}

var unknownKnownKeys = []string{"id", "ts", "type"}

func (e *UnknownEntry) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(e.Raw)+3)
	for k, v := range e.Raw {
		m[k] = v
	}
	id, _ := json.Marshal(e.ID)
	ts, _ := json.Marshal(e.Ts)
	typ, _ := json.Marshal(e.Type)
	m["id"] = id
	m["ts"] = ts
	m["type"] = typ
	return json.Marshal(m)
}

func (e *UnknownEntry) UnmarshalJSON(data []byte) error {
	type shadow struct {
		ID   string `json:"id"`
		Ts   int64  `json:"ts"`
		Type string `json:"type"`
	}
	var s shadow
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for _, k := range unknownKnownKeys {
		delete(m, k)
	}
	e.ID, e.Ts, e.Type = s.ID, s.Ts, s.Type
	e.Raw = m
	e.Extra = nil
	return nil
}

// Extras on an UnknownEntry is the whole raw payload minus id/ts/type,
// since there is no further structural split between "known" and
// "extra" fields for a type the codec doesn't recognize.
func (e *UnknownEntry) Extras() map[string]json.RawMessage { return e.Raw }
