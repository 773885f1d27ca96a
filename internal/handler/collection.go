package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
	ErrorInvalid  = errors.New("invalid record")
)

// Record is a stored todo. Fields are kept as raw JSON so that the collection
// round-trips whatever clients send, the way json-server does.
type Record map[string]json.RawMessage

type entry struct {
	id     string
	fields Record
}

// Collection is an in-memory, insertion-ordered todo collection.
type Collection struct {
	mu          sync.RWMutex
	entries     []entry
	unavailable bool
	requests    map[string]int
}

func NewCollection() *Collection {
	return &Collection{requests: make(map[string]int)}
}

// Seed appends records, each anything that marshals to a JSON object.
func (c *Collection) Seed(records ...any) error {
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := c.Insert(data); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collection) SetAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unavailable = !available
}

func (c *Collection) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.unavailable
}

func (c *Collection) List() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Record, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, cloneRecord(e.fields))
	}
	return out
}

func (c *Collection) Get(id string) (Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return nil, ErrorNotFound
	}
	return cloneRecord(c.entries[idx].fields), nil
}

// Insert stores a new record. A record without an id gets the next numeric id.
func (c *Collection) Insert(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil || rec == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrorInvalid)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := recordID(rec["id"])
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = strconv.FormatInt(c.maxNumericID()+1, 10)
		rec["id"] = json.RawMessage(id)
	}
	if c.indexOf(id) >= 0 {
		return nil, fmt.Errorf("%w: id %s already exists", ErrorConflict, id)
	}

	c.entries = append(c.entries, entry{id: id, fields: rec})
	return cloneRecord(rec), nil
}

// Merge applies a partial update. The id field cannot be changed.
func (c *Collection) Merge(id string, data []byte) (Record, error) {
	var patch Record
	if err := json.Unmarshal(data, &patch); err != nil || patch == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrorInvalid)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return nil, ErrorNotFound
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		c.entries[idx].fields[k] = v
	}
	return cloneRecord(c.entries[idx].fields), nil
}

func (c *Collection) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return ErrorNotFound
	}
	c.entries = append(c.entries[:idx], c.entries[idx+1:]...)
	return nil
}

// Requests returns how many requests were served per "METHOD path-pattern".
func (c *Collection) Requests(key string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.requests[key]
}

func (c *Collection) countRequest(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests[key]++
}

func (c *Collection) indexOf(id string) int {
	for i, e := range c.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (c *Collection) maxNumericID() int64 {
	var max int64
	for _, e := range c.entries {
		if n, err := strconv.ParseInt(e.id, 10, 64); err == nil && n > max {
			max = n
		}
	}
	return max
}

// recordID normalises a JSON id (number or string) to its text form.
func recordID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("%w: id must be a number or string", ErrorInvalid)
}

func cloneRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
