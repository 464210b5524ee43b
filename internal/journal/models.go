package journal

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"time"

	"pollwatch/pkg/watcher"
)

// Record is the stored form of one dispatched batch.
type Record struct {
	Key     uint64
	BatchID string
	Seq     uint64
	At      time.Time
	Root    string
	Events  []EventRecord
}

type EventRecord struct {
	Op       string
	Paths    []string
	OldPaths []string `json:",omitempty"`
}

// NewRecord flattens a batch to paths. Metadata is not kept: the journal is
// an audit trail, not a baseline.
func NewRecord(batch watcher.Batch) Record {
	r := Record{
		BatchID: batch.ID.String(),
		Seq:     batch.Seq,
		At:      batch.At,
		Root:    batch.Root,
		Events:  make([]EventRecord, 0, len(batch.Events)),
	}
	for _, ev := range batch.Events {
		er := EventRecord{Op: ev.Op.String(), Paths: ev.Paths()}
		if ev.Op == watcher.Renamed {
			er.OldPaths = make([]string, len(ev.Previous))
			for i, p := range ev.Previous {
				er.OldPaths[i] = p.Path
			}
		}
		r.Events = append(r.Events, er)
	}
	return r
}

// Serializer предоставляет интерфейс для сериализации/десериализации данных
type Serializer interface {
	Serialize(v interface{}) ([]byte, error)
	Deserialize(data []byte, v interface{}) error
}

// GobSerializer реализует Serializer используя encoding/gob
type GobSerializer struct{}

func (s *GobSerializer) Serialize(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *GobSerializer) Deserialize(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// JSONSerializer keeps records readable with generic bolt tools.
type JSONSerializer struct{}

func (s *JSONSerializer) Serialize(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (s *JSONSerializer) Deserialize(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
