/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package monitor

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"

	"github.com/greenlab/go-novaxr/pkg/layers"
	"github.com/greenlab/go-novaxr/pkg/log"
)

const (
	BucketPrefix = "session_"
)

// Recorder stores received samples in a bolt database, one bucket per session
type Recorder struct {
	DB      *bbolt.DB
	session string
}

func NewRecorder(path, session string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketName(session)))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Recorder{
		DB:      db,
		session: session,
	}, nil
}

func BucketName(session string) string {
	return fmt.Sprintf("%s%s", BucketPrefix, session)
}

func uint64ToByte(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (r *Recorder) Close() error {
	return r.DB.Close()
}

// Consume appends samples to the session bucket in arrival order
func (r *Recorder) Consume(_ context.Context, samples []layers.Sample) error {
	return r.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName(r.session)))
		if b == nil {
			return ErrBucketNotFound{Name: BucketName(r.session)}
		}
		for i := range samples {
			value, err := cbor.Marshal(&samples[i])
			if err != nil {
				return err
			}
			id, err := b.NextSequence()
			if err != nil {
				return err
			}
			if err := b.Put(uint64ToByte(id), value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Samples returns all samples recorded for a session
func (r *Recorder) Samples(session string) ([]layers.Sample, error) {
	var samples []layers.Sample
	err := r.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName(session)))
		if b == nil {
			return ErrBucketNotFound{Name: BucketName(session)}
		}
		return b.ForEach(func(_, v []byte) error {
			sample := layers.Sample{}
			if err := cbor.Unmarshal(v, &sample); err != nil {
				return err
			}
			samples = append(samples, sample)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// Sessions lists recorded session names
func (r *Recorder) Sessions() ([]string, error) {
	var sessions []string
	err := r.DB.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			if len(name) > len(BucketPrefix) && string(name[:len(BucketPrefix)]) == BucketPrefix {
				sessions = append(sessions, string(name[len(BucketPrefix):]))
			}
			return nil
		})
	})
	log.Debug("Found %d recorded sessions", len(sessions))
	return sessions, err
}
