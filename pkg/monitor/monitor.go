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
	"fmt"
	"io"

	"github.com/greenlab/go-novaxr/pkg/layers"
	"github.com/greenlab/go-novaxr/pkg/log"
)

// Sink consumes decoded transactions
type Sink interface {
	Consume(ctx context.Context, samples []layers.Sample) error
}

// Printer writes samples as YAML documents
type Printer struct {
	io.Writer
}

func (p *Printer) Consume(_ context.Context, samples []layers.Sample) error {
	for i := range samples {
		if _, err := fmt.Fprint(p.Writer, samples[i].String()); err != nil {
			return err
		}
	}
	return nil
}

type Monitor struct {
	client *Client
	sinks  []Sink
	next   uint8
	seen   bool
	Lost   uint64
}

func NewMonitor(client *Client, sinks ...Sink) *Monitor {
	return &Monitor{
		client: client,
		sinks:  sinks,
	}
}

// Run prepares the device, streams count transactions (0 means until ctx is done)
// into the sinks and stops streaming.
func (m *Monitor) Run(ctx context.Context, count int) (err error) {
	if err = m.client.Prepare(); err != nil {
		return err
	}
	if err = m.client.StartStream(); err != nil {
		return err
	}
	log.Info("Streaming is started")
	defer func() {
		if stopErr := m.client.StopStream(); stopErr != nil && err == nil {
			err = stopErr
		}
		log.Info("Streaming is stopped, lost packages: %d", m.Lost)
	}()

	for received := 0; count == 0 || received < count; received++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		samples, err := m.client.ReadTransaction()
		if err != nil {
			return err
		}
		m.track(samples)
		for _, sink := range m.sinks {
			if err := sink.Consume(ctx, samples); err != nil {
				return err
			}
		}
	}
	return nil
}

// track counts packages missing from the rolling package numbers
func (m *Monitor) track(samples []layers.Sample) {
	for _, s := range samples {
		if m.seen && s.Package != m.next {
			lost := uint8(s.Package - m.next)
			m.Lost += uint64(lost)
			log.Warning("Lost %d packages before package %d", lost, s.Package)
		}
		m.next = s.Package + 1
		m.seen = true
	}
}
