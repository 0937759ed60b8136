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

package emulator

import (
	"math/rand"
	"time"

	"github.com/google/gopacket"

	"github.com/greenlab/go-novaxr/pkg/layers"
)

const (
	MaxPpg     = 5000
	MaxBattery = 100
)

// Synthesizer builds random transactions and owns the rolling package counter
type Synthesizer struct {
	rand *rand.Rand
	seq  uint8
	now  func() time.Time
}

func NewSynthesizer(src rand.Source) *Synthesizer {
	return &Synthesizer{
		rand: rand.New(src),
		now:  time.Now,
	}
}

// Seq returns the number the next sample package will carry
func (s *Synthesizer) Seq() uint8 {
	return s.seq
}

func (s *Synthesizer) NextSample() *layers.SampleLayer {
	noise := make([]byte, layers.PackageSize)
	s.rand.Read(noise)

	sl := &layers.SampleLayer{Noise: noise}
	sl.Package = s.seq
	s.seq++
	sl.Eda = s.rand.Float32()
	sl.PpgRed = s.rand.Int31n(MaxPpg)
	sl.PpgIr = s.rand.Int31n(MaxPpg)
	sl.Battery = uint8(s.rand.Intn(MaxBattery + 1))
	sl.Timestamp = float64(s.now().UnixNano()) / float64(time.Second)
	return sl
}

func (s *Synthesizer) NextTransaction() *layers.TransactionLayer {
	tl := &layers.TransactionLayer{
		Samples: make([]*layers.SampleLayer, 0, layers.NumPackages),
	}
	for i := 0; i < layers.NumPackages; i++ {
		tl.Samples = append(tl.Samples, s.NextSample())
	}
	return tl
}

// Synthesize returns the next transaction serialized for the wire
func (s *Synthesizer) Synthesize() ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, s.NextTransaction()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
