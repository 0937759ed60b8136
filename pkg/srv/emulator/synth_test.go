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
	"encoding/binary"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/greenlab/go-novaxr/pkg/layers"
)

func TestStateFollowsLastStateChangingCommand(t *testing.T) {
	kinds := []layers.CommandKind{
		layers.CommandStartStream,
		layers.CommandStopStream,
		layers.CommandAckRequest,
		layers.CommandHostAck,
		layers.CommandUnrecognized,
		layers.CommandEmpty,
	}
	r := rand.New(rand.NewSource(1))
	for run := 0; run < 200; run++ {
		state := StateIdle
		want := StateIdle
		for n := r.Intn(30); n > 0; n-- {
			kind := kinds[r.Intn(len(kinds))]
			state = state.Next(kind)
			switch kind {
			case layers.CommandStartStream:
				want = StateStreaming
			case layers.CommandStopStream:
				want = StateIdle
			}
			if state != want {
				t.Fatalf("run %d: state=%s want %s after %s", run, state, want, kind)
			}
		}
	}
}

func TestStateIdempotent(t *testing.T) {
	if StateStreaming.Next(layers.CommandStartStream) != StateStreaming {
		t.Fatalf("start while streaming must keep streaming")
	}
	if StateIdle.Next(layers.CommandStopStream) != StateIdle {
		t.Fatalf("stop while idle must keep idle")
	}
}

func TestSynthesizerLayout(t *testing.T) {
	s := NewSynthesizer(rand.NewSource(42))
	before := float64(time.Now().UnixNano()) / float64(time.Second)
	data, err := s.Synthesize()
	after := float64(time.Now().UnixNano()) / float64(time.Second)
	if err != nil {
		t.Fatalf("Synthesize() err=%v", err)
	}
	if len(data) != layers.TransactionSize {
		t.Fatalf("transaction size %d, want %d", len(data), layers.TransactionSize)
	}

	for k := 0; k < layers.NumPackages; k++ {
		pkg := data[k*layers.PackageSize : (k+1)*layers.PackageSize]
		if pkg[0] != uint8(k) {
			t.Fatalf("package %d: seq=%d", k, pkg[0])
		}
		eda := math.Float32frombits(binary.LittleEndian.Uint32(pkg[1:5]))
		if eda < 0 || eda >= 1 {
			t.Fatalf("package %d: eda=%v out of range", k, eda)
		}
		for _, off := range []int{56, 60} {
			v := int32(binary.LittleEndian.Uint32(pkg[off : off+4]))
			if v < 0 || v >= MaxPpg {
				t.Fatalf("package %d: ppg at %d=%d out of range", k, off, v)
			}
		}
		if pkg[53] > MaxBattery {
			t.Fatalf("package %d: battery=%d out of range", k, pkg[53])
		}
		ts := math.Float64frombits(binary.LittleEndian.Uint64(pkg[64:72]))
		if ts < before-0.001 || ts > after+0.001 {
			t.Fatalf("package %d: timestamp %f not in [%f, %f]", k, ts, before, after)
		}
	}
}

func TestSynthesizerSequenceWraps(t *testing.T) {
	s := NewSynthesizer(rand.NewSource(7))
	want := uint8(0)
	// 20 transactions = 380 packages, wraps once
	for tr := 0; tr < 20; tr++ {
		initial := s.Seq()
		tl := s.NextTransaction()
		for k, sl := range tl.Samples {
			if sl.Package != want {
				t.Fatalf("transaction %d package %d: seq=%d want %d", tr, k, sl.Package, want)
			}
			if sl.Package != initial+uint8(k) {
				t.Fatalf("transaction %d package %d: seq=%d not initial+k", tr, k, sl.Package)
			}
			want++
		}
	}

	s = NewSynthesizer(rand.NewSource(7))
	for i := 0; i < 256; i++ {
		s.NextSample()
	}
	if s.Seq() != 0 {
		t.Fatalf("after 256 packages seq=%d, want 0", s.Seq())
	}
}

func TestSynthesizerNoiseDiffers(t *testing.T) {
	s := NewSynthesizer(rand.NewSource(3))
	a := s.NextSample()
	b := s.NextSample()
	same := 0
	for i := range a.Noise {
		if a.Noise[i] == b.Noise[i] {
			same++
		}
	}
	if same == layers.PackageSize {
		t.Fatalf("noise is not randomized per package")
	}
}
