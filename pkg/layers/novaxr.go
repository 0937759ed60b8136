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

package layers

/*
NovaXR transaction, one UDP datagram of 19 sample packages, 72 bytes each.
All multi-byte fields are little-endian.

Sample package
seq [0]
eda float32 [1:5]
exg 16 x int24 big-endian [5:53]
battery [53]
temperature int16 x100 [54:56]
ppg red int32 [56:60]
ppg ir int32 [60:64]
timestamp float64 [64:72]
*/

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"sigs.k8s.io/yaml"
)

const (
	// TransactionLayerNum identifies the layer
	TransactionLayerNum = 2390
	// SampleLayerNum identifies the layer
	SampleLayerNum = 2391

	PackageSize     = 72
	NumPackages     = 19
	TransactionSize = PackageSize * NumPackages
	NumExgChannels  = 16

	OffsetSeq         = 0
	OffsetEda         = 1
	OffsetExg         = 5
	OffsetBattery     = 53
	OffsetTemperature = 54
	OffsetPpgRed      = 56
	OffsetPpgIr       = 60
	OffsetTimestamp   = 64
)

// Sample is the decoded content of a single sample package
type Sample struct {
	Package     uint8                 `json:"package"`
	Exg         [NumExgChannels]int32 `json:"exg"`
	Eda         float32               `json:"eda"`
	PpgRed      int32                 `json:"ppgRed"`
	PpgIr       int32                 `json:"ppgIr"`
	Temperature float64               `json:"temperature"`
	Battery     uint8                 `json:"battery"`
	Timestamp   float64               `json:"timestamp"`
}

func (s *Sample) String() string {
	result, err := yaml.Marshal(s)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("---\n%s", string(result))
}

// SampleLayer is a single 72-byte sample package.
// Noise, if set, is written first and the protocol fields are put over it,
// so channels the emulator does not model (exg, temperature) come from Noise.
type SampleLayer struct {
	layers.BaseLayer
	Sample
	Noise []byte
}

var SampleLayerType = gopacket.RegisterLayerType(SampleLayerNum,
	gopacket.LayerTypeMetadata{Name: "NovaXRSample", Decoder: gopacket.DecodeFunc(DecodeSampleLayer)})

func (sl *SampleLayer) LayerType() gopacket.LayerType {
	return SampleLayerType
}

// Serialize writes the sample package into buf which must be at least PackageSize long
func (sl *SampleLayer) Serialize(buf []byte) {
	copy(buf[:PackageSize], sl.Noise)
	buf[OffsetSeq] = sl.Package
	binary.LittleEndian.PutUint32(buf[OffsetEda:OffsetEda+4], math.Float32bits(sl.Eda))
	binary.LittleEndian.PutUint32(buf[OffsetPpgRed:OffsetPpgRed+4], uint32(sl.PpgRed))
	binary.LittleEndian.PutUint32(buf[OffsetPpgIr:OffsetPpgIr+4], uint32(sl.PpgIr))
	buf[OffsetBattery] = sl.Battery
	binary.LittleEndian.PutUint64(buf[OffsetTimestamp:OffsetTimestamp+8], math.Float64bits(sl.Timestamp))
}

// SerializeTo serializes the sample package and appends it to the SerializeBuffer
func (sl *SampleLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.AppendBytes(PackageSize)
	if err != nil {
		return err
	}
	for i := range bytes {
		bytes[i] = 0
	}
	sl.Serialize(bytes)
	return nil
}

func (sl *SampleLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < PackageSize {
		df.SetTruncated()
		return ErrTruncated{What: "sample package", Need: PackageSize, Got: len(data)}
	}
	sl.BaseLayer = layers.BaseLayer{
		Contents: data[:PackageSize],
		Payload:  data[PackageSize:],
	}
	sl.Package = data[OffsetSeq]
	sl.Eda = math.Float32frombits(binary.LittleEndian.Uint32(data[OffsetEda : OffsetEda+4]))
	for i := 0; i < NumExgChannels; i++ {
		sl.Exg[i] = Int24ToInt32(data[OffsetExg+3*i : OffsetExg+3*i+3])
	}
	sl.Battery = data[OffsetBattery]
	sl.Temperature = float64(int16(binary.LittleEndian.Uint16(data[OffsetTemperature:OffsetTemperature+2]))) / 100.0
	sl.PpgRed = int32(binary.LittleEndian.Uint32(data[OffsetPpgRed : OffsetPpgRed+4]))
	sl.PpgIr = int32(binary.LittleEndian.Uint32(data[OffsetPpgIr : OffsetPpgIr+4]))
	sl.Timestamp = math.Float64frombits(binary.LittleEndian.Uint64(data[OffsetTimestamp : OffsetTimestamp+8]))
	return nil
}

func (sl *SampleLayer) CanDecode() gopacket.LayerClass {
	return SampleLayerType
}

func (sl *SampleLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

func DecodeSampleLayer(data []byte, p gopacket.PacketBuilder) error {
	sl := &SampleLayer{}
	err := sl.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(sl)
	return nil
}

// Int24ToInt32 converts a signed big-endian 24-bit integer
func Int24ToInt32(b []byte) int32 {
	v := int32(b[0])<<16 | int32(b[1])<<8 | int32(b[2])
	if v&0x00800000 != 0 {
		v |= ^0x00ffffff
	}
	return v
}

// TransactionLayer is a whole datagram of NumPackages sample packages
type TransactionLayer struct {
	layers.BaseLayer
	Samples []*SampleLayer
}

var TransactionLayerType = gopacket.RegisterLayerType(TransactionLayerNum,
	gopacket.LayerTypeMetadata{Name: "NovaXRTransaction", Decoder: gopacket.DecodeFunc(DecodeTransactionLayer)})

func (tl *TransactionLayer) LayerType() gopacket.LayerType {
	return TransactionLayerType
}

// SerializeTo appends all sample packages in slot order
func (tl *TransactionLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	if len(tl.Samples) != NumPackages {
		return ErrTruncated{What: "transaction", Need: NumPackages, Got: len(tl.Samples)}
	}
	for _, sl := range tl.Samples {
		if err := sl.SerializeTo(b, opts); err != nil {
			return err
		}
	}
	return nil
}

func (tl *TransactionLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < TransactionSize {
		df.SetTruncated()
		return ErrTruncated{What: "transaction", Need: TransactionSize, Got: len(data)}
	}
	tl.BaseLayer = layers.BaseLayer{
		Contents: data[:TransactionSize],
		Payload:  data[TransactionSize:],
	}
	tl.Samples = make([]*SampleLayer, 0, NumPackages)
	for i := 0; i < NumPackages; i++ {
		offset := i * PackageSize
		sl := &SampleLayer{}
		if err := sl.DecodeFromBytes(data[offset:offset+PackageSize], df); err != nil {
			return err
		}
		tl.Samples = append(tl.Samples, sl)
	}
	return nil
}

func (tl *TransactionLayer) CanDecode() gopacket.LayerClass {
	return TransactionLayerType
}

func (tl *TransactionLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

func DecodeTransactionLayer(data []byte, p gopacket.PacketBuilder) error {
	tl := &TransactionLayer{}
	err := tl.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(tl)
	return nil
}

// DecodeTransaction parses a datagram into decoded samples
func DecodeTransaction(data []byte) ([]Sample, error) {
	packet := gopacket.NewPacket(data, TransactionLayerType, gopacket.NoCopy)
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, errLayer.Error()
	}
	tl, ok := packet.Layer(TransactionLayerType).(*TransactionLayer)
	if !ok {
		return nil, ErrTruncated{What: "transaction", Need: TransactionSize, Got: len(data)}
	}
	samples := make([]Sample, 0, len(tl.Samples))
	for _, sl := range tl.Samples {
		samples = append(samples, sl.Sample)
	}
	return samples, nil
}
