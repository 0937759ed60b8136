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

package srv

import (
	"net"

	"github.com/google/gopacket"
)

const (
	// MaxCommandSize is the largest command datagram the device reads
	MaxCommandSize = 128
)

type InPacket struct {
	Data []byte
	gopacket.CaptureInfo
}

// Addr returns the UDPAddr of the peer that sent the packet
func (p InPacket) Addr() (*net.UDPAddr, error) {
	if len(p.AncillaryData) >= 1 {
		udpAddr, ok := p.AncillaryData[0].(*net.UDPAddr)
		if ok {
			return udpAddr, nil
		}
	}
	return nil, ErrGetAddr{}
}

type OutPacket struct {
	Data []byte
	*net.UDPAddr
}
