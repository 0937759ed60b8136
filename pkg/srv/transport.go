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
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"

	"github.com/greenlab/go-novaxr/pkg/log"
)

// Transport owns the device UDP socket
type Transport struct {
	conn   *net.UDPConn
	buffer []byte
}

// Bind creates a UDP socket bound to the given local endpoint
func Bind(address string, port int) (*Transport, error) {
	endpoint := net.JoinHostPort(address, fmt.Sprint(port))
	log.Debug("Binding transport to %s", endpoint)

	uaddr, err := net.ResolveUDPAddr("udp", endpoint)
	if err != nil {
		return nil, ErrBind{Address: endpoint, Err: err}
	}
	conn, err := net.ListenUDP("udp", uaddr)
	if err != nil {
		return nil, ErrBind{Address: endpoint, Err: err}
	}
	return &Transport{
		conn:   conn,
		buffer: make([]byte, MaxCommandSize),
	}, nil
}

func (t *Transport) LocalAddr() *net.UDPAddr {
	return t.conn.LocalAddr().(*net.UDPAddr)
}

// Receive waits up to timeout for a single datagram.
// ok is false when nothing arrived in time, which is not an error.
func (t *Transport) Receive(timeout time.Duration) (packet InPacket, ok bool, err error) {
	if err = t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return InPacket{}, false, err
	}
	length, addr, err := t.conn.ReadFromUDP(t.buffer)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return InPacket{}, false, nil
		}
		return InPacket{}, false, err
	}

	data := make([]byte, length)
	copy(data, t.buffer[:length])
	packet = InPacket{
		Data: data,
		CaptureInfo: gopacket.CaptureInfo{
			Length:        length,
			CaptureLength: length,
			Timestamp:     time.Now(),
			AncillaryData: []interface{}{addr},
		},
	}
	return packet, true, nil
}

// Send transmits one datagram. Packets without destination are dropped.
func (t *Transport) Send(packet OutPacket) error {
	if packet.UDPAddr == nil {
		log.Debug("Drop packet. Peer address is not known yet")
		return nil
	}
	_, err := t.conn.WriteToUDP(packet.Data, packet.UDPAddr)
	return err
}

func (t *Transport) Close() error {
	return t.conn.Close()
}
