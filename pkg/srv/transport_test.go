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
	"net"
	"testing"
	"time"
)

func TestBindFailure(t *testing.T) {
	tr, err := Bind("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("Bind() err=%v", err)
	}
	defer tr.Close()

	_, err = Bind("127.0.0.1", tr.LocalAddr().Port)
	var bindErr ErrBind
	if !errors.As(err, &bindErr) {
		t.Fatalf("expected ErrBind, got %v", err)
	}
	if bindErr.Unwrap() == nil {
		t.Fatalf("ErrBind must carry the cause")
	}
}

func TestReceiveTimeout(t *testing.T) {
	tr, err := Bind("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("Bind() err=%v", err)
	}
	defer tr.Close()

	start := time.Now()
	_, ok, err := tr.Receive(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("timeout must not be an error: %v", err)
	}
	if ok {
		t.Fatalf("expected no packet")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("Receive returned before the timeout")
	}
}

func TestReceiveAndSend(t *testing.T) {
	tr, err := Bind("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("Bind() err=%v", err)
	}
	defer tr.Close()

	peer, err := net.DialUDP("udp", nil, tr.LocalAddr())
	if err != nil {
		t.Fatal(err)
	}
	defer peer.Close()

	if _, err := peer.Write(make([]byte, 200)); err != nil {
		t.Fatal(err)
	}
	packet, ok, err := tr.Receive(time.Second)
	if err != nil || !ok {
		t.Fatalf("Receive ok=%v err=%v", ok, err)
	}
	if len(packet.Data) != MaxCommandSize {
		t.Fatalf("expected datagram cut to %d bytes, got %d", MaxCommandSize, len(packet.Data))
	}
	addr, err := packet.Addr()
	if err != nil {
		t.Fatalf("Addr() err=%v", err)
	}
	if addr.Port != peer.LocalAddr().(*net.UDPAddr).Port {
		t.Fatalf("unexpected sender: %s", addr)
	}

	if err := tr.Send(OutPacket{Data: []byte("A"), UDPAddr: addr}); err != nil {
		t.Fatalf("Send() err=%v", err)
	}
	peer.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 16)
	n, err := peer.Read(buf)
	if err != nil || n != 1 || buf[0] != 'A' {
		t.Fatalf("unexpected reply n=%d err=%v", n, err)
	}
}

func TestSendWithoutPeer(t *testing.T) {
	tr, err := Bind("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("Bind() err=%v", err)
	}
	defer tr.Close()

	if err := tr.Send(OutPacket{Data: []byte("A")}); err != nil {
		t.Fatalf("send without peer must be a no-op, got %v", err)
	}
}
