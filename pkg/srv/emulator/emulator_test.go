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
	"context"
	"errors"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/greenlab/go-novaxr/pkg/config"
	"github.com/greenlab/go-novaxr/pkg/layers"
	"github.com/greenlab/go-novaxr/pkg/log"
	"github.com/greenlab/go-novaxr/pkg/srv"
)

const testTick = 20 * time.Millisecond

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.EmulatorConfig.Address = "127.0.0.1"
	cfg.EmulatorConfig.Port = 0
	cfg.EmulatorConfig.Tick = testTick
	return cfg
}

func newTestEmulator(t *testing.T) (*Emulator, *net.UDPConn) {
	t.Helper()
	e, err := NewEmulator(testConfig(), rand.NewSource(1))
	if err != nil {
		t.Fatalf("NewEmulator() err=%v", err)
	}
	t.Cleanup(func() { e.transport.Close() })

	client, err := net.DialUDP("udp", nil, e.LocalAddr())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })
	return e, client
}

func send(t *testing.T, client *net.UDPConn, payload string) {
	t.Helper()
	if _, err := client.Write([]byte(payload)); err != nil {
		t.Fatalf("write %q failed: %v", payload, err)
	}
}

func tick(t *testing.T, e *Emulator) {
	t.Helper()
	if err := e.Tick(); err != nil {
		t.Fatalf("Tick() err=%v", err)
	}
}

// expectDatagram returns the next datagram or nil if none arrives within wait
func expectDatagram(t *testing.T, client *net.UDPConn, wait time.Duration) []byte {
	t.Helper()
	client.SetReadDeadline(time.Now().Add(wait))
	buf := make([]byte, 2*layers.TransactionSize)
	n, err := client.Read(buf)
	if err != nil {
		return nil
	}
	return buf[:n]
}

func TestStartStreamThenStop(t *testing.T) {
	e, client := newTestEmulator(t)

	send(t, client, "b")
	tick(t, e)
	data := expectDatagram(t, client, time.Second)
	if len(data) != layers.TransactionSize {
		t.Fatalf("expected one %d-byte transaction, got %d bytes", layers.TransactionSize, len(data))
	}
	if e.Status().State != StateStreaming.String() {
		t.Fatalf("unexpected state: %s", e.Status().State)
	}

	// next tick continues the counter across transaction boundaries
	tick(t, e)
	data = expectDatagram(t, client, time.Second)
	if len(data) != layers.TransactionSize || data[0] != layers.NumPackages {
		t.Fatalf("second transaction: len=%d first seq=%d", len(data), data[0])
	}

	send(t, client, "s")
	tick(t, e)
	if extra := expectDatagram(t, client, 3*testTick); extra != nil {
		t.Fatalf("expected no telemetry after stop, got %d bytes", len(extra))
	}
	status := e.Status()
	if status.State != StateIdle.String() || status.Transactions != 2 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestAckRequestBeforeStart(t *testing.T) {
	e, client := newTestEmulator(t)

	for _, cmd := range []string{"d", "~6", "~5", "x1060110X"} {
		send(t, client, cmd)
		tick(t, e)
		reply := expectDatagram(t, client, time.Second)
		if len(reply) != 1 || reply[0] != layers.AckFromDevice {
			t.Fatalf("%q: expected single ack byte, got %q", cmd, reply)
		}
		tick(t, e)
		if extra := expectDatagram(t, client, 2*testTick); extra != nil {
			t.Fatalf("%q: unexpected datagram %q", cmd, extra)
		}
	}
	if e.Status().Transactions != 0 {
		t.Fatalf("no telemetry expected before start")
	}
}

func TestUnrecognizedCommandWhileIdle(t *testing.T) {
	e, client := newTestEmulator(t)
	hook := test.NewLocal(log.Logger())
	defer hook.Reset()

	send(t, client, "hello")
	tick(t, e)
	if extra := expectDatagram(t, client, 3*testTick); extra != nil {
		t.Fatalf("unexpected datagram %q", extra)
	}

	warned := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("expected a warning for unrecognized command")
	}
	status := e.Status()
	if status.State != StateIdle.String() || status.Unrecognized != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestHostAckIsSilent(t *testing.T) {
	e, client := newTestEmulator(t)
	hook := test.NewLocal(log.Logger())
	defer hook.Reset()

	send(t, client, "a")
	tick(t, e)
	if extra := expectDatagram(t, client, 2*testTick); extra != nil {
		t.Fatalf("unexpected datagram %q", extra)
	}
	for _, entry := range hook.AllEntries() {
		if entry.Level <= logrus.WarnLevel {
			t.Fatalf("host ack must not be logged as anomaly: %s", entry.Message)
		}
	}
	if e.Status().Peer != client.LocalAddr().String() {
		t.Fatalf("peer must be remembered, got %q", e.Status().Peer)
	}
}

func TestTickWithoutCommandWhileIdle(t *testing.T) {
	e, _ := newTestEmulator(t)

	start := time.Now()
	tick(t, e)
	if time.Since(start) < testTick {
		t.Fatalf("tick must wait for the receive timeout")
	}
	if e.Status().Sequence != 0 {
		t.Fatalf("idle tick must not synthesize packages")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e, client := newTestEmulator(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	send(t, client, "b")
	if data := expectDatagram(t, client, time.Second); len(data) != layers.TransactionSize {
		t.Fatalf("expected telemetry from running emulator, got %d bytes", len(data))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() err=%v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}

func TestEmptyDatagramWhileIdle(t *testing.T) {
	e, client := newTestEmulator(t)
	hook := test.NewLocal(log.Logger())
	defer hook.Reset()

	send(t, client, "")
	tick(t, e)
	if extra := expectDatagram(t, client, 3*testTick); extra != nil {
		t.Fatalf("unexpected datagram %q", extra)
	}
	for _, entry := range hook.AllEntries() {
		if entry.Level <= logrus.WarnLevel {
			t.Fatalf("empty datagram must not be logged as anomaly: %s", entry.Message)
		}
	}
	status := e.Status()
	if status.State != StateIdle.String() || status.Unrecognized != 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.Peer != client.LocalAddr().String() {
		t.Fatalf("peer must be remembered, got %q", status.Peer)
	}
}

func TestSendFailureKeepsStreaming(t *testing.T) {
	e, _ := newTestEmulator(t)
	hook := test.NewLocal(log.Logger())
	defer hook.Reset()

	// IPv6 destination is not reachable from the IPv4 socket
	e.session.State = StateStreaming
	e.session.Peer = &net.UDPAddr{IP: net.IPv6loopback, Port: 9}

	const ticks = 3
	for i := 0; i < ticks; i++ {
		tick(t, e)
	}
	status := e.Status()
	if status.State != StateStreaming.String() || status.SendErrors != ticks || status.Transactions != 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
	errorsLogged := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			errorsLogged++
		}
	}
	if errorsLogged != ticks {
		t.Fatalf("expected %d send errors logged, got %d", ticks, errorsLogged)
	}

	e.session.Peer = nil
	tick(t, e)
	if status := e.Status(); status.SendErrors != ticks || status.Transactions != 0 {
		t.Fatalf("no send expected without peer: %+v", status)
	}
}

// failingTransport fails every receive at once and records sends
type failingTransport struct {
	sent int
}

func (f *failingTransport) Receive(time.Duration) (srv.InPacket, bool, error) {
	return srv.InPacket{}, false, errors.New("connection refused")
}

func (f *failingTransport) Send(srv.OutPacket) error {
	f.sent++
	return nil
}

func (f *failingTransport) LocalAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}
}

func (f *failingTransport) Close() error {
	return nil
}

func TestReceiveErrorKeepsTickCadence(t *testing.T) {
	e, client := newTestEmulator(t)
	e.transport.Close()
	fake := &failingTransport{}
	e.transport = fake
	e.session.State = StateStreaming
	e.session.Peer = client.LocalAddr().(*net.UDPAddr)

	const ticks = 3
	start := time.Now()
	for i := 0; i < ticks; i++ {
		tick(t, e)
	}
	if elapsed := time.Since(start); elapsed < ticks*testTick {
		t.Fatalf("%d ticks took %s, want at least %s", ticks, elapsed, ticks*testTick)
	}
	if fake.sent != ticks || e.Status().Transactions != ticks {
		t.Fatalf("expected one transaction per tick, sent %d", fake.sent)
	}
}
