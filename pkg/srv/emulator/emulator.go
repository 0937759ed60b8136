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
	"sync/atomic"
	"time"

	"github.com/greenlab/go-novaxr/pkg/config"
	"github.com/greenlab/go-novaxr/pkg/layers"
	"github.com/greenlab/go-novaxr/pkg/log"
	"github.com/greenlab/go-novaxr/pkg/srv"
)

// Session holds everything the protocol loop mutates. Only the loop touches it.
type Session struct {
	State        AcquisitionState
	Peer         *net.UDPAddr
	Transactions uint64
	Unrecognized uint64
	SendErrors   uint64
	synth        *Synthesizer
}

// deviceTransport is the part of srv.Transport the loop needs
type deviceTransport interface {
	Receive(timeout time.Duration) (srv.InPacket, bool, error)
	Send(packet srv.OutPacket) error
	LocalAddr() *net.UDPAddr
	Close() error
}

type Emulator struct {
	*config.Config
	transport deviceTransport
	session   *Session
	metrics   *Metrics
	api       *ApiServer
	status    atomic.Pointer[Status]
}

// NewEmulator binds the device socket. Bind failures are returned as srv.ErrBind.
func NewEmulator(cfg *config.Config, src rand.Source) (*Emulator, error) {
	log.Debug("Initializing emulator with address: %s port: %d tick: %s",
		cfg.EmulatorConfig.Address, cfg.EmulatorConfig.Port, cfg.EmulatorConfig.Tick)

	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	transport, err := srv.Bind(cfg.EmulatorConfig.Address, cfg.EmulatorConfig.Port)
	if err != nil {
		return nil, err
	}

	e := &Emulator{
		Config:    cfg,
		transport: transport,
		session: &Session{
			State: StateIdle,
			synth: NewSynthesizer(src),
		},
		metrics: NewMetrics(),
	}
	if cfg.ApiConfig != nil && cfg.ApiConfig.Enabled {
		e.api = NewApiServer(cfg, e)
	}
	e.publishStatus()
	return e, nil
}

func (e *Emulator) LocalAddr() *net.UDPAddr {
	return e.transport.LocalAddr()
}

func (e *Emulator) Metrics() *Metrics {
	return e.metrics
}

// Status returns the snapshot published by the last tick
func (e *Emulator) Status() *Status {
	return e.status.Load()
}

// Run serves the device protocol until ctx is cancelled
func (e *Emulator) Run(ctx context.Context) error {
	defer e.transport.Close()

	if e.api != nil {
		go func() {
			if err := e.api.Run(ctx); err != nil {
				log.Error("API server stopped: %s", err)
			}
		}()
	}

	log.Info("NovaXR emulator is listening on %s", e.LocalAddr())
	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping NovaXR emulator")
			return nil
		default:
		}
		if err := e.Tick(); err != nil {
			return err
		}
	}
}

// Tick waits for one command and sends one transaction if streaming.
// Only a closed socket is reported as error.
func (e *Emulator) Tick() error {
	start := time.Now()
	packet, ok, err := e.transport.Receive(e.EmulatorConfig.Tick)
	switch {
	case errors.Is(err, net.ErrClosed):
		return err
	case err != nil:
		log.Error("Error while receiving command: %s", err)
		// keep one transaction per tick
		time.Sleep(e.EmulatorConfig.Tick - time.Since(start))
	case ok:
		e.handle(packet)
	default:
		log.Debug("Timeout for recv")
	}

	if e.session.State == StateStreaming {
		e.stream()
	}
	e.publishStatus()
	return nil
}

func (e *Emulator) handle(packet srv.InPacket) {
	addr, err := packet.Addr()
	if err != nil {
		log.Error(err.Error())
		return
	}
	e.session.Peer = addr

	kind := layers.ClassifyCommand(packet.Data)
	e.metrics.observeCommand(kind)
	switch kind {
	case layers.CommandStartStream, layers.CommandStopStream:
		e.session.State = e.session.State.Next(kind)
		e.metrics.observeState(e.session.State)
		log.Info("Command %s from %s, state: %s", kind, addr, e.session.State)
	case layers.CommandAckRequest:
		log.Debug("Command %q from %s, sending ack", packet.Data, addr)
		e.send([]byte{layers.AckFromDevice})
	case layers.CommandHostAck:
	case layers.CommandEmpty:
		log.Debug("Empty datagram from %s", addr)
	default:
		e.session.Unrecognized++
		log.Warning("Received unexpected command %q from %s", packet.Data, addr)
	}
}

func (e *Emulator) stream() {
	data, err := e.session.synth.Synthesize()
	if err != nil {
		log.Error("Error while synthesizing transaction: %s", err)
		return
	}
	if e.session.Peer == nil {
		return
	}
	if e.send(data) {
		e.session.Transactions++
		e.metrics.Transactions.Inc()
	}
}

func (e *Emulator) send(data []byte) bool {
	err := e.transport.Send(srv.OutPacket{Data: data, UDPAddr: e.session.Peer})
	if err != nil {
		e.session.SendErrors++
		e.metrics.SendErrors.Inc()
		log.Error("Error while sending %d bytes to %s: %s", len(data), e.session.Peer, err)
		return false
	}
	return true
}

func (e *Emulator) publishStatus() {
	status := &Status{
		State:        e.session.State.String(),
		Sequence:     e.session.synth.Seq(),
		Transactions: e.session.Transactions,
		Unrecognized: e.session.Unrecognized,
		SendErrors:   e.session.SendErrors,
	}
	if e.session.Peer != nil {
		status.Peer = e.session.Peer.String()
	}
	e.status.Store(status)
}
