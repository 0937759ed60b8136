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
	"errors"
	"net"
	"os"
	"time"

	"github.com/greenlab/go-novaxr/pkg/layers"
	"github.com/greenlab/go-novaxr/pkg/log"
)

// Client talks to a device (or the emulator) the way the host driver does
type Client struct {
	conn      *net.UDPConn
	timeout   time.Duration
	buffer    []byte
	streaming bool
}

func Dial(address string, timeout time.Duration) (*Client, error) {
	log.Debug("Connecting to device %s", address)
	uaddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, uaddr)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:    conn,
		timeout: timeout,
		buffer:  make([]byte, 2*layers.TransactionSize),
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Config sends a config command. Out of streaming the device must ack it.
func (c *Client) Config(command string) error {
	log.Debug("Trying to config device with %q", command)
	if _, err := c.conn.Write([]byte(command)); err != nil {
		return err
	}
	if c.streaming {
		return nil
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	n, err := c.conn.Read(c.buffer)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return ErrAckTimeout{Command: command}
	}
	if err != nil {
		return err
	}
	reply := c.buffer[:n]
	if n != 1 {
		return ErrUnexpectedAck{Command: command, Reply: append([]byte{}, reply...)}
	}
	switch reply[0] {
	case layers.AckFromDevice:
		return nil
	case layers.AckInvalid:
		return ErrInvalidCommand{Command: command}
	}
	return ErrUnexpectedAck{Command: command, Reply: []byte{reply[0]}}
}

// Prepare applies default settings and the default sampling rate
func (c *Client) Prepare() error {
	if err := c.Config("d"); err != nil {
		return err
	}
	return c.Config("~5")
}

func (c *Client) StartStream() error {
	if _, err := c.conn.Write([]byte{layers.CmdStartStream}); err != nil {
		return err
	}
	c.streaming = true
	return nil
}

func (c *Client) StopStream() error {
	c.streaming = false
	_, err := c.conn.Write([]byte{layers.CmdStopStream})
	return err
}

// ReadTransaction waits for the next full transaction, acks it and decodes it.
// Datagrams of other sizes are skipped.
func (c *Client) ReadTransaction() ([]layers.Sample, error) {
	deadline := time.Now().Add(c.timeout)
	for {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		n, err := c.conn.Read(c.buffer)
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, ErrNoData{}
		}
		if err != nil {
			return nil, err
		}
		if n != layers.TransactionSize {
			log.Debug("Unable to read %d bytes, read %d", layers.TransactionSize, n)
			continue
		}
		if _, err := c.conn.Write([]byte{layers.CmdHostAck}); err != nil {
			log.Warning("Failed to ack transaction: %s", err)
		}
		return layers.DecodeTransaction(c.buffer[:n])
	}
}
