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

import (
	"bytes"
)

// Control bytes exchanged over the command channel
const (
	CmdStartStream  byte = 'b'
	CmdStopStream   byte = 's'
	CmdHostAck      byte = 'a'
	CmdConfigMarker byte = 'x'

	AckFromDevice byte = 'A'
	AckInvalid    byte = 'I'
)

// Commands that must be acknowledged by the device with AckFromDevice.
// "d" restores default settings, "~5" and "~6" select the sampling rate.
var AckRequests = [][]byte{
	[]byte("d"),
	[]byte("~6"),
	[]byte("~5"),
}

type CommandKind int

const (
	CommandEmpty CommandKind = iota
	CommandStartStream
	CommandStopStream
	CommandAckRequest
	CommandHostAck
	CommandUnrecognized
)

var commandKindNames = map[CommandKind]string{
	CommandEmpty:        "empty",
	CommandStartStream:  "start_stream",
	CommandStopStream:   "stop_stream",
	CommandAckRequest:   "ack_request",
	CommandHostAck:      "host_ack",
	CommandUnrecognized: "unrecognized",
}

func (k CommandKind) String() string {
	if name, ok := commandKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ClassifyCommand maps a datagram payload to exactly one command kind
func ClassifyCommand(payload []byte) CommandKind {
	if len(payload) == 0 {
		return CommandEmpty
	}
	if len(payload) == 1 {
		switch payload[0] {
		case CmdStartStream:
			return CommandStartStream
		case CmdStopStream:
			return CommandStopStream
		case CmdHostAck:
			return CommandHostAck
		}
	}
	for _, req := range AckRequests {
		if bytes.Equal(payload, req) {
			return CommandAckRequest
		}
	}
	// board configuration commands do not change the package format
	if payload[0] == CmdConfigMarker {
		return CommandAckRequest
	}
	return CommandUnrecognized
}
