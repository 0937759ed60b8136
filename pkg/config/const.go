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

package config

import "time"

const (
	ConfigDir  = ".go-novaxr"
	ConfigFile = "config"

	// The device firmware listens on this port, the emulator keeps it.
	DefaultEmulatorAddress = "127.0.0.1"
	DefaultEmulatorPort    = 2390
	DefaultTick            = 100 * time.Millisecond

	DefaultApiAddress = "127.0.0.1"
	DefaultApiPort    = 8002

	DefaultMonitorDeviceAddress = "127.0.0.1"
	DefaultMonitorDevicePort    = 2390
	DefaultMonitorTimeout       = 3 * time.Second
	DefaultDBFile               = "sessions.db"
	DefaultRedisChannel         = "novaxr_samples"

	DefaultLogLevel = "info"
)
