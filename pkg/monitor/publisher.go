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
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/greenlab/go-novaxr/pkg/layers"
	"github.com/greenlab/go-novaxr/pkg/log"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// Publisher fans samples out to a redis pub/sub channel as JSON
type Publisher struct {
	client  publisher
	channel string
}

func NewPublisher(ctx context.Context, addr, channel string) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis %s: %w", addr, err)
	}
	log.Info("Publishing samples to redis %s channel %s", addr, channel)
	return &Publisher{
		client:  client,
		channel: channel,
	}, nil
}

func (p *Publisher) Consume(ctx context.Context, samples []layers.Sample) error {
	for i := range samples {
		data, err := json.Marshal(&samples[i])
		if err != nil {
			return err
		}
		if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
			return fmt.Errorf("publishing sample %d: %w", samples[i].Package, err)
		}
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
