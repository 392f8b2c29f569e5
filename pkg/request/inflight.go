/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package request

import (
	"context"
	"sync"
)

// inflight counts exchanges and assertions that have not yet settled.
// Unlike a sync.WaitGroup work may be added while someone is waiting.
type inflight struct {
	lock  sync.Mutex
	count int
	idle  chan struct{}
}

func (i *inflight) add() {
	i.lock.Lock()
	defer i.lock.Unlock()

	if i.count == 0 {
		i.idle = make(chan struct{})
	}

	i.count++
}

func (i *inflight) done() {
	i.lock.Lock()
	defer i.lock.Unlock()

	i.count--

	if i.count == 0 {
		close(i.idle)
	}
}

// wait blocks until nothing is in flight.
func (i *inflight) wait(ctx context.Context) error {
	for {
		i.lock.Lock()

		if i.count == 0 {
			i.lock.Unlock()
			return nil
		}

		idle := i.idle

		i.lock.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
