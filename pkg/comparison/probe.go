// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package comparison

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"github.com/vafast/thunderbench/pkg/stats"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPollInterval   = 100 * time.Millisecond
	healthCheckTimeout    = 2 * time.Second
	warmupRequestTimeout  = 5 * time.Second
	warmupConcurrency     = 10
	successStatusLowerEnd = 200
	successStatusUpperEnd = 299
)

// HTTPProbe waits for target health check to succeed and warms the target up.
// It does not start anything.
type HTTPProbe struct {
	client       *fasthttp.Client
	PollInterval time.Duration
	// WarmupRequests is used for targets which do not set their own.
	WarmupRequests int
}

// NewHTTPProbe returns probe polling every 100ms.
func NewHTTPProbe() *HTTPProbe {
	return &HTTPProbe{
		client:       &fasthttp.Client{Name: "thunderbench"},
		PollInterval: defaultPollInterval,
	}
}

// Prepare implements Lifecycle interface.
func (p *HTTPProbe) Prepare(ctx context.Context, target Target) error {
	if err := p.WaitReady(ctx, target); err != nil {
		return err
	}
	warmup := p.Warmup(target)
	if warmup.TotalRequests > 0 {
		logrus.Infof("Target %q warmed up with %d requests, %d failed, avg %.2fms", target.Name,
			warmup.TotalRequests, warmup.FailedRequests, warmup.AverageResponseTime)
	}
	return nil
}

// Release implements Lifecycle interface.
func (p *HTTPProbe) Release(target Target) error {
	return nil
}

// WaitReady polls health check URL until it answers with 2xx or startup timeout passes.
func (p *HTTPProbe) WaitReady(ctx context.Context, target Target) error {
	address := target.HealthURL()
	deadline := time.Now().Add(target.startupTimeout())
	logrus.Debugf("Waiting up to %s for %q at %s", target.startupTimeout(), target.Name, address)

	var lastErr error
	for {
		sample := p.get(address, healthCheckTimeout)
		if sample.Success {
			logrus.Debugf("Target %q is ready", target.Name)
			return nil
		}
		lastErr = errors.New(sample.Error)

		if time.Now().After(deadline) {
			return &TargetUnreachableError{Target: target.Name, URL: address, Err: lastErr}
		}
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "waiting for target %q interrupted", target.Name)
		case <-time.After(p.PollInterval):
		}
	}
}

// Warmup sends warm-up requests to health check URL, ten at a time. Failed requests
// are only counted.
func (p *HTTPProbe) Warmup(target Target) stats.DetailedStats {
	count := target.WarmupRequests
	if count <= 0 {
		count = p.WarmupRequests
	}
	if count <= 0 {
		return stats.DetailedStats{}
	}

	address := target.HealthURL()
	start := time.Now()
	samples := make([]stats.RequestSample, 0, count)
	var mutex sync.Mutex

	for sent := 0; sent < count; sent += warmupConcurrency {
		batch := count - sent
		if batch > warmupConcurrency {
			batch = warmupConcurrency
		}

		var group errgroup.Group
		for i := 0; i < batch; i++ {
			group.Go(func() error {
				sample := p.get(address, warmupRequestTimeout)
				mutex.Lock()
				samples = append(samples, sample)
				mutex.Unlock()
				return nil
			})
		}
		group.Wait()
	}

	return stats.Calculate(samples, start)
}

func (p *HTTPProbe) get(address string, timeout time.Duration) stats.RequestSample {
	request := fasthttp.AcquireRequest()
	response := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(request)
	defer fasthttp.ReleaseResponse(response)

	request.SetRequestURI(address)
	request.Header.SetMethod(fasthttp.MethodGet)

	sample := stats.RequestSample{Name: "warmup", Timestamp: time.Now()}
	err := p.client.DoTimeout(request, response, timeout)
	sample.ResponseTime = float64(time.Since(sample.Timestamp).Nanoseconds()) / float64(time.Millisecond)
	if err != nil {
		sample.Error = err.Error()
		sample.IsTimeout = err == fasthttp.ErrTimeout
		return sample
	}

	sample.StatusCode = response.StatusCode()
	sample.ResponseSize = int64(len(response.Body()))
	sample.Success = sample.StatusCode >= successStatusLowerEnd && sample.StatusCode <= successStatusUpperEnd
	if !sample.Success {
		sample.Error = fmt.Sprintf("unexpected status %d", sample.StatusCode)
	}
	return sample
}
