// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// Errors that can be returned by this package. Since some of these errors are returned wrapped, it
// is safest to use errors.Is() to check for them.
var (
	ErrWatcherNotStopped  = errors.New("watcher is either running or starting")
	ErrWatcherNotRunning  = errors.New("watcher is either stopped or stopping")
	ErrNoListenerProvided = errors.New("no listener provided")
	ErrNilStore           = errors.New("store cannot be nil")
	ErrNilMeasures        = errors.New("measures cannot be nil")
)

// watching states
const (
	stopped int32 = iota
	running
	transitioning
)

const (
	defaultPullInterval = time.Second * 5
	defaultPollTimeout  = time.Second * 10
)

// Listener is told about every asset snapshot pulled from the store.
type Listener interface {
	Update(assets []model.Asset)
}

type ListenerFunc func(assets []model.Asset)

func (l ListenerFunc) Update(assets []model.Asset) {
	l(assets)
}

type Config struct {
	// Listener receives the assets of each poll.
	Listener Listener

	// PullInterval is how often the store is read.
	// (Optional). Defaults to 5 seconds.
	PullInterval time.Duration

	// PollTimeout bounds a single read of the store.
	// (Optional). Defaults to 10 seconds.
	PollTimeout time.Duration

	// Logger to be used by the watcher.
	// (Optional). By default the sallust default logger will be used.
	Logger *zap.Logger
}

// Watcher periodically reads every asset of a store so changes made by other
// writers of a shared backend reach this process.
type Watcher struct {
	store        store.S
	listener     Listener
	pullInterval time.Duration
	pollTimeout  time.Duration
	logger       *zap.Logger
	measures     *Measures

	ticker   *time.Ticker
	shutdown chan struct{}
	done     chan struct{}
	state    atomic.Int32
}

func New(config Config, s store.S, measures *Measures) (*Watcher, error) {
	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNilStore
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}
	ticker := time.NewTicker(config.PullInterval)
	ticker.Stop()
	return &Watcher{
		store:        s,
		listener:     config.Listener,
		pullInterval: config.PullInterval,
		pollTimeout:  config.PollTimeout,
		logger:       config.Logger,
		measures:     measures,
		ticker:       ticker,
		shutdown:     make(chan struct{}),
	}, nil
}

// Start begins polling on an interval. Calling Start on a watcher that is not
// stopped returns ErrWatcherNotStopped.
func (w *Watcher) Start(_ context.Context) error {
	if !w.state.CompareAndSwap(stopped, transitioning) {
		w.logger.Error("Start called when a watcher was not in stopped state", zap.Error(ErrWatcherNotStopped))
		return ErrWatcherNotStopped
	}

	w.ticker.Reset(w.pullInterval)
	w.done = make(chan struct{})
	go w.run(w.done)

	w.state.Store(running)
	return nil
}

func (w *Watcher) run(done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-w.shutdown:
			return
		case <-w.ticker.C:
			w.Poll()
		}
	}
}

// Poll reads the store once and hands the assets to the listener.
func (w *Watcher) Poll() {
	ctx, cancel := context.WithTimeout(context.Background(), w.pollTimeout)
	defer cancel()

	outcome := SuccessOutcome
	assets, err := w.store.GetAll(ctx)
	if err == nil {
		w.listener.Update(store.AssetList(assets))
	} else {
		outcome = FailureOutcome
		w.logger.Error("failed to get assets for listener", zap.Error(err))
	}
	w.measures.Polls.With(prometheus.Labels{OutcomeLabel: outcome}).Inc()
}

// Stop requests the polling goroutine to stop and waits for it to complete.
// Calling Stop when the watcher is not running returns ErrWatcherNotRunning.
func (w *Watcher) Stop(_ context.Context) error {
	if !w.state.CompareAndSwap(running, transitioning) {
		w.logger.Error("Stop called when a watcher was not in running state", zap.Error(ErrWatcherNotRunning))
		return ErrWatcherNotRunning
	}

	w.ticker.Stop()
	w.shutdown <- struct{}{}
	<-w.done
	w.state.Store(stopped)
	return nil
}

func validateConfig(config *Config) error {
	if config.Listener == nil {
		return ErrNoListenerProvided
	}
	if config.Logger == nil {
		config.Logger = sallust.Default()
	}
	if config.PullInterval <= 0 {
		config.PullInterval = defaultPullInterval
	}
	if config.PollTimeout <= 0 {
		config.PollTimeout = defaultPollTimeout
	}
	return nil
}
