// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"context"
	"errors"
	"time"

	"emperror.dev/emperror"
	"github.com/gocql/gocql"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/store"
	"github.com/mohammadbaghban/openremote/store/db/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	Yugabyte = "yugabyte"

	defaultOpTimeout             = time.Duration(10) * time.Second
	defaultDatabase              = "widgets"
	defaultNumRetries            = 0
	defaultWaitTimeMult          = 1
	defaultMaxNumberConnsPerHost = 2
	defaultPingInterval          = 5 * time.Second
)

var errNoHosts = errors.New("number of hosts must be > 0")

type Config struct {
	// Hosts to  connect to. Must have at least one
	Hosts []string

	// Database aka Keyspace for cassandra
	Database string

	// OpTimeout
	OpTimeout time.Duration

	// SSLRootCert used for enabling tls to the cluster. SSLKey, and SSLCert must also be set.
	SSLRootCert string
	// SSLKey used for enabling tls to the cluster. SSLRootCert, and SSLCert must also be set.
	SSLKey string
	// SSLCert used for enabling tls to the cluster. SSLRootCert, and SSLRootCert must also be set.
	SSLCert string
	// If you want to verify the hostname and server cert (like a wildcard for cass cluster) then you should turn this on
	// This option is basically the inverse of InSecureSkipVerify
	// See InSecureSkipVerify in http://golang.org/pkg/crypto/tls/ for more info
	EnableHostVerification bool

	// Username to authenticate into the cluster. Password must also be provided.
	Username string
	// Password to authenticate into the cluster. Username must also be provided.
	Password string

	// NumRetries for connecting to the db
	NumRetries int

	// WaitTimeMult the amount of time to wait before retrying to connect to the db
	WaitTimeMult time.Duration

	// MaxConnsPerHost max number of connections per host
	MaxConnsPerHost int

	// PingInterval is how often the connection is checked.
	// (Optional). Defaults to 5s.
	PingInterval time.Duration
}

type CassandraClient struct {
	client   dbStore
	config   Config
	logger   *zap.Logger
	measures metric.Measures
}

// NewCassandra connects to the cluster and pings it periodically until the
// application stops.
func NewCassandra(config Config, measures metric.Measures, lc fx.Lifecycle, logger *zap.Logger) (store.S, error) {
	client, err := CreateCassandraClient(config, measures, logger)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go client.pingEvery(client.config.PingInterval, done)
			return nil
		},
		OnStop: func(context.Context) error {
			close(done)
			client.Close()
			return nil
		},
	})
	return client, nil
}

func (s *CassandraClient) pingEvery(d time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := s.Ping(); err != nil {
				s.logger.Error("ping failed", zap.Error(err))
			}
		}
	}
}

func CreateCassandraClient(config Config, measures metric.Measures, logger *zap.Logger) (*CassandraClient, error) {
	if len(config.Hosts) == 0 {
		return nil, errNoHosts
	}

	validateConfig(&config)

	clusterConfig := gocql.NewCluster(config.Hosts...)
	clusterConfig.Consistency = gocql.LocalQuorum
	clusterConfig.Keyspace = config.Database
	clusterConfig.Timeout = config.OpTimeout
	clusterConfig.NumConns = config.MaxConnsPerHost
	// let retry package handle it
	clusterConfig.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: 1}
	// setup ssl
	if config.SSLRootCert != "" && config.SSLCert != "" && config.SSLKey != "" {
		clusterConfig.SslOpts = &gocql.SslOptions{
			CertPath:               config.SSLCert,
			KeyPath:                config.SSLKey,
			CaPath:                 config.SSLRootCert,
			EnableHostVerification: config.EnableHostVerification,
		}
	}
	// setup authentication
	if config.Username != "" && config.Password != "" {
		clusterConfig.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	session, err := connect(clusterConfig, logger)

	// retry if it fails
	waitTime := 1 * time.Second
	for attempt := 0; attempt < config.NumRetries && err != nil; attempt++ {
		time.Sleep(waitTime)
		session, err = connect(clusterConfig, logger)
		waitTime = waitTime * config.WaitTimeMult
	}
	if err != nil {
		return nil, emperror.WrapWith(err, "Connecting to database failed", "hosts", config.Hosts)
	}

	return &CassandraClient{
		client:   session,
		config:   config,
		logger:   logger,
		measures: measures,
	}, nil
}

func (s *CassandraClient) Push(ctx context.Context, asset model.Asset) error {
	return store.SanitizeError(s.client.Push(ctx, asset))
}

func (s *CassandraClient) Get(ctx context.Context, id string) (model.Asset, error) {
	asset, err := s.client.Get(ctx, id)
	return asset, s.handleError(err, id)
}

func (s *CassandraClient) Delete(ctx context.Context, id string) (model.Asset, error) {
	asset, err := s.client.Delete(ctx, id)
	return asset, s.handleError(err, id)
}

func (s *CassandraClient) GetAll(ctx context.Context) (map[string]model.Asset, error) {
	assets, err := s.client.GetAll(ctx)
	return assets, store.SanitizeError(err)
}

func (s *CassandraClient) handleError(err error, id string) error {
	if errors.Is(err, errNoDataResponse) {
		return store.NotFoundError{ID: id}
	}
	return store.SanitizeError(err)
}

func (s *CassandraClient) Close() {
	s.client.Close()
}

// Ping is for pinging the database to verify that the connection is still good.
func (s *CassandraClient) Ping() error {
	err := s.client.Ping()
	s.measures.Query(store.PingType, err)
	if err != nil {
		return emperror.WrapWith(err, "Pinging connection failed")
	}
	return nil
}

func validateConfig(config *Config) {
	zeroDuration := time.Duration(0) * time.Second

	if config.OpTimeout == zeroDuration {
		config.OpTimeout = defaultOpTimeout
	}

	if config.Database == "" {
		config.Database = defaultDatabase
	}
	if config.NumRetries < 0 {
		config.NumRetries = defaultNumRetries
	}
	if config.WaitTimeMult < 1 {
		config.WaitTimeMult = defaultWaitTimeMult
	}
	if config.MaxConnsPerHost <= 0 {
		config.MaxConnsPerHost = defaultMaxNumberConnsPerHost
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaultPingInterval
	}
}
