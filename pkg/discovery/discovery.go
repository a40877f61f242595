// Package discovery registers the API instance in etcd so infrastructure
// tooling can find running instances. Registration is optional; the server
// runs fine without etcd.
package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/example/sunrisecafe/pkg/config"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const leaseTTLSeconds = 30

type Registrar struct {
	client *clientv3.Client
	config *config.EtcdConfig
	key    string
}

func NewRegistrar(cfg *config.EtcdConfig) (*Registrar, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}
	return &Registrar{client: cli, config: cfg}, nil
}

// Register publishes this instance under a leased key and keeps the lease
// alive for the lifetime of the process.
func (r *Registrar) Register(ctx context.Context, name, host string, port int) error {
	r.key = fmt.Sprintf("%s%s/%s:%d", r.config.Prefix, name, host, port)
	value := fmt.Sprintf("%s:%d", host, port)

	lease, err := r.client.Grant(ctx, leaseTTLSeconds)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	if _, err := r.client.Put(ctx, r.key, value, clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("failed to register instance: %w", err)
	}

	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return fmt.Errorf("failed to keep lease alive: %w", err)
	}
	go func() {
		for range ch {
		}
	}()

	return nil
}

func (r *Registrar) Deregister(ctx context.Context) error {
	if r.key == "" {
		return nil
	}
	if _, err := r.client.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("failed to deregister instance: %w", err)
	}
	return nil
}

func (r *Registrar) Close() error {
	return r.client.Close()
}
