// Package discovery registers the API with a Consul agent so other services
// can find it.
package discovery

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/consul/api"
)

type Config struct {
	Addr        string // host:port of the Consul agent
	ServiceName string
	Port        string
	Host        string // address advertised to Consul; hostname when empty
}

type Client struct {
	client *api.Client
	name   string
	host   string
	port   int
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.ServiceName == "" {
		return nil, fmt.Errorf("service name is required")
	}
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid service port %q: %v", cfg.Port, err)
	}
	host := cfg.Host
	if host == "" {
		if host, err = os.Hostname(); err != nil {
			return nil, fmt.Errorf("failed to get hostname: %v", err)
		}
	}

	conf := api.DefaultConfig()
	if cfg.Addr != "" {
		conf.Address = cfg.Addr
	}
	client, err := api.NewClient(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %v", err)
	}
	return &Client{client: client, name: cfg.ServiceName, host: host, port: port}, nil
}

func (c *Client) serviceID() string { return fmt.Sprintf("%s-%s-%d", c.name, c.host, c.port) }

func (c *Client) registration() *api.AgentServiceRegistration {
	return &api.AgentServiceRegistration{
		ID:      c.serviceID(),
		Name:    c.name,
		Port:    c.port,
		Address: c.host,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", c.host, c.port),
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
}

// Register adds the service with an HTTP health check on /health.
func (c *Client) Register() error {
	if err := c.client.Agent().ServiceRegister(c.registration()); err != nil {
		return fmt.Errorf("failed to register service: %v", err)
	}
	log.Printf("service %s registered with consul at %s:%d", c.name, c.host, c.port)
	return nil
}

func (c *Client) Deregister() error {
	if err := c.client.Agent().ServiceDeregister(c.serviceID()); err != nil {
		return fmt.Errorf("failed to deregister service: %v", err)
	}
	log.Printf("service %s deregistered from consul", c.name)
	return nil
}

// WaitForAgent polls the agent until it reports a leader.
func (c *Client) WaitForAgent(maxRetries int, every time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if _, err := c.client.Status().Leader(); err == nil {
			return nil
		}
		log.Printf("waiting for consul... (attempt %d/%d)", i+1, maxRetries)
		time.Sleep(every)
	}
	return fmt.Errorf("consul not available after %d retries", maxRetries)
}
