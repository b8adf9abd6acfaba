package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_sketchboard._tcp"

var ErrNoHost = errors.New("no sketchboard host found")

// Advertise announces a relay listening on port to the local network. The
// caller shuts the returned server down when the relay stops.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, []string{"SketchBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Discover browses the local network for a relay and returns the host:port
// of the first one that answers with an IPv4 address.
func Discover(ctx context.Context, wait time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = wait

	done := make(chan error, 1)
	go func() { done <- mdns.Query(params) }()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case e := <-entries:
			if addr, ok := entryAddr(e); ok {
				return addr, nil
			}
		case err := <-done:
			// Drain what arrived before the query returned.
			for {
				select {
				case e := <-entries:
					if addr, ok := entryAddr(e); ok {
						return addr, nil
					}
				default:
					if err != nil {
						return "", fmt.Errorf("mDNS query: %w", err)
					}
					return "", ErrNoHost
				}
			}
		}
	}
}

func entryAddr(e *mdns.ServiceEntry) (string, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return "", false
	}
	return net.JoinHostPort(e.AddrV4.String(), strconv.Itoa(e.Port)), true
}
