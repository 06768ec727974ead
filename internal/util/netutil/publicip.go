package netutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/horilla-opensource/horilla-installer/internal/util/retry"
)

// DefaultIPServices answer a plain GET with the caller's IPv4 address.
var DefaultIPServices = []string{
	"https://ipv4.icanhazip.com",
	"https://ifconfig.me/ip",
}

// IPResolver discovers the public IPv4 address of the host.
type IPResolver struct {
	Client   *http.Client
	Services []string
	Retries  int

	// Interfaces lists local addresses for the offline fallback.
	// Defaults to net.InterfaceAddrs.
	Interfaces func() ([]net.Addr, error)
}

// NewIPResolver creates a resolver over the default services.
func NewIPResolver(retries int) *IPResolver {
	return &IPResolver{
		Client:   &http.Client{Timeout: 10 * time.Second},
		Services: DefaultIPServices,
		Retries:  retries,
	}
}

// PublicIPv4 asks each service in turn, retrying transient failures, and
// falls back to the first global unicast IPv4 on a local interface.
func (r *IPResolver) PublicIPv4(ctx context.Context) (string, error) {
	var errs []error
	for _, svc := range r.Services {
		var ip string
		err := retry.WithExponentialBackoff(ctx, func() error {
			var err error
			ip, err = r.fetch(ctx, svc)
			return err
		}, retry.WithMaxRetries(r.Retries), retry.WithInitialDelay(time.Second))
		if err == nil {
			return ip, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", svc, err))
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	ip, err := r.localIPv4()
	if err == nil {
		return ip, nil
	}
	errs = append(errs, err)
	return "", fmt.Errorf("failed to determine public IPv4: %w", errors.Join(errs...))
}

func (r *IPResolver) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", retry.Fatal(err)
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(string(body))
	ip := net.ParseIP(text)
	if ip == nil || ip.To4() == nil {
		return "", retry.Fatal(fmt.Errorf("response %q is not an IPv4 address", text))
	}
	return ip.String(), nil
}

func (r *IPResolver) localIPv4() (string, error) {
	addrs := r.Interfaces
	if addrs == nil {
		addrs = net.InterfaceAddrs
	}
	list, err := addrs()
	if err != nil {
		return "", fmt.Errorf("failed to list interfaces: %w", err)
	}
	for _, a := range list {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ip := ipNet.IP.To4(); ip != nil && ip.IsGlobalUnicast() {
			return ip.String(), nil
		}
	}
	return "", errors.New("no global IPv4 address on any interface")
}
