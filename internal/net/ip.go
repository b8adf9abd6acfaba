package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const LinkScheme = "sketchboard"

var ErrBadLink = errors.New("invalid board link")

// OutgoingIP finds the local address other machines on the LAN should use to
// reach this host. No packet is sent.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return firstIPv4().String()
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// firstIPv4 is the fallback for networks without a default route.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	return net.IPv4(127, 0, 0, 1)
}

// ShareLink is the link a host hands out, e.g. sketchboard://192.168.1.4:8080.
func ShareLink(host string, port int) string {
	return LinkScheme + "://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// WebSocketURL turns a share link, an http(s) or ws(s) URL or a bare
// host:port into the relay's websocket endpoint.
func WebSocketURL(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", fmt.Errorf("%w: empty", ErrBadLink)
	}
	if !strings.Contains(link, "://") {
		link = LinkScheme + "://" + link
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadLink, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrBadLink, link)
	}

	switch u.Scheme {
	case LinkScheme, "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrBadLink, u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	u.RawQuery, u.Fragment = "", ""
	return u.String(), nil
}
