// Package network builds the host side of a container network: a veth
// pair whose peer is moved into the container's network namespace, with
// the host end optionally enslaved to a bridge. Creation happens while
// the child is paused in the start handshake, so the device is in place
// before the container's own program runs.
package network

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// Config describes the network resource for one container.
type Config struct {
	// Bridge is the host bridge the veth host end joins. Empty leaves
	// the host end unattached.
	Bridge string

	// HostAddress is an optional CIDR assigned to the host end, for
	// point to point setups without a bridge.
	HostAddress string
}

// names derives stable device names from the container name. Interface
// names are capped at 15 bytes, so long container names are truncated.
func names(name string) (host, peer string) {
	if len(name) > 8 {
		name = name[:8]
	}
	return "nsb-" + name + "-h", "nsb-" + name + "-c"
}

// Create builds the veth pair for name and moves the container end into
// pid's network namespace.
func Create(name string, pid int, cfg Config) error {
	hostName, peerName := names(name)

	la := netlink.NewLinkAttrs()
	la.Name = hostName
	veth := &netlink.Veth{LinkAttrs: la, PeerName: peerName}
	if err := netlink.LinkAdd(veth); err != nil {
		return fmt.Errorf("network: create veth %s: %v", hostName, err)
	}

	// from here on a partial build must not leak the pair
	if err := wire(veth, peerName, pid, cfg); err != nil {
		netlink.LinkDel(veth)
		return err
	}
	return nil
}

func wire(veth *netlink.Veth, peerName string, pid int, cfg Config) error {
	if cfg.Bridge != "" {
		br, err := netlink.LinkByName(cfg.Bridge)
		if err != nil {
			return fmt.Errorf("network: bridge %s: %v", cfg.Bridge, err)
		}
		if err := netlink.LinkSetMaster(veth, br); err != nil {
			return fmt.Errorf("network: enslave %s to %s: %v", veth.Attrs().Name, cfg.Bridge, err)
		}
	}

	if cfg.HostAddress != "" {
		ip, ipNet, err := net.ParseCIDR(cfg.HostAddress)
		if err != nil {
			return fmt.Errorf("network: host address %q: %v", cfg.HostAddress, err)
		}
		addr := &netlink.Addr{IPNet: &net.IPNet{IP: ip, Mask: ipNet.Mask}}
		if err := netlink.AddrAdd(veth, addr); err != nil {
			return fmt.Errorf("network: address %s: %v", cfg.HostAddress, err)
		}
	}

	if err := netlink.LinkSetUp(veth); err != nil {
		return fmt.Errorf("network: set %s up: %v", veth.Attrs().Name, err)
	}

	peer, err := netlink.LinkByName(peerName)
	if err != nil {
		return fmt.Errorf("network: peer %s: %v", peerName, err)
	}
	if err := netlink.LinkSetNsPid(peer, pid); err != nil {
		return fmt.Errorf("network: move %s into pid %d: %v", peerName, pid, err)
	}
	return nil
}

// Destroy removes the host end of the pair. The container end disappears
// with its namespace, so a missing link is not an error.
func Destroy(name string) error {
	hostName, _ := names(name)
	link, err := netlink.LinkByName(hostName)
	if err != nil {
		if _, ok := err.(netlink.LinkNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("network: lookup %s: %v", hostName, err)
	}
	if err := netlink.LinkDel(link); err != nil {
		return fmt.Errorf("network: delete %s: %v", hostName, err)
	}
	return nil
}
