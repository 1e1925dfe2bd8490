//go:build linux

package capture

import (
	"fmt"
	"net/netip"
	"syscall"
	"time"
)

// rawCapture 封装 Linux 下的原始套接字操作，支持 IPv4 (IP_HDRINCL) 与 IPv6。
type rawCapture struct {
	fd       int
	family   int
	protocol Protocol
}

func protocolParams(protocol Protocol) (family, domain int, err error) {
	switch protocol {
	case ProtocolIPv4TCP:
		return syscall.AF_INET, syscall.IPPROTO_TCP, nil
	case ProtocolIPv4UDP:
		return syscall.AF_INET, syscall.IPPROTO_UDP, nil
	case ProtocolIPv4ICMP:
		return syscall.AF_INET, syscall.IPPROTO_ICMP, nil
	case ProtocolIPv6TCP:
		return syscall.AF_INET6, syscall.IPPROTO_TCP, nil
	case ProtocolIPv6UDP:
		return syscall.AF_INET6, syscall.IPPROTO_UDP, nil
	case ProtocolIPv6ICMPv6:
		return syscall.AF_INET6, syscall.IPPROTO_ICMPV6, nil
	default:
		return 0, 0, fmt.Errorf("unknown protocol %d", protocol)
	}
}

func newPlatformCapture(protocol Protocol) (Capture, error) {
	family, domain, err := protocolParams(protocol)
	if err != nil {
		return nil, err
	}

	fd, err := syscall.Socket(family, syscall.SOCK_RAW, domain)
	if err != nil {
		if err == syscall.EPERM || err == syscall.EACCES {
			return nil, fmt.Errorf("permission denied: raw socket requires root privileges")
		}
		return nil, fmt.Errorf("failed to create raw socket: %w", err)
	}

	if family == syscall.AF_INET {
		if err := syscall.SetsockoptInt(fd, syscall.IPPROTO_IP, syscall.IP_HDRINCL, 1); err != nil {
			syscall.Close(fd)
			return nil, fmt.Errorf("failed to set IP_HDRINCL: %w", err)
		}
	}
	// IPv6 raw sockets never support IPV6_HDRINCL for outbound TCP/UDP payloads;
	// the kernel always fills in its own IPv6 header, so callers on this path
	// must hand SendPacket only the transport-layer segment, not a full packet.

	return &rawCapture{fd: fd, family: family, protocol: protocol}, nil
}

func (c *rawCapture) Close() error {
	return syscall.Close(c.fd)
}

func (c *rawCapture) SendPacket(dst netip.Addr, packet []byte) error {
	if c.family == syscall.AF_INET {
		if !dst.Is4() {
			return fmt.Errorf("destination must be IPv4 for this socket")
		}
		addr := syscall.SockaddrInet4{Addr: dst.As4()}
		if err := syscall.Sendto(c.fd, packet, 0, &addr); err != nil {
			return fmt.Errorf("sendto failed: %w", err)
		}
		return nil
	}

	if !dst.Is6() {
		return fmt.Errorf("destination must be IPv6 for this socket")
	}
	addr := syscall.SockaddrInet6{Addr: dst.As16()}
	if err := syscall.Sendto(c.fd, packet, 0, &addr); err != nil {
		return fmt.Errorf("sendto failed: %w", err)
	}
	return nil
}

func (c *rawCapture) ReceivePacket(buf []byte, timeout time.Duration) (int, netip.Addr, error) {
	tv := syscall.NsecToTimeval(timeout.Nanoseconds())
	if err := syscall.SetsockoptTimeval(c.fd, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv); err != nil {
		return 0, netip.Addr{}, fmt.Errorf("failed to set recv timeout: %w", err)
	}

	n, from, err := syscall.Recvfrom(c.fd, buf, 0)
	if err != nil {
		return 0, netip.Addr{}, err
	}

	switch addr := from.(type) {
	case *syscall.SockaddrInet4:
		return n, netip.AddrFrom4(addr.Addr), nil
	case *syscall.SockaddrInet6:
		return n, netip.AddrFrom16(addr.Addr), nil
	default:
		return n, netip.Addr{}, fmt.Errorf("unexpected sockaddr type %T", from)
	}
}

func (c *rawCapture) BindToInterface(ifaceName string) error {
	return syscall.SetsockoptString(c.fd, syscall.SOL_SOCKET, syscall.SO_BINDTODEVICE, ifaceName)
}
