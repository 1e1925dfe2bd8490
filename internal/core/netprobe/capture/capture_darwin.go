//go:build darwin

package capture

import (
	"fmt"
	"net/netip"
	"syscall"
	"time"
)

// rawCapture 封装 Darwin (macOS) 下的原始套接字操作。必须以 root 权限运行。
type rawCapture struct {
	fd     int
	family int
}

func newPlatformCapture(protocol Protocol) (Capture, error) {
	var family, domain int
	switch protocol {
	case ProtocolIPv4TCP:
		family, domain = syscall.AF_INET, syscall.IPPROTO_TCP
	case ProtocolIPv4UDP:
		family, domain = syscall.AF_INET, syscall.IPPROTO_UDP
	case ProtocolIPv4ICMP:
		family, domain = syscall.AF_INET, syscall.IPPROTO_ICMP
	case ProtocolIPv6TCP:
		family, domain = syscall.AF_INET6, syscall.IPPROTO_TCP
	case ProtocolIPv6UDP:
		family, domain = syscall.AF_INET6, syscall.IPPROTO_UDP
	case ProtocolIPv6ICMPv6:
		family, domain = syscall.AF_INET6, syscall.IPPROTO_ICMPV6
	default:
		return nil, fmt.Errorf("unknown protocol %d", protocol)
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

	return &rawCapture{fd: fd, family: family}, nil
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

// BindToInterface: macOS 没有 SO_BINDTODEVICE，等价功能需要 IP_BOUND_IF
// 加接口索引查找，对多数扫描场景没有必要，这里让路由表决定出口。
func (c *rawCapture) BindToInterface(ifaceName string) error {
	return &UnsupportedPlatformError{Operation: "BindToInterface on darwin"}
}
