// Package capture 提供跨平台的原始套接字收发能力，是 SYN 扫描与 OS 指纹探测
// 发送/接收探测报文的唯一出口。实现按平台拆分在 capture_{linux,darwin,windows}.go 中。
package capture

import (
	"fmt"
	"net"
	"net/netip"
	"time"
)

// Capture 抽象一条原始套接字的发送/接收能力，调用方自行构造完整的 IP 层报文。
type Capture interface {
	// SendPacket 发送一个完整的 IP 数据包（含 IP 首部）到 dst
	SendPacket(dst netip.Addr, packet []byte) error
	// ReceivePacket 在 timeout 内等待一个数据包，返回载荷与来源地址
	ReceivePacket(buf []byte, timeout time.Duration) (int, netip.Addr, error)
	// BindToInterface 将套接字绑定到指定网卡，非所有平台都支持
	BindToInterface(ifaceName string) error
	Close() error
}

// UnsupportedPlatformError 表示当前平台不提供原始套接字能力
type UnsupportedPlatformError struct {
	Operation string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("%s not supported on this platform", e.Operation)
}

// Protocol 标识要打开的原始套接字协议族
type Protocol int

const (
	ProtocolIPv4TCP Protocol = iota
	ProtocolIPv4UDP
	ProtocolIPv4ICMP
	ProtocolIPv6TCP
	ProtocolIPv6UDP
	ProtocolIPv6ICMPv6
)

// New 按 protocol 打开一个平台原生的原始套接字。真正的实现由各平台文件提供。
func New(protocol Protocol) (Capture, error) {
	return newPlatformCapture(protocol)
}

// ErrNoSuitableInterface is returned by LocalAddr when no non-loopback
// interface address is available in the requested address family.
type ErrNoSuitableInterface struct {
	WantV6 bool
}

func (e *ErrNoSuitableInterface) Error() string {
	fam := "IPv4"
	if e.WantV6 {
		fam = "IPv6"
	}
	return fmt.Sprintf("no suitable non-loopback %s interface address found", fam)
}

// LocalAddr resolves the machine's outbound source address for the given
// address family by enumerating real network interfaces and returning the
// first non-loopback, non-link-local address found. This replaces the
// source program's hardcoded "192.168.1.100" placeholder (an open question
// left unresolved in spec.md §9): callers that need a source IP for packet
// construction must call this instead of hardcoding anything, and must
// handle ErrNoSuitableInterface explicitly (e.g. a sandboxed host with only
// loopback) rather than silently scanning from a bogus address.
func LocalAddr(wantV6 bool) (netip.Addr, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return netip.Addr{}, fmt.Errorf("enumerate interfaces: %w", err)
	}

	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		addr, ok := netip.AddrFromSlice(ipNet.IP)
		if !ok {
			continue
		}
		addr = addr.Unmap()
		if addr.IsLoopback() || addr.IsLinkLocalUnicast() {
			continue
		}
		if addr.Is6() == wantV6 {
			return addr, nil
		}
	}
	return netip.Addr{}, &ErrNoSuitableInterface{WantV6: wantV6}
}
