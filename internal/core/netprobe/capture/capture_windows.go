//go:build windows

package capture

import (
	"net/netip"
	"time"
)

// Windows 的 Winsock2 不允许用户态构造 TCP 原始套接字，只能通过 Npcap/WinPcap
// 这样的内核驱动发送任意以太网帧。引入 CGO 驱动依赖超出了这个包的范围，
// 所以 Windows 上原始套接字能力始终不可用，调用方应回退到 connect 扫描。
type rawCapture struct{}

func newPlatformCapture(protocol Protocol) (Capture, error) {
	return nil, &UnsupportedPlatformError{Operation: "raw sockets"}
}

func (c *rawCapture) Close() error { return nil }

func (c *rawCapture) SendPacket(dst netip.Addr, packet []byte) error {
	return &UnsupportedPlatformError{Operation: "SendPacket"}
}

func (c *rawCapture) ReceivePacket(buf []byte, timeout time.Duration) (int, netip.Addr, error) {
	return 0, netip.Addr{}, &UnsupportedPlatformError{Operation: "ReceivePacket"}
}

func (c *rawCapture) BindToInterface(ifaceName string) error {
	return &UnsupportedPlatformError{Operation: "BindToInterface"}
}
