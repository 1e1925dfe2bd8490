// Package pcapng 把一个 capture.Capture 包装成带 PCAPNG 镜像写入的装饰器，
// 让每一次收发的报文都额外落盘一份，供离线分析或测试回放使用。
package pcapng

import (
	"fmt"
	"net/netip"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"netprobe/internal/core/netprobe/capture"
)

// MirroringCapture 包装一个底层 Capture，把每个收发的数据包额外写入 PCAPNG 文件
type MirroringCapture struct {
	inner  capture.Capture
	file   *os.File
	writer *pcapgo.NgWriter
}

// Wrap 在 inner 之上附加一个写到 path 的 PCAPNG 镜像
func Wrap(inner capture.Capture, path string) (*MirroringCapture, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create pcapng file: %w", err)
	}

	w, err := pcapgo.NewNgWriter(f, layers.LinkTypeRaw)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to init pcapng writer: %w", err)
	}

	return &MirroringCapture{inner: inner, file: f, writer: w}, nil
}

func (m *MirroringCapture) mirror(data []byte) {
	ci := gopacket.CaptureInfo{
		Timestamp:     time.Now(),
		CaptureLength: len(data),
		Length:        len(data),
	}
	// Best-effort mirroring: a write failure here must never fail the scan itself.
	_ = m.writer.WritePacket(ci, data)
}

func (m *MirroringCapture) SendPacket(dst netip.Addr, packet []byte) error {
	m.mirror(packet)
	return m.inner.SendPacket(dst, packet)
}

func (m *MirroringCapture) ReceivePacket(buf []byte, timeout time.Duration) (int, netip.Addr, error) {
	n, src, err := m.inner.ReceivePacket(buf, timeout)
	if err == nil && n > 0 {
		m.mirror(buf[:n])
	}
	return n, src, err
}

func (m *MirroringCapture) BindToInterface(ifaceName string) error {
	return m.inner.BindToInterface(ifaceName)
}

func (m *MirroringCapture) Close() error {
	_ = m.writer.Flush()
	innerErr := m.inner.Close()
	fileErr := m.file.Close()
	if innerErr != nil {
		return innerErr
	}
	return fileErr
}
