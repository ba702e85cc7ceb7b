package capture

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// SerialDevice adapts a USB scanner that presents as a line-oriented device
// file (the common mode for handheld QR/barcode scanners). The hardware does
// the frame decoding and writes one decoded payload per line.
type SerialDevice struct {
	path string
}

func NewSerialDevice(path string) *SerialDevice {
	return &SerialDevice{path: path}
}

func (d *SerialDevice) Enumerate(ctx context.Context) ([]DeviceInfo, error) {
	if d.path == "" {
		return nil, nil
	}
	if _, err := os.Stat(d.path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", d.path, err)
	}
	return []DeviceInfo{{
		ID:     d.path,
		Label:  "serial scanner " + d.path,
		Facing: FacingEnvironment,
	}}, nil
}

func (d *SerialDevice) Open(ctx context.Context, id string) (Handle, error) {
	if id != d.path {
		return nil, fmt.Errorf("unknown device %q", id)
	}
	file, err := os.Open(d.path)
	if err != nil {
		return nil, err
	}

	h := &serialHandle{file: file, lines: make(chan string, 8)}
	go h.read()
	return h, nil
}

type serialHandle struct {
	file  *os.File
	lines chan string
}

func (h *serialHandle) Lines() <-chan string {
	return h.lines
}

func (h *serialHandle) Close() error {
	// Closing the file ends the read loop, which closes the lines channel.
	return h.file.Close()
}

func (h *serialHandle) read() {
	defer close(h.lines)
	scanner := bufio.NewScanner(h.file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		h.lines <- line
	}
}
