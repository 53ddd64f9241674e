// +build linux

package device

import (
	"bytes"
	"encoding/binary"
	"os"
	"syscall"
	"unsafe"
)

type device struct {
	file        *os.File
	index       int
	name        string
	axisCount   uint8
	buttonCount uint8
}

const (
	iocGAXES    uint = 0x80016a11
	iocGBUTTONS uint = 0x80016a12
	iocGNAME    uint = 0x80ff6a13
)

// Open opens the device with specified index.
func Open(index int) (Device, error) {
	f, err := os.OpenFile(Path(index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	d := &device{file: f, index: index}
	var name [256]byte
	for _, q := range []struct {
		req uint
		ptr unsafe.Pointer
	}{
		{iocGAXES, unsafe.Pointer(&d.axisCount)},
		{iocGBUTTONS, unsafe.Pointer(&d.buttonCount)},
		{iocGNAME, unsafe.Pointer(&name)},
	} {
		if errno := d.ioctl(q.req, q.ptr); errno != 0 {
			d.file.Close()
			return nil, errno
		}
	}
	if pos := bytes.IndexByte(name[:], 0); pos >= 0 {
		d.name = string(name[:pos])
	} else {
		d.name = string(name[:])
	}
	return d, nil
}

// DetectAndOpen opens the first available device from startIndex. It
// returns nil without error if none is found.
func DetectAndOpen(startIndex int) (Device, error) {
	for index := startIndex; index < 256; index++ {
		d, err := Open(index)
		if os.IsNotExist(err) {
			continue
		}
		return d, err
	}
	return nil, nil
}

// Close implements Device.
func (d *device) Close() error {
	return d.file.Close()
}

// Index implements Device.
func (d *device) Index() int {
	return d.index
}

// Name implements Device.
func (d *device) Name() string {
	return d.name
}

// AxisCount implements Device.
func (d *device) AxisCount() int {
	return int(d.axisCount)
}

// ButtonCount implements Device.
func (d *device) ButtonCount() int {
	return int(d.buttonCount)
}

// ReadEvent implements Device.
func (d *device) ReadEvent() (Event, error) {
	var ev event
	if err := binary.Read(d.file, binary.LittleEndian, &ev); err != nil {
		return nil, err
	}
	return ev.typed(), nil
}

func (d *device) ioctl(req uint, ptr unsafe.Pointer) syscall.Errno {
	_, _, err := syscall.Syscall(syscall.SYS_IOCTL, d.file.Fd(), uintptr(req), uintptr(ptr))
	return err
}
