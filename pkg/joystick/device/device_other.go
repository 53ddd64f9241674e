// +build !linux

package device

// Open opens the device with specified index.
func Open(index int) (Device, error) {
	return nil, ErrNotSupported
}

// DetectAndOpen opens the first available device from startIndex.
func DetectAndOpen(startIndex int) (Device, error) {
	return nil, ErrNotSupported
}
