package clockless

import "github.com/pkg/errors"

var (
	// ErrNotInitialized is returned when a frame is sent before Init.
	ErrNotInitialized = errors.New("clockless: not initialized")
	// ErrAlreadyInitialized is returned by a second call to Init.
	ErrAlreadyInitialized = errors.New("clockless: already initialized")
	// ErrBusy is returned when the peripheral session is already held,
	// typically by a concurrent ShowPixels.
	ErrBusy = errors.New("clockless: peripheral busy")
	// ErrAllocation is returned when the frame buffer cannot be allocated.
	// The frame is skipped and the LEDs keep showing the previous one.
	ErrAllocation = errors.New("clockless: buffer allocation failed")
	// ErrFrameSize is returned when a PixelSource yields a different number
	// of pixels than its Size announced.
	ErrFrameSize = errors.New("clockless: pixel count mismatch")
	// ErrHalted is returned once Halt was called.
	ErrHalted = errors.New("clockless: halted")
	// ErrLength is returned by Write when the input is not made of whole
	// pixels.
	ErrLength = errors.New("clockless: invalid RGB stream length")
)
