// Package hal declares the board capability interfaces consumed by the
// scheduler core, plus the host simulator, TinyGo and stub boards.
//
// Every resource kind has one interface. A board that lacks a kind returns
// the matching Unsupported stub, which satisfies the whole interface and
// fails every call with ErrUnsupported.
package hal

import (
	"hash"
	"time"
)

// Capability is embedded by every resource interface.
type Capability interface {
	// Supported reports whether the board provides this kind at all.
	Supported() bool
}

// Debug provides applet text output and the board clock.
type Debug interface {
	Capability
	Println(line string)
	// Time returns a monotonic microsecond counter that wraps after TimeMax.
	Time() uint64
	// TimeMax is the largest value Time returns, or 0 if there is no clock.
	TimeMax() uint64
}

// LED is a set of on/off indicators.
type LED interface {
	Capability
	Counted
	Get(id ID[KindLED]) (bool, error)
	Set(id ID[KindLED], on bool) error
}

// Button is a set of push buttons producing ButtonEvent.
type Button interface {
	Capability
	Counted
	Enable(id ID[KindButton]) error
	Disable(id ID[KindButton]) error
}

// TimerMode selects one-shot or periodic timers.
type TimerMode uint8

const (
	TimerOneshot TimerMode = iota
	TimerPeriodic
)

// Timer is a set of hardware timers producing TimerEvent.
type Timer interface {
	Capability
	Counted
	Arm(id ID[KindTimer], mode TimerMode, d time.Duration) error
	Disarm(id ID[KindTimer]) error
}

// UART is a set of serial ports producing UARTEvent.
type UART interface {
	Capability
	Counted
	SetBaudrate(id ID[KindUART], baud uint32) error
	Start(id ID[KindUART]) error
	Stop(id ID[KindUART]) error
	Read(id ID[KindUART], p []byte) (int, error)
	Write(id ID[KindUART], p []byte) (int, error)
	Enable(id ID[KindUART], dir Direction) error
	Disable(id ID[KindUART], dir Direction) error
}

// USBSerial is the board's USB CDC-ACM link producing USBSerialEvent.
type USBSerial interface {
	Capability
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Flush() error
	Enable(dir Direction) error
	Disable(dir Direction) error
}

// Radio receives advertisement packets and produces RadioEvent.
type Radio interface {
	Capability
	Enable() error
	Disable() error
	// Read copies the oldest received packet into p. It returns 0 when none is pending.
	Read(p []byte) (int, error)
}

// Rng is a source of random bytes.
type Rng interface {
	Capability
	FillBytes(p []byte) error
}

// HashAlg identifies a hash algorithm of the crypto capability.
type HashAlg uint8

const (
	HashSHA256 HashAlg = iota
	HashSHA384
	HashSHA3_256
	HashBLAKE3
)

// Crypto exposes hash and HMAC primitives.
type Crypto interface {
	Capability
	HashSupported(alg HashAlg) bool
	NewHash(alg HashAlg) (hash.Hash, error)
	NewHMAC(alg HashAlg, key []byte) (hash.Hash, error)
}

// Store is a small persistent key-value store.
type Store interface {
	Capability
	Insert(key uint16, value []byte) error
	Remove(key uint16) error
	// Find returns nil, nil when the key is absent.
	Find(key uint16) ([]byte, error)
}

// Update is the platform update transfer protocol.
//
// Start returns the number of pages; Erase must then be called exactly that
// many times before Write. Every chunk except the last is ChunkSize bytes.
type Update interface {
	Capability
	ChunkSize() int
	Start(dryRun bool) (pages int, err error)
	Erase() error
	Write(chunk []byte) error
	Finish() error
}

// Platform describes the board itself.
type Platform interface {
	Capability
	Serial() []byte
	Version() []byte
	Reboot() error
}

// Protocol carries applet requests from the host side of the platform protocol.
type Protocol interface {
	Capability
	// Read returns the next pending request, or ok=false if none is pending.
	Read() (req []byte, ok bool, err error)
	Write(resp []byte) error
	Enable() error
	Disable() error
}

// Vendor is a board-specific escape hatch.
type Vendor interface {
	Capability
	Syscall(x [4]uint32) (uint32, error)
	Enable() error
	Disable() error
}

// Board is the only contact point between the scheduler and the hardware.
type Board interface {
	Debug() Debug
	LED() LED
	Button() Button
	Timer() Timer
	UART() UART
	USBSerial() USBSerial
	GPIO() GPIO
	Radio() Radio
	Rng() Rng
	Crypto() Crypto
	Store() Store
	Update() Update
	Platform() Platform
	Protocol() Protocol
	Vendor() Vendor
}
