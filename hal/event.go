package hal

// EventKind identifies the capability that produced an event.
type EventKind uint8

const (
	EventButton EventKind = iota + 1
	EventTimer
	EventUART
	EventUSBSerial
	EventRadio
	EventProtocol
	EventVendor
)

func (k EventKind) String() string {
	switch k {
	case EventButton:
		return "button"
	case EventTimer:
		return "timer"
	case EventUART:
		return "uart"
	case EventUSBSerial:
		return "usb_serial"
	case EventRadio:
		return "radio"
	case EventProtocol:
		return "protocol"
	case EventVendor:
		return "vendor"
	default:
		return "unknown"
	}
}

// Key identifies the source that can be disabled to stop further events.
//
// Two events with equal keys come from the same logical source.
type Key struct {
	Kind  EventKind
	Index uint32
	Sub   uint8
}

// Event is an asynchronous notification produced by a capability.
type Event interface {
	Key() Key
}

// Sink receives events from interrupt context.
//
// Push must not block. It reports false when the event was dropped.
type Sink interface {
	Push(ev Event) bool
}

// Direction selects the read or write side of a serial link.
type Direction uint8

const (
	// DirRead fires when data can be read.
	DirRead Direction = iota
	// DirWrite fires when data can be written.
	DirWrite
)

func (d Direction) Valid() bool { return d == DirRead || d == DirWrite }

type ButtonEvent struct {
	Button  uint32
	Pressed bool
}

func (e ButtonEvent) Key() Key { return Key{Kind: EventButton, Index: e.Button} }

type TimerEvent struct {
	Timer uint32
}

func (e TimerEvent) Key() Key { return Key{Kind: EventTimer, Index: e.Timer} }

type UARTEvent struct {
	UART      uint32
	Direction Direction
}

func (e UARTEvent) Key() Key {
	return Key{Kind: EventUART, Index: e.UART, Sub: uint8(e.Direction)}
}

type USBSerialEvent struct {
	Direction Direction
}

func (e USBSerialEvent) Key() Key { return Key{Kind: EventUSBSerial, Sub: uint8(e.Direction)} }

// RadioEvent signals that a received packet is ready.
type RadioEvent struct{}

func (RadioEvent) Key() Key { return Key{Kind: EventRadio} }

// ProtocolEvent signals that a platform protocol request is ready.
type ProtocolEvent struct{}

func (ProtocolEvent) Key() Key { return Key{Kind: EventProtocol} }

// VendorEvent carries two opaque vendor-defined words.
type VendorEvent struct {
	Data [2]uint32
}

func (VendorEvent) Key() Key { return Key{Kind: EventVendor} }
