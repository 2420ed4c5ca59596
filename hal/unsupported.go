package hal

import (
	"hash"
	"time"
)

// The Unsupported stubs stand in for capabilities a board does not have.
// They satisfy the full interface and fail every call with ErrUnsupported.

type UnsupportedDebug struct{}

func (UnsupportedDebug) Supported() bool     { return false }
func (UnsupportedDebug) Println(line string) { _ = line }
func (UnsupportedDebug) Time() uint64        { return 0 }
func (UnsupportedDebug) TimeMax() uint64     { return 0 }

type UnsupportedLED struct{}

func (UnsupportedLED) Supported() bool                    { return false }
func (UnsupportedLED) Count() int                         { return 0 }
func (UnsupportedLED) Get(ID[KindLED]) (bool, error)      { return false, ErrUnsupported }
func (UnsupportedLED) Set(ID[KindLED], bool) error        { return ErrUnsupported }

type UnsupportedButton struct{}

func (UnsupportedButton) Supported() bool              { return false }
func (UnsupportedButton) Count() int                   { return 0 }
func (UnsupportedButton) Enable(ID[KindButton]) error  { return ErrUnsupported }
func (UnsupportedButton) Disable(ID[KindButton]) error { return ErrUnsupported }

type UnsupportedTimer struct{}

func (UnsupportedTimer) Supported() bool { return false }
func (UnsupportedTimer) Count() int      { return 0 }
func (UnsupportedTimer) Arm(ID[KindTimer], TimerMode, time.Duration) error {
	return ErrUnsupported
}
func (UnsupportedTimer) Disarm(ID[KindTimer]) error { return ErrUnsupported }

type UnsupportedUART struct{}

func (UnsupportedUART) Supported() bool                          { return false }
func (UnsupportedUART) Count() int                               { return 0 }
func (UnsupportedUART) SetBaudrate(ID[KindUART], uint32) error   { return ErrUnsupported }
func (UnsupportedUART) Start(ID[KindUART]) error                 { return ErrUnsupported }
func (UnsupportedUART) Stop(ID[KindUART]) error                  { return ErrUnsupported }
func (UnsupportedUART) Read(ID[KindUART], []byte) (int, error)   { return 0, ErrUnsupported }
func (UnsupportedUART) Write(ID[KindUART], []byte) (int, error)  { return 0, ErrUnsupported }
func (UnsupportedUART) Enable(ID[KindUART], Direction) error     { return ErrUnsupported }
func (UnsupportedUART) Disable(ID[KindUART], Direction) error    { return ErrUnsupported }

type UnsupportedUSBSerial struct{}

func (UnsupportedUSBSerial) Supported() bool              { return false }
func (UnsupportedUSBSerial) Read([]byte) (int, error)     { return 0, ErrUnsupported }
func (UnsupportedUSBSerial) Write([]byte) (int, error)    { return 0, ErrUnsupported }
func (UnsupportedUSBSerial) Flush() error                 { return ErrUnsupported }
func (UnsupportedUSBSerial) Enable(Direction) error       { return ErrUnsupported }
func (UnsupportedUSBSerial) Disable(Direction) error      { return ErrUnsupported }

type UnsupportedGPIO struct{}

func (UnsupportedGPIO) Supported() bool { return false }
func (UnsupportedGPIO) Count() int      { return 0 }
func (UnsupportedGPIO) Configure(ID[KindGPIO], GPIOMode, GPIOPull) error {
	return ErrUnsupported
}
func (UnsupportedGPIO) Read(ID[KindGPIO]) (bool, error)      { return false, ErrUnsupported }
func (UnsupportedGPIO) Write(ID[KindGPIO], bool) error       { return ErrUnsupported }
func (UnsupportedGPIO) LastWrite(ID[KindGPIO]) (bool, error) { return false, ErrUnsupported }

type UnsupportedRadio struct{}

func (UnsupportedRadio) Supported() bool          { return false }
func (UnsupportedRadio) Enable() error            { return ErrUnsupported }
func (UnsupportedRadio) Disable() error           { return ErrUnsupported }
func (UnsupportedRadio) Read([]byte) (int, error) { return 0, ErrUnsupported }

type UnsupportedRng struct{}

func (UnsupportedRng) Supported() bool        { return false }
func (UnsupportedRng) FillBytes([]byte) error { return ErrUnsupported }

type UnsupportedCrypto struct{}

func (UnsupportedCrypto) Supported() bool                            { return false }
func (UnsupportedCrypto) HashSupported(HashAlg) bool                 { return false }
func (UnsupportedCrypto) NewHash(HashAlg) (hash.Hash, error)         { return nil, ErrUnsupported }
func (UnsupportedCrypto) NewHMAC(HashAlg, []byte) (hash.Hash, error) { return nil, ErrUnsupported }

type UnsupportedStore struct{}

func (UnsupportedStore) Supported() bool                { return false }
func (UnsupportedStore) Insert(uint16, []byte) error    { return ErrUnsupported }
func (UnsupportedStore) Remove(uint16) error            { return ErrUnsupported }
func (UnsupportedStore) Find(uint16) ([]byte, error)    { return nil, ErrUnsupported }

type UnsupportedUpdate struct{}

func (UnsupportedUpdate) Supported() bool            { return false }
func (UnsupportedUpdate) ChunkSize() int             { return 0 }
func (UnsupportedUpdate) Start(bool) (int, error)    { return 0, ErrUnsupported }
func (UnsupportedUpdate) Erase() error               { return ErrUnsupported }
func (UnsupportedUpdate) Write([]byte) error         { return ErrUnsupported }
func (UnsupportedUpdate) Finish() error              { return ErrUnsupported }

type UnsupportedPlatform struct{}

func (UnsupportedPlatform) Supported() bool { return false }
func (UnsupportedPlatform) Serial() []byte  { return nil }
func (UnsupportedPlatform) Version() []byte { return nil }
func (UnsupportedPlatform) Reboot() error   { return ErrUnsupported }

type UnsupportedProtocol struct{}

func (UnsupportedProtocol) Supported() bool                 { return false }
func (UnsupportedProtocol) Read() ([]byte, bool, error)     { return nil, false, ErrUnsupported }
func (UnsupportedProtocol) Write([]byte) error              { return ErrUnsupported }
func (UnsupportedProtocol) Enable() error                   { return ErrUnsupported }
func (UnsupportedProtocol) Disable() error                  { return ErrUnsupported }

type UnsupportedVendor struct{}

func (UnsupportedVendor) Supported() bool                     { return false }
func (UnsupportedVendor) Syscall([4]uint32) (uint32, error)   { return 0, ErrUnsupported }
func (UnsupportedVendor) Enable() error                       { return ErrUnsupported }
func (UnsupportedVendor) Disable() error                      { return ErrUnsupported }
