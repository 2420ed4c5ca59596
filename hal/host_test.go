//go:build !tinygo

package hal

import (
	"bytes"
	"encoding/hex"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardlet/internal/config"
	"boardlet/internal/image"
)

type recordSink struct {
	mu  sync.Mutex
	evs []Event
}

func (s *recordSink) Push(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evs = append(s.evs, ev)
	return true
}

func (s *recordSink) events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.evs...)
}

func testProfile(t *testing.T) config.Board {
	t.Helper()
	b := config.Default().Board
	dir := t.TempDir()
	b.Store.Path = filepath.Join(dir, "store.cbor")
	b.Update = config.UpdateConfig{
		Path:      filepath.Join(dir, "flash.bin"),
		Size:      4 * 256,
		PageSize:  256,
		ChunkSize: 64,
	}
	return b
}

func newTestHost(t *testing.T, b config.Board) (*Host, *recordSink) {
	t.Helper()
	sink := &recordSink{}
	var out bytes.Buffer
	h, err := NewHost(b, nil, sink, WithStdio(nil, &out))
	require.NoError(t, err)
	return h, sink
}

func TestHostCounts(t *testing.T) {
	b := testProfile(t)
	b.UARTs = 0
	h, _ := newTestHost(t, b)

	assert.Equal(t, 2, h.Button().Count())
	assert.Equal(t, 4, h.LED().Count())
	assert.Equal(t, 8, h.GPIO().Count())
	assert.False(t, h.UART().Supported())
	assert.False(t, h.Vendor().Supported())
}

func TestHostButtonOnlyWhenEnabled(t *testing.T) {
	h, sink := newTestHost(t, testProfile(t))
	id, err := IDOf[KindButton](h.Button(), 1)
	require.NoError(t, err)

	h.Press(1, true)
	assert.Empty(t, sink.events())

	require.NoError(t, h.Button().Enable(id))
	h.Press(1, true)
	h.Press(7, true)
	require.NoError(t, h.Button().Disable(id))
	h.Press(1, false)

	assert.Equal(t, []Event{ButtonEvent{Button: 1, Pressed: true}}, sink.events())
}

func TestHostDebugClockWraps(t *testing.T) {
	now := time.Unix(100, 0)
	b := testProfile(t)
	b.ClockMax = 999
	var out bytes.Buffer
	h, err := NewHost(b, nil, &recordSink{}, WithStdio(nil, &out), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	d := h.Debug()
	assert.Equal(t, uint64(999), d.TimeMax())
	now = now.Add(1500 * time.Microsecond)
	assert.Equal(t, uint64(500), d.Time())

	d.Println("hello")
	assert.Equal(t, "hello\n", out.String())
	assert.Equal(t, []string{"hello"}, h.Console())
}

func TestHostStorePersists(t *testing.T) {
	b := testProfile(t)
	h, _ := newTestHost(t, b)
	st := h.Store()

	v, err := st.Find(3)
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, st.Insert(3, []byte("abc")))
	require.NoError(t, st.Insert(4, []byte{}))
	require.NoError(t, st.Remove(5))

	assert.ErrorIs(t, st.Insert(StoreKeys, nil), ErrInvalidArgument)
	assert.ErrorIs(t, st.Insert(1, make([]byte, StoreValueMax+1)), ErrInvalidLength)

	h2, _ := newTestHost(t, b)
	v, err = h2.Store().Find(3)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v)
	v, err = h2.Store().Find(4)
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Empty(t, v)
}

func TestHostUpdateProtocol(t *testing.T) {
	h, _ := newTestHost(t, testProfile(t))
	up := h.Update()
	chunk := up.ChunkSize()

	assert.ErrorIs(t, up.Write([]byte{1}), ErrInvalidState, "write before start")
	assert.ErrorIs(t, up.Finish(), ErrInvalidState, "finish before start")

	img, err := image.Build(image.Header{Name: "t"}, bytes.Repeat([]byte{0x5A}, 100), chunk)
	require.NoError(t, err)

	pages, err := up.Start(false)
	require.NoError(t, err)
	assert.Equal(t, 4, pages)
	assert.ErrorIs(t, up.Write(img[:chunk]), ErrInvalidState, "write before erase")
	for i := 0; i < pages; i++ {
		require.NoError(t, up.Erase())
	}
	assert.ErrorIs(t, up.Erase(), ErrInvalidState, "one erase too many")
	assert.ErrorIs(t, up.Write(make([]byte, chunk+1)), ErrInvalidLength)

	for off := 0; off < len(img); off += chunk {
		require.NoError(t, up.Write(img[off:min(off+chunk, len(img))]))
	}
	require.NoError(t, up.Finish())

	_, err = up.Start(true)
	require.NoError(t, err)
	for i := 0; i < pages; i++ {
		require.NoError(t, up.Erase())
	}
	require.NoError(t, up.Write(bytes.Repeat([]byte{0x01}, 10)))
	assert.ErrorIs(t, up.Write([]byte{1}), ErrInvalidState, "write after short chunk")
	assert.ErrorIs(t, up.Finish(), ErrInvalidArgument, "garbage image")
}

func TestHostFlashRequiresErase(t *testing.T) {
	f, err := openHostFlash(filepath.Join(t.TempDir(), "f.bin"), 512, 256)
	require.NoError(t, err)

	_, err = f.WriteAt([]byte{0x0F}, 0)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0xF0}, 0)
	assert.ErrorIs(t, err, ErrFlashWriteRequiresErase)

	require.NoError(t, f.Erase(0, 256))
	_, err = f.WriteAt([]byte{0xF0}, 0)
	assert.NoError(t, err)
}

func TestHostCryptoVectors(t *testing.T) {
	h, _ := newTestHost(t, testProfile(t))
	c := h.Crypto()

	sum := func(alg HashAlg, msg string) string {
		hh, err := c.NewHash(alg)
		require.NoError(t, err)
		hh.Write([]byte(msg))
		return hex.EncodeToString(hh.Sum(nil))
	}
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum(HashSHA256, "abc"))
	assert.Equal(t, "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532", sum(HashSHA3_256, "abc"))
	assert.Len(t, sum(HashSHA384, "abc"), 96)
	assert.Len(t, sum(HashBLAKE3, "abc"), 64)

	mac, err := c.NewHMAC(HashSHA256, []byte("key"))
	require.NoError(t, err)
	mac.Write([]byte("The quick brown fox jumps over the lazy dog"))
	assert.Equal(t, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8", hex.EncodeToString(mac.Sum(nil)))

	assert.False(t, c.HashSupported(HashAlg(42)))
	_, err = c.NewHash(HashAlg(42))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHostUARTLoopback(t *testing.T) {
	h, sink := newTestHost(t, testProfile(t))
	u := h.UART()
	id, err := IDOf[KindUART](u, 1)
	require.NoError(t, err)

	_, err = u.Write(id, []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, u.Start(id))
	require.NoError(t, u.Enable(id, DirRead))
	h.InjectUART(1, []byte("ping"))

	buf := make([]byte, 8)
	n, err := u.Read(id, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))

	_, err = u.Write(id, []byte("pong"))
	require.NoError(t, err)
	assert.Equal(t, []byte("pong"), h.UARTOutput(1))
	assert.Equal(t, []Event{UARTEvent{UART: 1, Direction: DirRead}}, sink.events())
}

func TestHostTimerOneshot(t *testing.T) {
	h, sink := newTestHost(t, testProfile(t))
	tm := h.Timer()
	id, err := IDOf[KindTimer](tm, 2)
	require.NoError(t, err)

	require.NoError(t, tm.Arm(id, TimerOneshot, time.Millisecond))
	require.Eventually(t, func() bool { return len(sink.events()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, TimerEvent{Timer: 2}, sink.events()[0])

	require.NoError(t, tm.Arm(id, TimerPeriodic, time.Hour))
	require.NoError(t, tm.Disarm(id))
	assert.ErrorIs(t, tm.Arm(id, TimerPeriodic, 0), ErrInvalidArgument)
}

func TestHostProtocolAndRadio(t *testing.T) {
	h, sink := newTestHost(t, testProfile(t))

	h.Submit([]byte("ignored until enabled"))
	require.NoError(t, h.Protocol().Enable())
	h.Submit([]byte("req"))

	req, ok, err := h.Protocol().Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ignored until enabled", string(req))
	require.NoError(t, h.Protocol().Write([]byte("resp")))
	assert.Equal(t, [][]byte{[]byte("resp")}, h.Responses())

	require.NoError(t, h.Radio().Enable())
	h.InjectRadio([]byte{1, 2, 3})
	buf := make([]byte, 2)
	n, err := h.Radio().Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = h.Radio().Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, []Event{ProtocolEvent{}, RadioEvent{}}, sink.events())
}

func TestHostButtonDisableWaitsForInflightPush(t *testing.T) {
	b := testProfile(t)
	sink := newSlowSink(50 * time.Millisecond)
	h, err := NewHost(b, nil, sink, WithStdio(nil, &bytes.Buffer{}))
	require.NoError(t, err)
	id, err := IDOf[KindButton](h.Button(), 0)
	require.NoError(t, err)

	require.NoError(t, h.Button().Enable(id))
	go h.Press(0, true)
	sink.waitStarted(t)
	require.NoError(t, h.Button().Disable(id))
	disabled := time.Now()

	h.Press(0, false)
	pushes := sink.pushes()
	require.Len(t, pushes, 1)
	assert.False(t, pushes[0].After(disabled))
}
