package hal

// Kind markers used to type capability indices.
type (
	KindButton struct{}
	KindLED    struct{}
	KindTimer  struct{}
	KindUART   struct{}
	KindGPIO   struct{}
)

// ID is an index into the instances of one resource kind.
//
// It is opaque by construction: the only way to get a non-zero ID is NewID,
// which checks the index against the board's declared count.
type ID[K any] struct {
	raw uint32
}

// NewID validates raw against count.
func NewID[K any](raw uint32, count int) (ID[K], error) {
	if count <= 0 || uint64(raw) >= uint64(count) {
		return ID[K]{}, Errorf(SpaceUser, CodeInvalidArgument, "index %d out of %d", raw, count)
	}
	return ID[K]{raw: raw}, nil
}

// Index returns the raw index.
func (id ID[K]) Index() uint32 { return id.raw }

// Counted is implemented by capabilities with a fixed number of instances.
type Counted interface {
	Count() int
}

// IDOf validates raw against the capability's count.
func IDOf[K any](c Counted, raw uint32) (ID[K], error) {
	return NewID[K](raw, c.Count())
}
