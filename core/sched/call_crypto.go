package sched

import (
	"boardlet/hal"
)

// maxDigests bounds the hash and HMAC contexts an applet may hold at once.
const maxDigests = 16

func (s *Scheduler) rngFillBytes(c *Call) (uint32, error) {
	r := s.board.Rng()
	if err := need(r, "rng"); err != nil {
		return 0, err
	}
	b := c.Params.Buffer()
	buf, err := c.Mem.GetMut(b.Ptr, b.Len)
	if err != nil {
		return 0, err
	}
	return 0, r.FillBytes(buf)
}

func (s *Scheduler) crypto() (hal.Crypto, error) {
	cr := s.board.Crypto()
	return cr, need(cr, "crypto")
}

func (s *Scheduler) hashSupported(c *Call) (uint32, error) {
	cr, err := s.crypto()
	if err != nil {
		return 0, err
	}
	alg, err := c.Params.HashAlg(0)
	if err != nil {
		return 0, err
	}
	return boolWord(cr.HashSupported(alg)), nil
}

func (s *Scheduler) hashInitialize(c *Call) (uint32, error) {
	cr, err := s.crypto()
	if err != nil {
		return 0, err
	}
	alg, err := c.Params.HashAlg(0)
	if err != nil {
		return 0, err
	}
	if err := s.digestRoom(); err != nil {
		return 0, err
	}
	h, err := cr.NewHash(alg)
	if err != nil {
		return 0, err
	}
	return s.addDigest(digest{h: h}), nil
}

func (s *Scheduler) hmacInitialize(c *Call) (uint32, error) {
	cr, err := s.crypto()
	if err != nil {
		return 0, err
	}
	alg, err := c.Params.HashAlg(0)
	if err != nil {
		return 0, err
	}
	key, err := c.Mem.Get(c.Params[1], c.Params[2])
	if err != nil {
		return 0, err
	}
	if err := s.digestRoom(); err != nil {
		return 0, err
	}
	h, err := cr.NewHMAC(alg, key)
	if err != nil {
		return 0, err
	}
	return s.addDigest(digest{h: h, hmac: true}), nil
}

func (s *Scheduler) digestRoom() error {
	if len(s.digests) >= maxDigests {
		return hal.Errorf(hal.SpaceWorld, hal.CodeNotEnough, "all %d digest contexts in use", maxDigests)
	}
	return nil
}

func (s *Scheduler) addDigest(d digest) uint32 {
	for {
		id := s.nextCtx & 0x7FFFFFFF
		s.nextCtx++
		if _, busy := s.digests[id]; !busy {
			s.digests[id] = d
			return id
		}
	}
}

// digestOf looks up a context of the given flavor.
func (s *Scheduler) digestOf(id uint32, hmac bool) (digest, error) {
	d, ok := s.digests[id]
	if !ok || d.hmac != hmac {
		return digest{}, errorf(hal.CodeInvalidArgument, "no digest context %d", id)
	}
	return d, nil
}

func (s *Scheduler) digestUpdate(c *Call, hmac bool) (uint32, error) {
	if _, err := s.crypto(); err != nil {
		return 0, err
	}
	d, err := s.digestOf(c.Params[0], hmac)
	if err != nil {
		return 0, err
	}
	data, err := c.Mem.Get(c.Params[1], c.Params[2])
	if err != nil {
		return 0, err
	}
	d.h.Write(data)
	return 0, nil
}

// digestFinalize releases the context and writes the digest unless the
// output pointer is 0.
func (s *Scheduler) digestFinalize(c *Call, hmac bool) (uint32, error) {
	if _, err := s.crypto(); err != nil {
		return 0, err
	}
	d, err := s.digestOf(c.Params[0], hmac)
	if err != nil {
		return 0, err
	}
	out, err := c.Mem.GetOpt(c.Params[1], uint32(d.h.Size()))
	if err != nil {
		return 0, err
	}
	delete(s.digests, c.Params[0])
	sum := d.h.Sum(nil)
	copy(out, sum)
	return uint32(len(sum)), nil
}
