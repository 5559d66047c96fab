package protocol

import (
	"errors"
	"fmt"
	"math"

	"github.com/encodeous/lsr/state"
)

var ErrMalformedAdvertisement = errors.New("malformed advertisement")

// Codec serializes advertisements. Implementations must round trip losslessly, the wire form
// only ever carries the origin, the sequence number and the endpoint costs.
type Codec interface {
	Name() string
	Marshal(ad state.Advertisement) ([]byte, error)
	// Unmarshal decodes an advertisement. If origin is not empty, it overrides any origin carried in
	// the payload. All errors wrap ErrMalformedAdvertisement.
	Unmarshal(origin state.NodeId, data []byte) (state.Advertisement, error)
}

func CodecByName(name string) (Codec, error) {
	switch name {
	case "json", "":
		return JSONCodec{}, nil
	case "proto":
		return ProtoCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedAdvertisement, fmt.Sprintf(format, args...))
}

func checkCost(id state.NodeId, ep state.Endpoint) error {
	for _, c := range []float64{ep.CostTo, ep.CostFrom} {
		if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
			return malformed("endpoint %s has invalid cost %g", id, c)
		}
	}
	return nil
}
