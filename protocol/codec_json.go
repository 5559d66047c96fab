package protocol

import (
	"encoding/json"

	"github.com/encodeous/lsr/state"
)

// JSONCodec uses the field names shared with other link state router implementations, so that nodes implemented
// elsewhere can join the same network:
//
//	{"src": "A", "seqNum": 3, "endpoints": {"B": {"costTo": 1, "costFrom": 1}}}
type JSONCodec struct{}

type jsonEndpoint struct {
	CostTo   *float64 `json:"costTo"`
	CostFrom *float64 `json:"costFrom"`
}

type jsonAdvertisement struct {
	Src       state.NodeId                  `json:"src,omitempty"`
	SeqNum    *int64                        `json:"seqNum"`
	Endpoints map[state.NodeId]jsonEndpoint `json:"endpoints"`
}

func (JSONCodec) Name() string {
	return "json"
}

func (JSONCodec) Marshal(ad state.Advertisement) ([]byte, error) {
	seq := int64(ad.Seqno)
	msg := jsonAdvertisement{
		Src:       ad.Origin,
		SeqNum:    &seq,
		Endpoints: make(map[state.NodeId]jsonEndpoint, len(ad.Endpoints)),
	}
	for id, ep := range ad.Endpoints {
		if err := checkCost(id, ep); err != nil {
			return nil, err
		}
		msg.Endpoints[id] = jsonEndpoint{CostTo: &ep.CostTo, CostFrom: &ep.CostFrom}
	}
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(origin state.NodeId, data []byte) (state.Advertisement, error) {
	msg := jsonAdvertisement{}
	if err := json.Unmarshal(data, &msg); err != nil {
		return state.Advertisement{}, malformed("%v", err)
	}
	if origin == "" {
		origin = msg.Src
	}
	if origin == "" {
		return state.Advertisement{}, malformed("missing origin")
	}
	if msg.SeqNum == nil {
		return state.Advertisement{}, malformed("missing seqNum")
	}
	if *msg.SeqNum < 0 {
		return state.Advertisement{}, malformed("negative seqNum %d", *msg.SeqNum)
	}
	if msg.Endpoints == nil {
		return state.Advertisement{}, malformed("missing endpoints")
	}
	ad := state.Advertisement{
		Origin:    origin,
		Seqno:     uint64(*msg.SeqNum),
		Endpoints: make(state.Endpoints, len(msg.Endpoints)),
	}
	for id, ep := range msg.Endpoints {
		if id == "" {
			return state.Advertisement{}, malformed("empty endpoint id")
		}
		if ep.CostTo == nil || ep.CostFrom == nil {
			return state.Advertisement{}, malformed("endpoint %s is missing a cost", id)
		}
		e := state.Endpoint{CostTo: *ep.CostTo, CostFrom: *ep.CostFrom}
		if err := checkCost(id, e); err != nil {
			return state.Advertisement{}, err
		}
		ad.Endpoints[id] = e
	}
	return ad, nil
}
