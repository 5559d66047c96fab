package protocol

import (
	"math"

	"github.com/encodeous/lsr/state"
	"google.golang.org/protobuf/encoding/protowire"
)

// ProtoCodec encodes advertisements in the protobuf wire format of the following schema:
//
//	message Advertisement {
//	  string origin = 1;
//	  uint64 seq_num = 2;
//	  repeated Endpoint endpoints = 3;
//	}
//	message Endpoint {
//	  string id = 1;
//	  double cost_to = 2;
//	  double cost_from = 3;
//	}
//
// Endpoints are written in id order, so equal advertisements encode to equal bytes.
type ProtoCodec struct{}

const (
	fieldOrigin    protowire.Number = 1
	fieldSeqNum    protowire.Number = 2
	fieldEndpoints protowire.Number = 3

	fieldEpId       protowire.Number = 1
	fieldEpCostTo   protowire.Number = 2
	fieldEpCostFrom protowire.Number = 3
)

func (ProtoCodec) Name() string {
	return "proto"
}

func (ProtoCodec) Marshal(ad state.Advertisement) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldOrigin, protowire.BytesType)
	b = protowire.AppendString(b, string(ad.Origin))
	b = protowire.AppendTag(b, fieldSeqNum, protowire.VarintType)
	b = protowire.AppendVarint(b, ad.Seqno)
	for _, id := range ad.Endpoints.Ids() {
		ep := ad.Endpoints[id]
		if err := checkCost(id, ep); err != nil {
			return nil, err
		}
		var m []byte
		m = protowire.AppendTag(m, fieldEpId, protowire.BytesType)
		m = protowire.AppendString(m, string(id))
		m = protowire.AppendTag(m, fieldEpCostTo, protowire.Fixed64Type)
		m = protowire.AppendFixed64(m, math.Float64bits(ep.CostTo))
		m = protowire.AppendTag(m, fieldEpCostFrom, protowire.Fixed64Type)
		m = protowire.AppendFixed64(m, math.Float64bits(ep.CostFrom))

		b = protowire.AppendTag(b, fieldEndpoints, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	return b, nil
}

func (ProtoCodec) Unmarshal(origin state.NodeId, data []byte) (state.Advertisement, error) {
	ad := state.Advertisement{
		Endpoints: make(state.Endpoints),
	}
	var src state.NodeId
	hasSeq := false
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return state.Advertisement{}, malformed("%v", protowire.ParseError(n))
		}
		data = data[n:]
		switch {
		case num == fieldOrigin && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return state.Advertisement{}, malformed("origin: %v", protowire.ParseError(n))
			}
			src = state.NodeId(v)
			data = data[n:]
		case num == fieldSeqNum && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return state.Advertisement{}, malformed("seq_num: %v", protowire.ParseError(n))
			}
			ad.Seqno = v
			hasSeq = true
			data = data[n:]
		case num == fieldEndpoints && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return state.Advertisement{}, malformed("endpoints: %v", protowire.ParseError(n))
			}
			id, ep, err := unmarshalEndpoint(v)
			if err != nil {
				return state.Advertisement{}, err
			}
			if _, dup := ad.Endpoints[id]; dup {
				return state.Advertisement{}, malformed("duplicate endpoint %s", id)
			}
			ad.Endpoints[id] = ep
			data = data[n:]
		default:
			// unknown fields are skipped, as protobuf does
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return state.Advertisement{}, malformed("field %d: %v", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	if origin == "" {
		origin = src
	}
	if origin == "" {
		return state.Advertisement{}, malformed("missing origin")
	}
	if !hasSeq {
		return state.Advertisement{}, malformed("missing seq_num")
	}
	ad.Origin = origin
	return ad, nil
}

func unmarshalEndpoint(data []byte) (state.NodeId, state.Endpoint, error) {
	var id state.NodeId
	var ep state.Endpoint
	hasTo, hasFrom := false, false
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return "", ep, malformed("endpoint: %v", protowire.ParseError(n))
		}
		data = data[n:]
		switch {
		case num == fieldEpId && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return "", ep, malformed("endpoint id: %v", protowire.ParseError(n))
			}
			id = state.NodeId(v)
			data = data[n:]
		case (num == fieldEpCostTo || num == fieldEpCostFrom) && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return "", ep, malformed("endpoint cost: %v", protowire.ParseError(n))
			}
			if num == fieldEpCostTo {
				ep.CostTo = math.Float64frombits(v)
				hasTo = true
			} else {
				ep.CostFrom = math.Float64frombits(v)
				hasFrom = true
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return "", ep, malformed("endpoint field %d: %v", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	if id == "" {
		return "", ep, malformed("empty endpoint id")
	}
	if !hasTo || !hasFrom {
		return "", ep, malformed("endpoint %s is missing a cost", id)
	}
	if err := checkCost(id, ep); err != nil {
		return "", ep, err
	}
	return id, ep, nil
}
