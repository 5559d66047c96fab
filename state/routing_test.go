package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConventionClassifier(t *testing.T) {
	assert.Equal(t, KindRouter, ConventionClassifier("A"))
	assert.Equal(t, KindRouter, ConventionClassifier("R1"))
	assert.Equal(t, KindRouter, ConventionClassifier("CORE-EDGE"))
	assert.Equal(t, KindHost, ConventionClassifier("h"))
	assert.Equal(t, KindHost, ConventionClassifier("Ab"))
	assert.Equal(t, KindHost, ConventionClassifier("a1"))
	// no cased letters at all is not a router
	assert.Equal(t, KindHost, ConventionClassifier("123"))
	assert.Equal(t, KindHost, ConventionClassifier(""))
}

func TestStaticClassifier(t *testing.T) {
	c := StaticClassifier(map[NodeId]NodeKind{
		"gw":  KindRouter,
		"SRV": KindHost,
		"X":   KindUnknown,
	})
	assert.Equal(t, KindRouter, c("gw"))
	assert.Equal(t, KindHost, c("SRV"))
	assert.Equal(t, KindRouter, c("X"))
	assert.Equal(t, KindHost, c("other"))
}

func TestParseNodeKind(t *testing.T) {
	k, err := ParseNodeKind(" Router ")
	assert.NoError(t, err)
	assert.Equal(t, KindRouter, k)

	k, err = ParseNodeKind("host")
	assert.NoError(t, err)
	assert.Equal(t, KindHost, k)

	_, err = ParseNodeKind("switch")
	assert.ErrorContains(t, err, `"switch" is not a valid node kind`)
}

func TestLinkNormalize(t *testing.T) {
	l := Link{
		Port:   3,
		E1:     Node{"A", KindRouter},
		E2:     Node{"B", KindRouter},
		Cost12: 1,
		Cost21: 7,
	}
	n, ep := l.Normalize("A")
	assert.Equal(t, NodeId("B"), n.Id)
	assert.Equal(t, Endpoint{CostTo: 1, CostFrom: 7}, ep)

	n, ep = l.Normalize("B")
	assert.Equal(t, NodeId("A"), n.Id)
	assert.Equal(t, Endpoint{CostTo: 7, CostFrom: 1}, ep)
}

func TestAdvertisementString(t *testing.T) {
	ad := Advertisement{
		Origin: "A",
		Seqno:  4,
		Endpoints: Endpoints{
			"h": {1, 2},
			"B": {1, 1},
		},
	}
	assert.Equal(t, "(origin: A, seqno: 4, endpoints: [B(1/1) h(1/2)])", ad.String())
}

func TestEndpointsClone(t *testing.T) {
	var nilEps Endpoints
	assert.NotNil(t, nilEps.Clone())

	eps := Endpoints{"B": {1, 1}}
	c := eps.Clone()
	c["C"] = Endpoint{2, 2}
	assert.Len(t, eps, 1)
}
