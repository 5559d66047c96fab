package state

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameValidator_Valid(t *testing.T) {
	assert.NoError(t, NameValidator("1"))
	assert.NoError(t, NameValidator("ab_cd"))
	assert.NoError(t, NameValidator("A"))
	assert.NoError(t, NameValidator("abcd-a.com"))
}

func TestNameValidator_Invalid(t *testing.T) {
	assert.Error(t, NameValidator("node name"))
	assert.Error(t, NameValidator(""))
	assert.Error(t, NameValidator("\t"))
	assert.Error(t, NameValidator("abcd-a.com\\hi"))
	assert.Error(t, NameValidator(strings.Repeat("a", 200)))
}

func TestCodecValidator(t *testing.T) {
	assert.NoError(t, CodecValidator("json"))
	assert.NoError(t, CodecValidator("proto"))
	assert.ErrorContains(t, CodecValidator("xml"), "xml is not a valid codec")
}

func validSample(t *testing.T) *NetworkCfg {
	t.Helper()
	cfg := SampleNetwork()
	require.NoError(t, ExpandNetworkConfig(cfg))
	assert.NoError(t, NetworkConfigValidator(cfg))
	return cfg
}

func TestNetworkConfigValidator_Sample(t *testing.T) {
	validSample(t)
}

func TestNetworkConfigValidator_DuplicateNode(t *testing.T) {
	cfg := validSample(t)
	cfg.Nodes = append(cfg.Nodes, NodeCfg{Id: "A", Kind: KindRouter})
	assert.ErrorContains(t, NetworkConfigValidator(cfg), "duplicate node id: A")
}

func TestNetworkConfigValidator_UnknownNode(t *testing.T) {
	cfg := validSample(t)
	cfg.Links = append(cfg.Links, LinkCfg{A: "A", B: "Z", APort: 9, BPort: 1, CostAB: 1, CostBA: 1})
	assert.ErrorContains(t, NetworkConfigValidator(cfg), "node Z not defined")
}

func TestNetworkConfigValidator_DuplicateLink(t *testing.T) {
	cfg := validSample(t)
	cfg.Links = append(cfg.Links, LinkCfg{A: "B", B: "A", APort: 8, BPort: 8, CostAB: 1, CostBA: 1})
	assert.ErrorContains(t, NetworkConfigValidator(cfg), "duplicate link found: A, B")
}

func TestNetworkConfigValidator_PortReuse(t *testing.T) {
	cfg := validSample(t)
	cfg.Nodes = append(cfg.Nodes, NodeCfg{Id: "D", Kind: KindRouter})
	cfg.Links = append(cfg.Links, LinkCfg{A: "A", B: "D", APort: 1, BPort: 1, CostAB: 1, CostBA: 1})
	assert.ErrorContains(t, NetworkConfigValidator(cfg), "port 1 is used more than once on node A")
}

func TestNetworkConfigValidator_HostToHost(t *testing.T) {
	cfg := validSample(t)
	cfg.Links = append(cfg.Links, LinkCfg{A: "h", B: "g", APort: 2, BPort: 2, CostAB: 1, CostBA: 1})
	assert.ErrorContains(t, NetworkConfigValidator(cfg), "connects two hosts")
}

func TestNetworkConfigValidator_BadEvent(t *testing.T) {
	cfg := validSample(t)
	cfg.Events = append(cfg.Events, EventCfg{Action: "flap", A: "A", B: "B"})
	assert.ErrorContains(t, NetworkConfigValidator(cfg), `invalid action "flap"`)

	cfg = validSample(t)
	cfg.Events = append(cfg.Events, EventCfg{Action: "up", A: "B", B: "h"})
	assert.ErrorContains(t, NetworkConfigValidator(cfg), "unknown link B, h")
}

func TestNetworkConfigValidator_BadProbe(t *testing.T) {
	cfg := validSample(t)
	cfg.Probes = append(cfg.Probes, ProbeCfg{From: "A", To: "h"})
	assert.ErrorContains(t, NetworkConfigValidator(cfg), "probe source A must be a host")
}

func TestNetworkConfigValidator_BadLoss(t *testing.T) {
	cfg := validSample(t)
	cfg.Links[0].Loss = 1
	assert.ErrorContains(t, NetworkConfigValidator(cfg), "loss must be in [0, 1)")
}
