package connector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/courier/pkg/l1"
)

func TestResolvedRef(t *testing.T) {
	cases := []struct {
		url string
		id  string
		ref l1.ControllerRef
	}{
		{url: "tcp://car:7070", ref: l1.ControllerRef{Type: DefaultType, ID: "car:7070"}},
		{url: "ws://car:8080/l1", ref: l1.ControllerRef{Type: DefaultType, ID: "car:8080"}},
		{url: "ws://car:8080/l1", id: "c1", ref: l1.ControllerRef{Type: DefaultType, ID: "c1"}},
		{url: "mqtt://broker:1883/courier/", ref: l1.ControllerRef{Type: DefaultType}},
	}
	for _, c := range cases {
		conf := Config{Ref: l1.ControllerRef{Type: DefaultType, ID: c.id}, RegistryURL: c.url}
		require.Equal(t, c.ref, conf.ResolvedRef(), c.url)
	}
}

func TestNewConnector(t *testing.T) {
	for _, u := range []string{"tcp://car:7070", "ws://car:8080/l1"} {
		conf := Config{Ref: l1.ControllerRef{Type: DefaultType}, RegistryURL: u}
		connector, err := conf.NewConnector()
		require.NoError(t, err, u)
		require.NotNil(t, connector, u)
	}
	conf := Config{RegistryURL: "udp://car"}
	_, err := conf.NewConnector()
	require.Error(t, err)
}
