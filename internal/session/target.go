package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"tasnim.dev/opfyx/internal/utils"
)

// PortForwardDocument is the SSM document that forwards a local port to a
// port inside the target container.
const PortForwardDocument = "AWS-StartPortForwardingSessionToRemoteHost"

// Target builds the SSM target of an ECS container. The session service
// splits it positionally, so the layout ecs:<cluster>_<task>_<runtime id>
// must not change. Cluster and task ARNs are reduced to their short names.
func Target(cluster, task, runtimeID string) string {
	return fmt.Sprintf("ecs:%s_%s_%s", utils.ShortName(cluster), utils.ShortName(task), runtimeID)
}

// PortMapping forwards Local on this machine to Remote in the container.
// Both are passed to the session plugin as given.
type PortMapping struct {
	Local  string
	Remote string
}

func (p PortMapping) String() string {
	return p.Local + ":" + p.Remote
}

// ParsePortMapping parses "local:remote".
func ParsePortMapping(s string) (PortMapping, error) {
	local, remote, ok := strings.Cut(s, ":")
	if !ok {
		return PortMapping{}, fmt.Errorf("%w: port %q is not local:remote", ErrInvalidArgument, s)
	}
	pm := PortMapping{Local: local, Remote: remote}
	if err := pm.validate(); err != nil {
		return PortMapping{}, err
	}
	return pm, nil
}

// ParsePortMappings parses every value of a repeated --port flag.
func ParsePortMappings(values []string) ([]PortMapping, error) {
	mappings := make([]PortMapping, 0, len(values))
	for _, v := range values {
		pm, err := ParsePortMapping(v)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, pm)
	}
	return mappings, nil
}

func (p PortMapping) validate() error {
	if p.Local == "" || p.Remote == "" {
		return fmt.Errorf("%w: port %q needs both a local and a remote port", ErrInvalidArgument, p.String())
	}
	return nil
}

type portForwardParameters struct {
	PortNumber      []string `json:"portNumber"`
	LocalPortNumber []string `json:"localPortNumber"`
}

// Parameters renders the --parameters document for this mapping.
func (p PortMapping) Parameters() (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	b, err := json.Marshal(portForwardParameters{
		PortNumber:      []string{p.Remote},
		LocalPortNumber: []string{p.Local},
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
