package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Node type identifiers used in the nodes document
const (
	NodeTypeLocal  = "local"
	NodeTypeRemote = "remote"
)

// NodeConfig describes one managed node. Local nodes are operated via
// process invocation on this host; remote nodes via their HTTP sidecar.
type NodeConfig struct {
	Type  string `yaml:"type"`
	URL   string `yaml:"url,omitempty"`
	Token string `yaml:"token,omitempty"`
}

// Nodes maps node name to its configuration
type Nodes map[string]NodeConfig

// LoadNodes reads the nodes document. A missing file yields an empty map so
// a freshly installed bot starts without node operations configured.
func LoadNodes(path string) (Nodes, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Nodes{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read nodes file: %w", err)
	}

	nodes := Nodes{}
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("failed to parse nodes file: %w", err)
	}
	return nodes, nil
}

// SaveNodes writes the nodes document atomically
func SaveNodes(path string, nodes Nodes) error {
	data, err := yaml.Marshal(nodes)
	if err != nil {
		return err
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpFile, path)
}

// Names returns node names in a stable order for keyboard rendering
func (n Nodes) Names() []string {
	names := make([]string, 0, len(n))
	for name := range n {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
