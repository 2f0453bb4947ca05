package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"remna-tg-admin/internal/config"
	"remna-tg-admin/internal/constants"
)

// Fixed local commands; local nodes always run the panel node container on
// this host.
const (
	localContainer   = "remnanode"
	localLogFile     = "/var/log/supervisor/xray.out.log"
	localComposeDir  = "/opt/remnanode"
	localRestartCmds = "cd " + localComposeDir + " && docker compose down && docker compose up -d && sleep 5 && docker compose logs --tail=20"
)

// Adapter resolves a node name to its configuration variant and performs
// log-tail and restart operations against it.
type Adapter struct {
	nodes      config.Nodes
	logsClient *resty.Client
	ctlClient  *resty.Client
	logger     *logrus.Logger
}

// NewAdapter creates a node operations adapter
func NewAdapter(nodes config.Nodes, logger *logrus.Logger) *Adapter {
	return &Adapter{
		nodes:      nodes,
		logsClient: resty.New().SetTimeout(constants.NodeLogsTimeout * time.Second),
		ctlClient:  resty.New().SetTimeout(constants.NodeRestartTimeout * time.Second),
		logger:     logger,
	}
}

// Names returns the configured node names in stable order
func (a *Adapter) Names() []string {
	return a.nodes.Names()
}

// FetchLogs returns the recent log tail for a node
func (a *Adapter) FetchLogs(ctx context.Context, name string) (string, error) {
	node, ok := a.nodes[name]
	if !ok {
		return "", fmt.Errorf("node %s not found in config", name)
	}

	switch node.Type {
	case config.NodeTypeLocal:
		return a.fetchLocalLogs(ctx)
	case config.NodeTypeRemote:
		return a.fetchRemoteLogs(ctx, node)
	default:
		return "", fmt.Errorf("invalid node type %q for node %s", node.Type, name)
	}
}

func (a *Adapter) fetchLocalLogs(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "docker", "exec", localContainer, "tail", "-n30", localLogFile)
	out, err := cmd.Output()
	if err != nil {
		a.logger.Errorf("Local log tail failed: %v", err)
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

type remoteLogsResponse struct {
	Logs string `json:"logs"`
}

func (a *Adapter) fetchRemoteLogs(ctx context.Context, node config.NodeConfig) (string, error) {
	resp, err := a.logsClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+node.Token).
		Get(node.URL)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("log fetch failed with status code: %d", resp.StatusCode())
	}

	var body remoteLogsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("failed to parse node logs response: %w", err)
	}
	return body.Logs, nil
}

// Restart restarts a node and returns the captured restart logs
func (a *Adapter) Restart(ctx context.Context, name string) (string, error) {
	node, ok := a.nodes[name]
	if !ok {
		return "", fmt.Errorf("node %s not found in config", name)
	}

	switch node.Type {
	case config.NodeTypeLocal:
		return a.restartLocal(ctx)
	case config.NodeTypeRemote:
		return a.restartRemote(ctx, node)
	default:
		return "", fmt.Errorf("invalid node type %q for node %s", node.Type, name)
	}
}

func (a *Adapter) restartLocal(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", localRestartCmds)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		a.logger.Errorf("Local restart failed: %s", detail)
		return "", fmt.Errorf("%s", detail)
	}
	return strings.TrimSpace(stdout.String()), nil
}

type remoteRestartResponse struct {
	Status  string `json:"status"`
	Logs    string `json:"logs"`
	Details string `json:"details"`
}

func (a *Adapter) restartRemote(ctx context.Context, node config.NodeConfig) (string, error) {
	parsed, err := url.Parse(node.URL)
	if err != nil || parsed.Hostname() == "" {
		return "", fmt.Errorf("could not parse IP from node URL")
	}

	restartURL := fmt.Sprintf("http://%s:%d/restart", parsed.Hostname(), constants.NodeSidecarPort)
	resp, err := a.ctlClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+node.Token).
		Post(restartURL)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("restart failed with status code: %d", resp.StatusCode())
	}

	var body remoteRestartResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("failed to parse restart response: %w", err)
	}
	if body.Status != "success" {
		detail := body.Details
		if detail == "" {
			detail = "Unknown remote error"
		}
		return "", fmt.Errorf("%s", detail)
	}
	return body.Logs, nil
}
