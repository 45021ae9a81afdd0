// Package clients provides one thin client per MCP tool server. Each client
// binds a configured script path and a service name to the resilient RPC
// core and exposes one wrapper method per remote tool; no retry or state
// logic lives here.
package clients

import (
	"encoding/base64"
	"fmt"

	"github.com/gradedesk/gradedesk/internal/config"
	"github.com/gradedesk/gradedesk/pkg/domain"
	"github.com/gradedesk/gradedesk/pkg/mcpclient"
)

// Set bundles the clients for all configured tool servers. One Set is
// created per process; each client lazily spawns its subprocess on first use
// and may silently cycle through many sessions over its lifetime.
type Set struct {
	Essay   *Essay
	Bubble  *Bubble
	Latex   *Latex
	Testgen *Testgen
	Email   *Email
	Regrade *Regrade
	Scrub   *Scrub
	XAI     *XAI
}

// NewSet wires all domain clients from the configuration. Options (logger,
// metrics, launcher) are shared across the underlying RPC clients.
func NewSet(cfg *config.Config, opts ...mcpclient.Option) *Set {
	launcher := mcpclient.StdioLauncher{
		Runner:      cfg.Runner.Command,
		Interpreter: cfg.Runner.Interpreter,
	}
	opts = append([]mcpclient.Option{mcpclient.WithLauncher(launcher)}, opts...)

	rpc := func(service string) *mcpclient.Client {
		return mcpclient.NewClient(service, cfg.ServerPath(service), opts...)
	}

	return &Set{
		Essay:   NewEssay(rpc("essay")),
		Bubble:  NewBubble(rpc("bubble")),
		Latex:   NewLatex(rpc("latex")),
		Testgen: NewTestgen(rpc("testgen")),
		Email:   NewEmail(rpc("email")),
		Regrade: NewRegrade(rpc("regrade")),
		Scrub:   NewScrub(rpc("scrub")),
		XAI:     NewXAI(cfg.XAI),
	}
}

// decodeBase64Field extracts binary payloads (PDFs, zips) that tool servers
// ship as base64 text under a known key.
func decodeBase64Field(res domain.Result, key string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(res.Str(key))
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", key, err)
	}
	return data, nil
}
