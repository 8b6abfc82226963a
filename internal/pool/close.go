package pool

import (
	"time"

	"github.com/mcporter/mcporter/internal/procutil"
)

// Teardown timing for Close/CloseAll: 500ms grace, 700ms after SIGTERM,
// 500ms after SIGKILL.
const (
	graceWait = 500 * time.Millisecond
	termWait  = 700 * time.Millisecond
	killWait  = 500 * time.Millisecond
)

// Close tears down a single server's cached connection, if one exists.
func (p *Pool) Close(name string) error {
	p.mu.Lock()
	entry, ok := p.clients[name]
	delete(p.clients, name)
	p.mu.Unlock()
	if !ok {
		return nil
	}
	return p.teardown(entry)
}

// CloseAll tears down every cached connection.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	existing := p.clients
	p.clients = make(map[string]*ClientContext)
	p.mu.Unlock()

	for _, entry := range existing {
		_ = p.teardown(entry)
	}
}

// teardown closes the MCP session and, for STDIO servers, escalates
// through the process-tree kill sequence in internal/procutil.
func (p *Pool) teardown(entry *ClientContext) error {
	entry.Mu.Lock()
	defer entry.Mu.Unlock()

	err := entry.Session.Close()

	if entry.cmd != nil && entry.cmd.Process != nil {
		result := procutil.Teardown(entry.cmd.Process, graceWait, termWait, killWait)
		if !result.Exited {
			p.ctx.Logger.Warnf("mcporter: server %q process tree survived teardown: pids %v", entry.Def.Name, result.Survived)
		}
	}

	return err
}
