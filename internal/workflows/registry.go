package workflows

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages the available workflows by name.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]Workflow
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{workflows: make(map[string]Workflow)}
}

// Register adds a workflow to the registry. A workflow with the same name is
// overwritten.
func (r *Registry) Register(wf Workflow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workflows[wf.Name()] = wf
}

// Get looks up a workflow by name.
func (r *Registry) Get(name string) (Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wf, ok := r.workflows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, name)
	}
	return wf, nil
}

// Info summarizes a registered workflow.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`
}

// List returns all registered workflows sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.workflows))
	for _, wf := range r.workflows {
		infos = append(infos, Info{
			Name:        wf.Name(),
			Description: wf.Description(),
			Steps:       wf.Steps(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
