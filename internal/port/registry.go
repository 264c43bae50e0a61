package port

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mmr-tortoise/worktree/internal/model"
)

// DefaultLockTimeout bounds how long an invocation waits for the registry
// lock before failing.
const DefaultLockTimeout = 5 * time.Second

// DefaultGCGrace is how long a fresh allocation is exempt from garbage
// collection. Creation allocates ports before the worktree's state file
// exists, so a concurrent invocation must not collect the window inside
// that gap.
const DefaultGCGrace = 5 * time.Minute

// Allocation is one registry entry: the ports held by a worktree and when
// they were handed out.
type Allocation struct {
	Ports       []int     `json:"ports"`
	AllocatedAt time.Time `json:"allocatedAt"`
}

// AllocationResult is returned by Allocate.
type AllocationResult struct {
	Ports []int
	// Existing is true when the key already held an allocation and no new
	// ports were taken.
	Existing bool
}

// Presence classifies whether a live worktree still backs an allocation
// key.
type Presence int

const (
	// PresenceAlive means the worktree's state file exists.
	PresenceAlive Presence = iota
	// PresenceGone means the expected location was checked and no state
	// file exists; the allocation is an orphan.
	PresenceGone
	// PresenceUnknown means the key cannot be resolved to a location, so
	// the allocation must be kept.
	PresenceUnknown
)

// Locator resolves an allocation key to the presence of its worktree.
type Locator interface {
	Locate(key string) Presence
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(key string) Presence

func (f LocatorFunc) Locate(key string) Presence { return f(key) }

// keepAll is the fallback locator when no worktree lookup is wired; it
// disables garbage collection rather than risk collecting live entries.
var keepAll = LocatorFunc(func(string) Presence { return PresenceUnknown })

// Registry is the persistent port allocation table. The zero value is not
// usable; construct with NewRegistry.
type Registry struct {
	path        string
	lockPath    string
	probe       Probe
	locator     Locator
	lockTimeout time.Duration
	gcGrace     time.Duration
}

// NewRegistry returns a registry backed by the JSON document at path,
// probing availability with TCPProbe and never garbage collecting. Use
// SetLocator to enable collection of orphaned entries.
func NewRegistry(path string) *Registry {
	return &Registry{
		path:        path,
		lockPath:    path + ".lock",
		probe:       TCPProbe{},
		locator:     keepAll,
		lockTimeout: DefaultLockTimeout,
		gcGrace:     DefaultGCGrace,
	}
}

// SetProbe replaces the availability probe.
func (r *Registry) SetProbe(p Probe) { r.probe = p }

// SetLocator wires the worktree lookup used to collect orphaned entries.
func (r *Registry) SetLocator(l Locator) { r.locator = l }

// SetLockTimeout changes how long Allocate and friends wait for the
// registry lock.
func (r *Registry) SetLockTimeout(d time.Duration) { r.lockTimeout = d }

// SetGCGrace changes how long fresh allocations are exempt from
// collection.
func (r *Registry) SetGCGrace(d time.Duration) { r.gcGrace = d }

// Allocate returns the port window for key, reusing an existing entry or
// scanning the range [start, end) for a free window of count ports.
//
// The scan advances window by window, so candidate windows are aligned to
// the range start. A window qualifies only when none of its ports appear
// in another entry and every port passes the availability probe. When no
// window qualifies, model.ErrNoPortsAvailable is returned.
func (r *Registry) Allocate(key string, count, start, end int) (AllocationResult, error) {
	if count < 1 {
		return AllocationResult{}, fmt.Errorf("port count must be at least 1, got %d", count)
	}

	lock, err := acquireLock(r.lockPath, r.lockTimeout)
	if err != nil {
		return AllocationResult{}, err
	}
	defer lock.release()

	doc, err := r.load()
	if err != nil {
		return AllocationResult{}, err
	}
	collected := r.collect(doc)

	if existing, ok := doc[key]; ok {
		if collected {
			if err := r.save(doc); err != nil {
				return AllocationResult{}, err
			}
		}
		return AllocationResult{Ports: existing.Ports, Existing: true}, nil
	}

	taken := make(map[int]bool)
	for _, alloc := range doc {
		for _, p := range alloc.Ports {
			taken[p] = true
		}
	}

	for base := start; base+count <= end; base += count {
		if window := r.scanWindow(base, count, taken); window != nil {
			doc[key] = Allocation{Ports: window, AllocatedAt: time.Now().UTC()}
			if err := r.save(doc); err != nil {
				return AllocationResult{}, err
			}
			return AllocationResult{Ports: window}, nil
		}
	}

	// Collected entries are persisted even though the allocation failed, so
	// orphans do not survive a full registry.
	if collected {
		if err := r.save(doc); err != nil {
			return AllocationResult{}, err
		}
	}
	return AllocationResult{}, fmt.Errorf("%w: no window of %d free ports in [%d, %d)",
		model.ErrNoPortsAvailable, count, start, end)
}

// scanWindow returns the ports [base, base+count) when the whole window is
// unregistered and probe-free, nil otherwise.
func (r *Registry) scanWindow(base, count int, taken map[int]bool) []int {
	for p := base; p < base+count; p++ {
		if taken[p] {
			return nil
		}
	}
	for p := base; p < base+count; p++ {
		if !r.probe.Available(p) {
			return nil
		}
	}
	window := make([]int, count)
	for i := range window {
		window[i] = base + i
	}
	return window
}

// Release removes the entry for key and returns the ports it held.
// Releasing an absent key is not an error.
func (r *Registry) Release(key string) ([]int, error) {
	lock, err := acquireLock(r.lockPath, r.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer lock.release()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	alloc, ok := doc[key]
	if !ok {
		return nil, nil
	}
	delete(doc, key)
	if err := r.save(doc); err != nil {
		return nil, err
	}
	return alloc.Ports, nil
}

// List returns all current allocations after collecting orphaned entries.
// The exclusive lock is taken because collection may rewrite the document.
func (r *Registry) List() (map[string]Allocation, error) {
	lock, err := acquireLock(r.lockPath, r.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer lock.release()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	if r.collect(doc) {
		if err := r.save(doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// collect drops entries whose worktree is verifiably gone. Entries the
// locator cannot resolve are kept, as are entries younger than the grace
// period (their creation may still be in flight). Reports whether the
// document changed.
func (r *Registry) collect(doc map[string]Allocation) bool {
	changed := false
	for key, alloc := range doc {
		if time.Since(alloc.AllocatedAt) < r.gcGrace {
			continue
		}
		if r.locator.Locate(key) == PresenceGone {
			delete(doc, key)
			changed = true
		}
	}
	return changed
}

// load reads the registry document. A missing file is an empty registry;
// a corrupt file is an error rather than silently discarded allocations.
func (r *Registry) load() (map[string]Allocation, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Allocation{}, nil
		}
		return nil, fmt.Errorf("read registry %s: %w", r.path, err)
	}
	if len(data) == 0 {
		return map[string]Allocation{}, nil
	}

	var doc map[string]Allocation
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", r.path, err)
	}
	if doc == nil {
		doc = map[string]Allocation{}
	}
	return doc, nil
}

// save writes the document atomically: a temp file in the same directory
// followed by a rename, so readers never observe a partial registry.
func (r *Registry) save(doc map[string]Allocation) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create registry dir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".port-allocations-*.tmp")
	if err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}
