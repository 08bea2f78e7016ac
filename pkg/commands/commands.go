// Package commands provides the component management commands of aos.
//
// The dependency walks (import, deploy, update, sync, publish, status,
// codes) live in pkg/deps; this package covers the operations that edit a
// program's cube.mk.
//
// Each command is implemented in its own subdirectory:
//   - add/      - AddComponent command
//   - remove/   - RemoveComponent command
//   - list/     - ListComponents command
//   - internal/ - Shared program state
//
// This file re-exports the command functions so callers need a single
// import.
package commands

import (
	"context"

	"github.com/alios-things/aos-cube/pkg/commands/add"
	"github.com/alios-things/aos-cube/pkg/commands/list"
	"github.com/alios-things/aos-cube/pkg/commands/remove"
)

// AddComponentOptions configures AddComponent
type AddComponentOptions = add.AddComponentOptions

// AddComponentResult is what AddComponent recorded
type AddComponentResult = add.AddComponentResult

// AddComponent adds a component by name or URL to the program's cube.mk.
func AddComponent(ctx context.Context, opts AddComponentOptions) (*AddComponentResult, error) {
	return add.AddComponent(ctx, opts)
}

// RemoveComponentOptions configures RemoveComponent
type RemoveComponentOptions = remove.RemoveComponentOptions

// RemoveComponentResult is what RemoveComponent patched
type RemoveComponentResult = remove.RemoveComponentResult

// RemoveComponent removes a component and what it pulled in from cube.mk.
func RemoveComponent(ctx context.Context, opts RemoveComponentOptions) (*RemoveComponentResult, error) {
	return remove.RemoveComponent(ctx, opts)
}

// ListComponentsOptions configures ListComponents
type ListComponentsOptions = list.ListComponentsOptions

// ListComponentsResult holds the listed components
type ListComponentsResult = list.ListComponentsResult

// ComponentInfo is one listed component
type ComponentInfo = list.ComponentInfo

// ListComponents lists SDK and staged components.
func ListComponents(opts ListComponentsOptions) (*ListComponentsResult, error) {
	return list.ListComponents(opts)
}
