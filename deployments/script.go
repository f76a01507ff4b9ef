// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deployments

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownTag      = errors.New("no script with tag")
	ErrDependencyCycle = errors.New("script dependency cycle")
)

// Script is a deploy script. Dependencies are tags of scripts that must run before it.
type Script struct {
	Name         string
	Tags         []string
	Dependencies []string
	Run          func(ctx context.Context, m *Manager) error
}

// Register adds scripts. Scripts run in registration order unless dependencies say otherwise.
func (m *Manager) Register(scripts ...*Script) {
	m.scripts = append(m.scripts, scripts...)
}

func (m *Manager) tagged(tag string) []*Script {
	var scripts []*Script
	for _, s := range m.scripts {
		if slices.Contains(s.Tags, tag) {
			scripts = append(scripts, s)
		}
	}
	return scripts
}

// Run runs every script carrying one of tags, and their dependencies first.
// Each script runs at most once. No tags means every script.
func (m *Manager) Run(ctx context.Context, tags ...string) error {
	var selected []*Script
	if len(tags) == 0 {
		selected = m.scripts
	}
	for _, tag := range tags {
		scripts := m.tagged(tag)
		if len(scripts) == 0 {
			return fmt.Errorf("%w: %s", ErrUnknownTag, tag)
		}
		selected = append(selected, scripts...)
	}

	r := &runner{m: m, done: make(map[*Script]bool), visiting: make(map[*Script]bool)}
	for _, s := range selected {
		if err := r.run(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

type runner struct {
	m        *Manager
	done     map[*Script]bool
	visiting map[*Script]bool
}

func (r *runner) run(ctx context.Context, s *Script) error {
	if r.done[s] {
		return nil
	}
	if r.visiting[s] {
		return fmt.Errorf("%w: %s", ErrDependencyCycle, s.Name)
	}
	r.visiting[s] = true
	defer delete(r.visiting, s)

	for _, dep := range s.Dependencies {
		deps := r.m.tagged(dep)
		if len(deps) == 0 {
			return fmt.Errorf("%w: %s, dependency of %s", ErrUnknownTag, dep, s.Name)
		}
		for _, d := range deps {
			if err := r.run(ctx, d); err != nil {
				return err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Debug("running deploy script", "name", s.Name, "tags", s.Tags)
	if err := s.Run(ctx, r.m); err != nil {
		return fmt.Errorf("script %s: %w", s.Name, err)
	}
	r.done[s] = true
	return nil
}
