// Package demo builds small, self-contained scenarios that nexusctl's demo
// and inspect subcommands run against, so there is something concrete to
// join, select from, and tabulate without requiring an external workload.
package demo

import (
	"fmt"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/manager"
	"github.com/marmos91/nexus/pkg/registry"
	"github.com/marmos91/nexus/pkg/xselect"
	"github.com/marmos91/nexus/pkg/xvalue"
)

// JoinScenario demonstrates two independently created values converging to
// a single shared identity once joined.
type JoinScenario struct {
	Manager  *manager.Manager
	Registry *registry.Registry
	Celsius  *xvalue.Value
	Kelvin   *xvalue.Value
}

// BuildJoin creates two temperature readings, "celsius" and "kelvin", and
// joins them so that a later write to either one keeps both hooks
// consistent (the demo does not convert units — it just proves the join
// keeps two owners' values equal).
func BuildJoin(mgr *manager.Manager) (*JoinScenario, error) {
	celsius, err := xvalue.New(mgr, 20, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create celsius reading: %w", err)
	}
	kelvin, err := xvalue.New(mgr, 20, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create kelvin reading: %w", err)
	}

	if ok, msg := celsius.ValueHook().Join(kelvin.ValueHook(), hook.UseCallerValue); !ok {
		return nil, fmt.Errorf("failed to join readings: %s", msg)
	}

	reg := registry.New()
	reg.Register("celsius", celsius)
	reg.Register("kelvin", kelvin)

	return &JoinScenario{Manager: mgr, Registry: reg, Celsius: celsius, Kelvin: kelvin}, nil
}

// SelectionScenario demonstrates xselect.Set rejecting a selection outside
// its option set and accepting one that's a member.
type SelectionScenario struct {
	Manager  *manager.Manager
	Registry *registry.Registry
	Region   *xselect.Set
}

// BuildSelection creates a "region" selector over a fixed set of
// datacenter regions.
func BuildSelection(mgr *manager.Manager) (*SelectionScenario, error) {
	region, err := xselect.New(mgr, "us-east", []any{"us-east", "us-west", "eu-central"})
	if err != nil {
		return nil, fmt.Errorf("failed to create region selector: %w", err)
	}

	reg := registry.New()
	reg.Register("region", region)

	return &SelectionScenario{Manager: mgr, Registry: reg, Region: region}, nil
}
