package config

import "github.com/marmos91/nexus/pkg/manager"

// ApplyToManager pushes this ManagerConfig's tuning knobs onto mgr. Call it
// once after constructing a Manager from a loaded Config.
func (c *ManagerConfig) ApplyToManager(mgr *manager.Manager) {
	mgr.SetTolerance(c.Tolerance)
	mgr.SetMaxIterations(c.MaxIterations)
	mgr.SetReentrancyDetection(c.ReentrancyDetection)
}
