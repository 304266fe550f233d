package backend

import (
	"context"
	"fmt"

	"github.com/One-Up-Dev/ai-process-tester-apt/registry"
)

// registryBackendKind is the ServiceInfo.Kind value a gRPC judge plugin
// registers itself under to be discoverable as an execution backend.
const registryBackendKind = "backend"

// DiscoverPlugins finds every registry entry of kind "backend" and dials
// each one as a Plugin. A single instance that fails to dial is skipped
// and reported through onError (if non-nil) rather than failing the
// whole call, since the executor already tolerates individual backend
// unavailability at Healthcheck time; registering a backend that never
// answers should not prevent the others from being used.
func DiscoverPlugins(ctx context.Context, reg registry.Registry, onError func(info registry.ServiceInfo, err error)) ([]Backend, error) {
	instances, err := reg.DiscoverAll(ctx, registryBackendKind)
	if err != nil {
		return nil, fmt.Errorf("backend: discover plugins: %w", err)
	}

	backends := make([]Backend, 0, len(instances))
	for _, info := range instances {
		plugin, err := NewPlugin(PluginConfig{
			ID:          info.InstanceID,
			DisplayName: info.Name,
			Target:      info.Endpoint,
		})
		if err != nil {
			if onError != nil {
				onError(info, err)
			}
			continue
		}
		backends = append(backends, plugin)
	}

	return backends, nil
}
