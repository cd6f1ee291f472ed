// Package domain contains pure business types without external dependencies.
// These types are shared across layers and carry only JSON tags for the
// persisted documents and the client channel.
package domain

import "time"

// ServerConfig holds the tunable runtime settings of one managed server.
type ServerConfig struct {
	JavaXms      string `json:"javaXms"`
	JavaXmx      string `json:"javaXmx"`
	BindAddr     string `json:"bindAddr"`
	AutoDownload bool   `json:"autoDownload"`
	UseG1GC      bool   `json:"useG1gc"`
	ExtraArgs    string `json:"extraArgs"`
	// Linux only. CasaOS and Windows hosts must keep this false.
	UseMachineID bool `json:"useMachineId"`
}

// DefaultServerConfig returns the configuration applied to newly created servers.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		JavaXms:      "4G",
		JavaXmx:      "8G",
		BindAddr:     "0.0.0.0",
		AutoDownload: true,
		UseG1GC:      true,
		ExtraArgs:    "",
		UseMachineID: false,
	}
}

// Server is one managed dedicated-server instance.
type Server struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Port          int          `json:"port"`
	ContainerName string       `json:"containerName"`
	Config        ServerConfig `json:"config"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// ServerList is the persisted server-registry document.
type ServerList struct {
	Version int      `json:"version"`
	Servers []Server `json:"servers"`
}

// ContainerState is the point-in-time state of a server's container,
// derived from a single inspect call and never cached.
type ContainerState struct {
	Running   bool   `json:"running"`
	Status    string `json:"status"`
	StartedAt string `json:"startedAt,omitempty"`
	Health    string `json:"health,omitempty"`
	Error     string `json:"error,omitempty"`
}
