package registry

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"hytalepanel/internal/domain"
)

// composeFile models the generated docker-compose.yml. Field order here
// is the order in the rendered document.
type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	Image         string     `yaml:"image"`
	ContainerName string     `yaml:"container_name"`
	Restart       string     `yaml:"restart"`
	StdinOpen     bool       `yaml:"stdin_open"`
	TTY           bool       `yaml:"tty"`
	Privileged    bool       `yaml:"privileged"`
	Ports         []string   `yaml:"ports"`
	Environment   composeEnv `yaml:"environment"`
	Volumes       []string   `yaml:"volumes"`
}

type composeEnv struct {
	TZ              string `yaml:"TZ"`
	JavaXms         string `yaml:"JAVA_XMS"`
	JavaXmx         string `yaml:"JAVA_XMX"`
	BindPort        int    `yaml:"BIND_PORT"`
	BindAddr        string `yaml:"BIND_ADDR"`
	AutoDownload    bool   `yaml:"AUTO_DOWNLOAD"`
	UseG1GC         bool   `yaml:"USE_G1GC"`
	ServerExtraArgs string `yaml:"SERVER_EXTRA_ARGS"`
}

// generateCompose renders the compose document for one server. The data
// volume mounts the host-side server directory at the fixed in-container
// game path; machine-id mounts are added for installs that bind the
// server identity to the host.
func (s *Service) generateCompose(server domain.Server) ([]byte, error) {
	volumes := []string{
		s.store.DataPath(server.ID) + ":/opt/hytale",
	}
	if server.Config.UseMachineID {
		volumes = append(volumes,
			"/etc/machine-id:/etc/machine-id:ro",
			"/sys/class/dmi/id:/sys/class/dmi/id:ro",
		)
	}

	doc := composeFile{
		Services: map[string]composeService{
			server.ContainerName: {
				Image:         s.cfg.Image,
				ContainerName: server.ContainerName,
				Restart:       "on-failure",
				StdinOpen:     true,
				TTY:           true,
				Privileged:    true,
				Ports:         []string{fmt.Sprintf("%d:%d/udp", server.Port, server.Port)},
				Environment: composeEnv{
					TZ:              s.cfg.Timezone,
					JavaXms:         server.Config.JavaXms,
					JavaXmx:         server.Config.JavaXmx,
					BindPort:        server.Port,
					BindAddr:        server.Config.BindAddr,
					AutoDownload:    server.Config.AutoDownload,
					UseG1GC:         server.Config.UseG1GC,
					ServerExtraArgs: server.Config.ExtraArgs,
				},
				Volumes: volumes,
			},
		},
	}

	content, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render compose file: %w", err)
	}
	return content, nil
}
