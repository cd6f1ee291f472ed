// Package in defines input ports (interfaces) for use cases.
// These interfaces define the contract between driving adapters
// (HTTP, websocket) and the business logic.
package in

import (
	"context"

	"hytalepanel/internal/domain"
)

// CreateServerParams are the user-supplied fields of a new server.
// Port 0 requests automatic allocation; nil Config applies defaults.
type CreateServerParams struct {
	Name   string               `json:"name"`
	Port   int                  `json:"port,omitempty"`
	Config *domain.ServerConfig `json:"config,omitempty"`
}

// UpdateServerParams are the mutable fields of an existing server.
type UpdateServerParams struct {
	Name   string               `json:"name,omitempty"`
	Port   int                  `json:"port,omitempty"`
	Config *domain.ServerConfig `json:"config,omitempty"`
}

// ServerService is the server registry: CRUD over server definitions,
// port allocation, compose-file generation and compose-driven lifecycle.
type ServerService interface {
	List(ctx context.Context) ([]domain.Server, error)
	Get(ctx context.Context, id string) (*domain.Server, error)
	Create(ctx context.Context, params CreateServerParams) (*domain.Server, error)
	Update(ctx context.Context, id string, params UpdateServerParams) (*domain.Server, error)
	Delete(ctx context.Context, id string, removeData bool) error

	Start(ctx context.Context, id string) error
	Stop(ctx context.Context, id string) error
	Restart(ctx context.Context, id string) error

	GetCompose(ctx context.Context, id string) (string, error)
	SaveCompose(ctx context.Context, id string, content string) error
	RegenerateCompose(ctx context.Context, id string) (string, error)
}
