package service

import (
	"paybridge/internal/core/domain"
	"paybridge/internal/core/ports"
)

// GatewayRegistry implements ports.GatewayRegistry over a fixed set of
// gateways bound at startup.
type GatewayRegistry struct {
	gateways map[domain.Provider]ports.PaymentGateway
}

// NewGatewayRegistry builds a registry keyed by each gateway's provider
// tag. A later gateway with the same tag replaces the earlier one.
func NewGatewayRegistry(gateways ...ports.PaymentGateway) *GatewayRegistry {
	m := make(map[domain.Provider]ports.PaymentGateway, len(gateways))
	for _, g := range gateways {
		m[g.Provider()] = g
	}
	return &GatewayRegistry{gateways: m}
}

// Resolve looks up a gateway by provider name, case-insensitively.
func (r *GatewayRegistry) Resolve(provider string) (ports.PaymentGateway, bool) {
	p, err := domain.ParseProvider(provider)
	if err != nil {
		return nil, false
	}
	g, ok := r.gateways[p]
	return g, ok
}
