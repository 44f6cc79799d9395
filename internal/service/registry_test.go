package service

import (
	"testing"

	"paybridge/internal/core/domain"
	"paybridge/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestGatewayRegistry_Resolve(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockPaymentGateway(ctrl)
	gw.EXPECT().Provider().Return(domain.ProviderPaystack).AnyTimes()

	registry := NewGatewayRegistry(gw)

	tests := []struct {
		name     string
		provider string
		found    bool
	}{
		{"exact", "PAYSTACK", true},
		{"lowercase", "paystack", true},
		{"mixed case", "PayStack", true},
		{"unknown", "stripe", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, ok := registry.Resolve(tt.provider)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Same(t, gw, resolved)
			} else {
				assert.Nil(t, resolved)
			}
		})
	}
}

func TestGatewayRegistry_Empty(t *testing.T) {
	registry := NewGatewayRegistry()

	_, ok := registry.Resolve("PAYSTACK")
	assert.False(t, ok)
}
